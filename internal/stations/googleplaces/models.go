package googleplaces

// Places API status codes.
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
	statusInvalidRequest = "INVALID_REQUEST"
)

// nearbyResponse is the top-level Nearby Search response.
type nearbyResponse struct {
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Results      []apiPlace `json:"results"`
}

type apiPlace struct {
	PlaceID  string      `json:"place_id"`
	Name     string      `json:"name"`
	Vicinity string      `json:"vicinity"`
	Geometry apiGeometry `json:"geometry"`
}

type apiGeometry struct {
	Location apiLatLng `json:"location"`
}

type apiLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

package googlemaps

// Directions API status codes.
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusNotFound       = "NOT_FOUND"
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
	statusInvalidRequest = "INVALID_REQUEST"
)

// directionsResponse is the top-level Directions API response.
type directionsResponse struct {
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Routes       []apiRoute `json:"routes"`
}

type apiRoute struct {
	Summary string   `json:"summary"`
	Legs    []apiLeg `json:"legs"`
}

type apiLeg struct {
	Distance apiValue  `json:"distance"`
	Duration apiValue  `json:"duration"`
	Steps    []apiStep `json:"steps"`
}

type apiStep struct {
	Polyline apiPolyline `json:"polyline"`
}

type apiPolyline struct {
	Points string `json:"points"`
}

// apiValue is the Directions API value/text pair. Value is meters for
// distances and seconds for durations.
type apiValue struct {
	Value int    `json:"value"`
	Text  string `json:"text"`
}

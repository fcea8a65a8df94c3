package models

// Me represents the authenticated user's account summary.
type Me struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	CreatedAt Timestamp `json:"createdAt"`
}

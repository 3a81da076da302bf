package models

// Friend is a friend's public profile as seen by the other side.
type Friend struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Online    bool   `json:"online"`
}

package entity

const AnonymousUsername = "Anonymous"

// User is the verified identity behind a bearer token.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

package models

type User struct {
	ID       string   `json:"user_id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	TeamID   *string  `json:"team_id"`
	Roles    []string `json:"roles,omitempty"`
}

// UserCredentials carries the stored password hash, never serialized.
type UserCredentials struct {
	ID           string
	Username     string
	PasswordHash string
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	User User `json:"user"`
}

type UsersResponse struct {
	Users []*User `json:"users"`
}

package models

const (
	RolePlayer  = "PLAYER"
	RoleManager = "MANAGER"
	RoleAdmin   = "ADMIN"
)

type Role struct {
	ID    string `json:"role_id"`
	Value string `json:"value"`
}

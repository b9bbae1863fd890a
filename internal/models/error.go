package models

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error Error `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

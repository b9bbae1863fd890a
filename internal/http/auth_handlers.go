package http

import (
	"context"
	"encoding/json"
	"net/http"

	"team-request-service/internal/models"
)

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

func (rtr *router) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rtr.handleError(w, newResponseError(ErrCodeBadRequest, "bad json request"))
		return
	}

	user, err := rtr.authService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusCreated, &models.UserResponse{User: *user})
}

func (rtr *router) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rtr.handleError(w, newResponseError(ErrCodeBadRequest, "bad json request"))
		return
	}

	token, err := rtr.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusOK, &models.TokenResponse{Token: token})
}

package http

import (
	"context"
	"net/http"

	"team-request-service/internal/models"
)

type UserService interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

func (rtr *router) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := rtr.userService.ListUsers(r.Context())
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusOK, &models.UsersResponse{Users: users})
}

func (rtr *router) currentUser(w http.ResponseWriter, r *http.Request) {
	a, ok := actorFromCtx(r.Context())
	if !ok {
		rtr.handleError(w, newResponseError(ErrCodeUnauthorized, "missing auth token"))
		return
	}

	user, err := rtr.userService.GetUser(r.Context(), a.ID)
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusOK, &models.UserResponse{User: *user})
}

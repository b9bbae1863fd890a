package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"team-request-service/internal/models"
)

type RequestService interface {
	CreateJoin(ctx context.Context, userID, teamID string) (*models.TeamRequest, error)
	CreateLeave(ctx context.Context, userID string) (*models.TeamRequest, error)
	CreateManagerPost(ctx context.Context, userID, teamID string) (*models.TeamRequest, error)
	CreateMove(ctx context.Context, userID, toTeamID string) (*models.TeamRequest, error)
	Accept(ctx context.Context, actorID, requestID string) (*models.TeamRequest, error)
	Decline(ctx context.Context, actorID, requestID string) (*models.TeamRequest, error)
	CancelOwn(ctx context.Context, userID string) error
	ListAll(ctx context.Context) ([]*models.TeamRequest, error)
}

func (rtr *router) joinTheTeam(w http.ResponseWriter, r *http.Request) {
	a, ok := actorFromCtx(r.Context())
	if !ok {
		rtr.handleError(w, newResponseError(ErrCodeUnauthorized, "missing auth token"))
		return
	}
	var req models.TeamIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rtr.handleError(w, newResponseError(ErrCodeBadRequest, "bad json request"))
		return
	}

	request, err := rtr.requestService.CreateJoin(r.Context(), a.ID, req.TeamID)
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusCreated, &models.TeamRequestResponse{TeamRequest: *request})
}

func (rtr *router) moveToAnotherTeam(w http.ResponseWriter, r *http.Request) {
	a, ok := actorFromCtx(r.Context())
	if !ok {
		rtr.handleError(w, newResponseError(ErrCodeUnauthorized, "missing auth token"))
		return
	}
	var req models.TeamIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rtr.handleError(w, newResponseError(ErrCodeBadRequest, "bad json request"))
		return
	}

	request, err := rtr.requestService.CreateMove(r.Context(), a.ID, req.TeamID)
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusCreated, &models.TeamRequestResponse{TeamRequest: *request})
}

func (rtr *router) leaveTheTeam(w http.ResponseWriter, r *http.Request) {
	a, ok := actorFromCtx(r.Context())
	if !ok {
		rtr.handleError(w, newResponseError(ErrCodeUnauthorized, "missing auth token"))
		return
	}

	request, err := rtr.requestService.CreateLeave(r.Context(), a.ID)
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusCreated, &models.TeamRequestResponse{TeamRequest: *request})
}

func (rtr *router) managerPost(w http.ResponseWriter, r *http.Request) {
	a, ok := actorFromCtx(r.Context())
	if !ok {
		rtr.handleError(w, newResponseError(ErrCodeUnauthorized, "missing auth token"))
		return
	}

	request, err := rtr.requestService.CreateManagerPost(r.Context(), a.ID, chi.URLParam(r, "teamId"))
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusCreated, &models.TeamRequestResponse{TeamRequest: *request})
}

func (rtr *router) acceptRequest(w http.ResponseWriter, r *http.Request) {
	a, ok := actorFromCtx(r.Context())
	if !ok {
		rtr.handleError(w, newResponseError(ErrCodeUnauthorized, "missing auth token"))
		return
	}

	request, err := rtr.requestService.Accept(r.Context(), a.ID, chi.URLParam(r, "teamRequestId"))
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusOK, &models.TeamRequestResponse{TeamRequest: *request})
}

func (rtr *router) declineRequest(w http.ResponseWriter, r *http.Request) {
	a, ok := actorFromCtx(r.Context())
	if !ok {
		rtr.handleError(w, newResponseError(ErrCodeUnauthorized, "missing auth token"))
		return
	}

	request, err := rtr.requestService.Decline(r.Context(), a.ID, chi.URLParam(r, "teamRequestId"))
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusOK, &models.TeamRequestResponse{TeamRequest: *request})
}

func (rtr *router) cancelRequest(w http.ResponseWriter, r *http.Request) {
	a, ok := actorFromCtx(r.Context())
	if !ok {
		rtr.handleError(w, newResponseError(ErrCodeUnauthorized, "missing auth token"))
		return
	}

	if err := rtr.requestService.CancelOwn(r.Context(), a.ID); err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusOK, &models.MessageResponse{Message: "team request cancelled"})
}

func (rtr *router) listRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := rtr.requestService.ListAll(r.Context())
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusOK, &models.TeamRequestsResponse{TeamRequests: requests})
}

package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"team-request-service/internal/models"
)

type TeamService interface {
	CreateTeam(ctx context.Context, name string) (*models.Team, error)
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	ListTeams(ctx context.Context) ([]*models.Team, error)
	AddUser(ctx context.Context, teamID, userID string) (*models.Team, error)
	SetManager(ctx context.Context, teamID, userID string) (*models.Team, error)
	Kick(ctx context.Context, actorID, userID, reason string) (*models.TeamKick, error)
	ListKicks(ctx context.Context, teamID string) ([]*models.TeamKick, error)
}

func (rtr *router) createTeam(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rtr.handleError(w, newResponseError(ErrCodeBadRequest, "bad json request"))
		return
	}

	team, err := rtr.teamService.CreateTeam(r.Context(), req.TeamName)
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusCreated, &models.TeamResponse{Team: *team})
}

func (rtr *router) getTeam(w http.ResponseWriter, r *http.Request) {
	team, err := rtr.teamService.GetTeam(r.Context(), chi.URLParam(r, "teamId"))
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusOK, &models.TeamResponse{Team: *team})
}

func (rtr *router) listTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := rtr.teamService.ListTeams(r.Context())
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusOK, &models.TeamsResponse{Teams: teams})
}

func (rtr *router) addUserToTeam(w http.ResponseWriter, r *http.Request) {
	var req models.AddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rtr.handleError(w, newResponseError(ErrCodeBadRequest, "bad json request"))
		return
	}

	team, err := rtr.teamService.AddUser(r.Context(), chi.URLParam(r, "teamId"), req.UserID)
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusOK, &models.TeamResponse{Team: *team})
}

func (rtr *router) setTeamManager(w http.ResponseWriter, r *http.Request) {
	var req models.AddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rtr.handleError(w, newResponseError(ErrCodeBadRequest, "bad json request"))
		return
	}

	team, err := rtr.teamService.SetManager(r.Context(), chi.URLParam(r, "teamId"), req.UserID)
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusOK, &models.TeamResponse{Team: *team})
}

func (rtr *router) kickUser(w http.ResponseWriter, r *http.Request) {
	a, ok := actorFromCtx(r.Context())
	if !ok {
		rtr.handleError(w, newResponseError(ErrCodeUnauthorized, "missing auth token"))
		return
	}
	var req models.KickUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rtr.handleError(w, newResponseError(ErrCodeBadRequest, "bad json request"))
		return
	}

	kick, err := rtr.teamService.Kick(r.Context(), a.ID, req.UserID, req.KickReason)
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusOK, &models.TeamKickResponse{Kick: *kick})
}

func (rtr *router) listTeamKicks(w http.ResponseWriter, r *http.Request) {
	kicks, err := rtr.teamService.ListKicks(r.Context(), chi.URLParam(r, "teamId"))
	if err != nil {
		rtr.handleError(w, err)
		return
	}

	rtr.responseJSON(w, http.StatusOK, &models.TeamKicksResponse{Kicks: kicks})
}

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"team-request-service/internal/models"
)

type router struct {
	authService    AuthService
	userService    UserService
	teamService    TeamService
	requestService RequestService
	secret         []byte
	log            *slog.Logger
}

func NewRouter(
	authService AuthService,
	userService UserService,
	teamService TeamService,
	requestService RequestService,
	secret string,
	log *slog.Logger,
) (http.Handler, error) {
	if authService == nil {
		return nil, errors.New("auth service cannot be nil")
	}
	if userService == nil {
		return nil, errors.New("user service cannot be nil")
	}
	if teamService == nil {
		return nil, errors.New("team service cannot be nil")
	}
	if requestService == nil {
		return nil, errors.New("request service cannot be nil")
	}
	if secret == "" {
		return nil, errors.New("jwt secret cannot be empty")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	rtr := &router{
		authService:    authService,
		userService:    userService,
		teamService:    teamService,
		requestService: requestService,
		secret:         []byte(secret),
		log:            log,
	}

	r := chi.NewRouter()
	r.Use(rtr.panicMiddleware)
	r.Use(rtr.loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/ping", rtr.ping)
	r.Post("/auth/registration", rtr.register)
	r.Post("/auth/login", rtr.login)

	r.Group(func(r chi.Router) {
		r.Use(rtr.authMiddleware)

		r.Route("/team-requests", func(r chi.Router) {
			r.With(rtr.requireRoles(models.RolePlayer)).Post("/join-the-team", rtr.joinTheTeam)
			r.With(rtr.requireRoles(models.RolePlayer)).Post("/move-to-another-team", rtr.moveToAnotherTeam)
			r.With(rtr.requireRoles(models.RolePlayer)).Get("/leave-the-team", rtr.leaveTheTeam)
			r.With(rtr.requireRoles(models.RolePlayer)).Get("/manager-post/{teamId}", rtr.managerPost)
			r.With(rtr.requireRoles(models.RoleManager, models.RoleAdmin)).Get("/accept/{teamRequestId}", rtr.acceptRequest)
			r.With(rtr.requireRoles(models.RoleManager, models.RoleAdmin)).Get("/decline/{teamRequestId}", rtr.declineRequest)
			r.With(rtr.requireRoles(models.RoleManager, models.RoleAdmin)).Get("/all", rtr.listRequests)
			r.Delete("/", rtr.cancelRequest)
		})

		r.Route("/teams", func(r chi.Router) {
			r.With(rtr.requireRoles(models.RoleAdmin)).Post("/", rtr.createTeam)
			r.Get("/", rtr.listTeams)
			r.Get("/{teamId}", rtr.getTeam)
			r.With(rtr.requireRoles(models.RoleManager, models.RoleAdmin)).Post("/{teamId}/add-user", rtr.addUserToTeam)
			r.With(rtr.requireRoles(models.RoleAdmin)).Post("/{teamId}/set-manager", rtr.setTeamManager)
			r.With(rtr.requireRoles(models.RoleManager, models.RoleAdmin)).Post("/kick", rtr.kickUser)
			r.With(rtr.requireRoles(models.RoleManager, models.RoleAdmin)).Get("/{teamId}/kicks", rtr.listTeamKicks)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", rtr.listUsers)
			r.Get("/me", rtr.currentUser)
		})
	})

	return r, nil
}

func (rtr *router) responseJSON(w http.ResponseWriter, statusCode int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		rtr.log.Error("failed to encode response", slog.Any("error", err))
	}
}

func (rtr *router) ping(w http.ResponseWriter, r *http.Request) {
	rtr.responseJSON(w, http.StatusOK, &models.MessageResponse{Message: "ok"})
}

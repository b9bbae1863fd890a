package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"team-request-service/internal/config"
	router "team-request-service/internal/http"
	"team-request-service/internal/service"
	"team-request-service/internal/storage"
	"team-request-service/pkg/postgres"
)

const (
	defaultAddr = "localhost:8080"
)

type App struct {
	httpServer *http.Server
	addr       string
	database   *postgres.Postgres
	log        *slog.Logger
}

func NewApp(cfg *config.Config, log *slog.Logger) (*App, error) {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.DBURL == "" {
		return nil, errors.New("database url cannot be empty")
	}

	ctx := context.Background()
	database, err := postgres.New(ctx, cfg.DBURL, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	userStorage, err := storage.NewUserStorage(database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create user storage: %w", err)
	}
	teamStorage, err := storage.NewTeamStorage(database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create team storage: %w", err)
	}
	roleStorage, err := storage.NewRoleStorage(database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create role storage: %w", err)
	}
	requestStorage, err := storage.NewRequestStorage(database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create request storage: %w", err)
	}
	approvementStorage, err := storage.NewApprovementStorage(database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create approvement storage: %w", err)
	}
	kickStorage, err := storage.NewKickStorage(database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create kick storage: %w", err)
	}
	txManager, err := storage.NewTxManager(database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create tx manager: %w", err)
	}

	approvalCoordinator, err := service.NewApprovalCoordinator(approvementStorage)
	if err != nil {
		return nil, fmt.Errorf("failed to create approval coordinator: %w", err)
	}
	membershipService, err := service.NewMembershipService(userStorage, teamStorage, roleStorage, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create membership service: %w", err)
	}
	requestService, err := service.NewRequestService(
		txManager, userStorage, teamStorage, roleStorage,
		requestStorage, approvementStorage, approvalCoordinator, membershipService, log,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request service: %w", err)
	}
	teamService, err := service.NewTeamService(
		txManager, teamStorage, userStorage, roleStorage,
		kickStorage, membershipService, requestService, log,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create team service: %w", err)
	}
	userService, err := service.NewUserService(userStorage, userStorage, roleStorage, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}
	authService, err := service.NewAuthService(txManager, userStorage, roleStorage, cfg.Secret, cfg.TokenTTL, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	handler, err := router.NewRouter(authService, userService, teamService, requestService, cfg.Secret, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Timeout,
		ReadTimeout:       cfg.Timeout,
		WriteTimeout:      cfg.Timeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	return &App{
		httpServer: httpServer,
		addr:       cfg.Addr,
		database:   database,
		log:        log,
	}, nil
}

func (a *App) Run() error {
	a.log.Info("starting http server", slog.String("addr", a.addr))
	return a.httpServer.ListenAndServe()
}

func (a *App) MustRun() {
	if err := a.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.log.Error("failed to run http server", slog.Any("error", err))
		panic(err)
	}
}

func (a *App) Close(ctx context.Context) {
	a.database.Close()
	a.log.Info("trying to shutdown server")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Warn("failed to close http server", slog.Any("error", err))
	}
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"team-request-service/internal/models"
	"team-request-service/pkg/postgres"
)

var (
	ErrTeamNotFound = errors.New("team not found")
	ErrTeamExists   = errors.New("team already exists")
)

type TeamStorage struct {
	db  *postgres.Postgres
	log *slog.Logger
}

func NewTeamStorage(db *postgres.Postgres, log *slog.Logger) (*TeamStorage, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &TeamStorage{
		db:  db,
		log: log,
	}, nil
}

func (s *TeamStorage) CreateTeam(ctx context.Context, team models.Team) error {
	exec := getExecer(ctx, s.db.DB)
	_, err := exec.ExecContext(
		ctx,
		"insert into teams (id, name) values ($1, $2)",
		team.ID,
		team.Name,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("insert team %q: %w", team.Name, ErrTeamExists)
		}
		s.log.Error("failed to create team", slog.Any("error", err))
		return fmt.Errorf("insert team %q: %w", team.Name, err)
	}
	return nil
}

func (s *TeamStorage) GetTeamByID(ctx context.Context, id string) (*models.Team, error) {
	exec := getQueryExecer(ctx, s.db.DB)
	var t models.Team
	err := exec.QueryRowContext(
		ctx,
		"select id, name, manager_id from teams where id = $1",
		id,
	).Scan(&t.ID, &t.Name, &t.ManagerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get team %q: %w", id, ErrTeamNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get team %q: %w", id, err)
	}
	return &t, nil
}

func (s *TeamStorage) GetTeamByName(ctx context.Context, name string) (*models.Team, error) {
	exec := getQueryExecer(ctx, s.db.DB)
	var t models.Team
	err := exec.QueryRowContext(
		ctx,
		"select id, name, manager_id from teams where name = $1",
		name,
	).Scan(&t.ID, &t.Name, &t.ManagerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get team by name: %w", ErrTeamNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get team by name: %w", err)
	}
	return &t, nil
}

func (s *TeamStorage) SetManager(ctx context.Context, teamID string, managerID *string) error {
	exec := getExecer(ctx, s.db.DB)
	res, err := exec.ExecContext(
		ctx,
		"update teams set manager_id = $1 where id = $2",
		managerID,
		teamID,
	)
	if err != nil {
		s.log.Error("failed to set team manager", slog.Any("error", err))
		return fmt.Errorf("set team manager: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set team manager: %w", ErrTeamNotFound)
	}
	return nil
}

func (s *TeamStorage) ListTeams(ctx context.Context) ([]*models.Team, error) {
	exec := getQueryExecer(ctx, s.db.DB)
	rows, err := exec.QueryContext(
		ctx,
		"select id, name, manager_id from teams order by name",
	)
	if err != nil {
		s.log.Error("failed to list teams", slog.Any("error", err))
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team

	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.ManagerID); err != nil {
			return nil, fmt.Errorf("list teams: %w", err)
		}
		teams = append(teams, &t)
	}

	return teams, rows.Err()
}

func (s *TeamStorage) ExistsTeam(ctx context.Context, id string) (bool, error) {
	exec := getQueryExecer(ctx, s.db.DB)
	var exists bool

	err := exec.QueryRowContext(
		ctx,
		"select exists(select 1 from teams where id = $1)",
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check team exists: %w", err)
	}

	return exists, nil
}

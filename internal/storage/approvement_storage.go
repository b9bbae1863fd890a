package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"team-request-service/internal/models"
	"team-request-service/pkg/postgres"
)

var ErrApprovementNotFound = errors.New("approvement not found")

type ApprovementStorage struct {
	db  *postgres.Postgres
	log *slog.Logger
}

func NewApprovementStorage(db *postgres.Postgres, log *slog.Logger) (*ApprovementStorage, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &ApprovementStorage{
		db:  db,
		log: log,
	}, nil
}

func (s *ApprovementStorage) CreateApprovement(ctx context.Context, a models.TeamRequestApprovement) error {
	exec := getExecer(ctx, s.db.DB)
	_, err := exec.ExecContext(
		ctx,
		`insert into team_request_approvements (id, team_request_id, from_team_id, to_team_id)
values ($1, $2, $3, $4)`,
		a.ID,
		a.TeamRequestID,
		a.FromTeamID,
		a.ToTeamID,
	)
	if err != nil {
		s.log.Error("failed to create approvement", slog.Any("error", err))
		return fmt.Errorf("insert approvement: %w", err)
	}
	return nil
}

func (s *ApprovementStorage) SetFromTeamApprove(ctx context.Context, id string, approve bool) error {
	return s.setVote(ctx, "update team_request_approvements set from_team_approve = $1 where id = $2", id, approve)
}

func (s *ApprovementStorage) SetToTeamApprove(ctx context.Context, id string, approve bool) error {
	return s.setVote(ctx, "update team_request_approvements set to_team_approve = $1 where id = $2", id, approve)
}

func (s *ApprovementStorage) setVote(ctx context.Context, query, id string, approve bool) error {
	exec := getExecer(ctx, s.db.DB)
	res, err := exec.ExecContext(ctx, query, approve, id)
	if err != nil {
		s.log.Error("failed to set approvement vote", slog.Any("error", err))
		return fmt.Errorf("set approvement vote: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set approvement vote: %w", ErrApprovementNotFound)
	}
	return nil
}

func (s *ApprovementStorage) DeleteByRequestID(ctx context.Context, requestID string) error {
	exec := getExecer(ctx, s.db.DB)
	if _, err := exec.ExecContext(ctx, "delete from team_request_approvements where team_request_id = $1", requestID); err != nil {
		s.log.Error("failed to delete approvement", slog.Any("error", err))
		return fmt.Errorf("delete approvement: %w", err)
	}
	return nil
}

func (s *ApprovementStorage) ExistsApprovement(ctx context.Context, id string) (bool, error) {
	exec := getQueryExecer(ctx, s.db.DB)
	var exists bool

	err := exec.QueryRowContext(
		ctx,
		"select exists(select 1 from team_request_approvements where id = $1)",
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check approvement exists: %w", err)
	}

	return exists, nil
}

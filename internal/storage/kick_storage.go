package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"team-request-service/internal/models"
	"team-request-service/pkg/postgres"
)

type KickStorage struct {
	db  *postgres.Postgres
	log *slog.Logger
}

func NewKickStorage(db *postgres.Postgres, log *slog.Logger) (*KickStorage, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &KickStorage{
		db:  db,
		log: log,
	}, nil
}

func (s *KickStorage) CreateKick(ctx context.Context, k models.TeamKick) error {
	exec := getExecer(ctx, s.db.DB)
	_, err := exec.ExecContext(
		ctx,
		"insert into team_kicks (id, user_id, team_id, kicked_by, kick_reason) values ($1, $2, $3, $4, $5)",
		k.ID,
		k.UserID,
		k.TeamID,
		k.KickedBy,
		k.KickReason,
	)
	if err != nil {
		s.log.Error("failed to create team kick", slog.Any("error", err))
		return fmt.Errorf("insert team kick: %w", err)
	}
	return nil
}

func (s *KickStorage) ListKicksByTeam(ctx context.Context, teamID string) ([]*models.TeamKick, error) {
	exec := getQueryExecer(ctx, s.db.DB)
	rows, err := exec.QueryContext(
		ctx,
		"select id, user_id, team_id, kicked_by, kick_reason from team_kicks where team_id = $1 order by id",
		teamID,
	)
	if err != nil {
		s.log.Error("failed to list team kicks", slog.Any("error", err))
		return nil, fmt.Errorf("list team kicks: %w", err)
	}
	defer rows.Close()

	var kicks []*models.TeamKick

	for rows.Next() {
		var k models.TeamKick
		if err := rows.Scan(&k.ID, &k.UserID, &k.TeamID, &k.KickedBy, &k.KickReason); err != nil {
			return nil, fmt.Errorf("list team kicks: %w", err)
		}
		kicks = append(kicks, &k)
	}

	return kicks, rows.Err()
}

func (s *KickStorage) ExistsKick(ctx context.Context, id string) (bool, error) {
	exec := getQueryExecer(ctx, s.db.DB)
	var exists bool

	err := exec.QueryRowContext(
		ctx,
		"select exists(select 1 from team_kicks where id = $1)",
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check team kick exists: %w", err)
	}

	return exists, nil
}

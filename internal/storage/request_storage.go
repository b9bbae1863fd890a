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

var ErrRequestNotFound = errors.New("team request not found")

type RequestStorage struct {
	db  *postgres.Postgres
	log *slog.Logger
}

func NewRequestStorage(db *postgres.Postgres, log *slog.Logger) (*RequestStorage, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &RequestStorage{
		db:  db,
		log: log,
	}, nil
}

func (s *RequestStorage) CreateRequest(ctx context.Context, r models.TeamRequest) error {
	exec := getExecer(ctx, s.db.DB)
	_, err := exec.ExecContext(
		ctx,
		"insert into team_requests (id, user_id, team_id, request_type, status) values ($1, $2, $3, $4, $5)",
		r.ID,
		r.UserID,
		r.TeamID,
		r.RequestType,
		r.Status,
	)
	if err != nil {
		s.log.Error("failed to create team request", slog.Any("error", err))
		return fmt.Errorf("insert team request: %w", err)
	}
	return nil
}

func (s *RequestStorage) GetRequestByID(ctx context.Context, id string) (*models.TeamRequest, error) {
	return s.getRequest(ctx, "select id, user_id, team_id, request_type, status from team_requests where id = $1", id)
}

// GetRequestForUpdate locks the request row for the rest of the ambient
// transaction, serializing concurrent accept/decline calls on one request.
func (s *RequestStorage) GetRequestForUpdate(ctx context.Context, id string) (*models.TeamRequest, error) {
	return s.getRequest(ctx, "select id, user_id, team_id, request_type, status from team_requests where id = $1 for update", id)
}

func (s *RequestStorage) GetAwaitingByUser(ctx context.Context, userID string) (*models.TeamRequest, error) {
	return s.getRequest(ctx, "select id, user_id, team_id, request_type, status from team_requests where user_id = $1 and status = 'AWAITING'", userID)
}

func (s *RequestStorage) getRequest(ctx context.Context, query, arg string) (*models.TeamRequest, error) {
	exec := getQueryExecer(ctx, s.db.DB)
	var r models.TeamRequest
	err := exec.QueryRowContext(ctx, query, arg).
		Scan(&r.ID, &r.UserID, &r.TeamID, &r.RequestType, &r.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get team request: %w", ErrRequestNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get team request: %w", err)
	}

	approvement, err := s.getApprovement(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	r.Approvement = approvement

	return &r, nil
}

func (s *RequestStorage) getApprovement(ctx context.Context, requestID string) (*models.TeamRequestApprovement, error) {
	exec := getQueryExecer(ctx, s.db.DB)
	var a models.TeamRequestApprovement
	err := exec.QueryRowContext(
		ctx,
		`select id, team_request_id, from_team_id, to_team_id, from_team_approve, to_team_approve
from team_request_approvements where team_request_id = $1`,
		requestID,
	).Scan(&a.ID, &a.TeamRequestID, &a.FromTeamID, &a.ToTeamID, &a.FromTeamApprove, &a.ToTeamApprove)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get approvement: %w", err)
	}
	return &a, nil
}

func (s *RequestStorage) SetStatus(ctx context.Context, id, status string) error {
	exec := getExecer(ctx, s.db.DB)
	res, err := exec.ExecContext(
		ctx,
		"update team_requests set status = $1 where id = $2",
		status,
		id,
	)
	if err != nil {
		s.log.Error("failed to set request status", slog.Any("error", err))
		return fmt.Errorf("set request status: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set request status: %w", ErrRequestNotFound)
	}
	return nil
}

func (s *RequestStorage) SetTeam(ctx context.Context, id, teamID string) error {
	exec := getExecer(ctx, s.db.DB)
	res, err := exec.ExecContext(
		ctx,
		"update team_requests set team_id = $1 where id = $2",
		teamID,
		id,
	)
	if err != nil {
		s.log.Error("failed to set request team", slog.Any("error", err))
		return fmt.Errorf("set request team: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set request team: %w", ErrRequestNotFound)
	}
	return nil
}

func (s *RequestStorage) DeleteRequest(ctx context.Context, id string) error {
	exec := getExecer(ctx, s.db.DB)
	if _, err := exec.ExecContext(ctx, "delete from team_requests where id = $1", id); err != nil {
		s.log.Error("failed to delete team request", slog.Any("error", err))
		return fmt.Errorf("delete team request: %w", err)
	}
	return nil
}

func (s *RequestStorage) ListRequests(ctx context.Context) ([]*models.TeamRequest, error) {
	exec := getQueryExecer(ctx, s.db.DB)
	rows, err := exec.QueryContext(
		ctx,
		`select r.id, r.user_id, r.team_id, r.request_type, r.status,
a.id, a.from_team_id, a.to_team_id, a.from_team_approve, a.to_team_approve
from team_requests r
left join team_request_approvements a on a.team_request_id = r.id
order by r.id`,
	)
	if err != nil {
		s.log.Error("failed to list team requests", slog.Any("error", err))
		return nil, fmt.Errorf("list team requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.TeamRequest

	for rows.Next() {
		var r models.TeamRequest
		var (
			approvementID sql.NullString
			fromTeamID    sql.NullString
			toTeamID      sql.NullString
			fromApprove   sql.NullBool
			toApprove     sql.NullBool
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.TeamID, &r.RequestType, &r.Status,
			&approvementID, &fromTeamID, &toTeamID, &fromApprove, &toApprove); err != nil {
			return nil, fmt.Errorf("list team requests: %w", err)
		}
		if approvementID.Valid {
			r.Approvement = &models.TeamRequestApprovement{
				ID:            approvementID.String,
				TeamRequestID: r.ID,
				FromTeamID:    fromTeamID.String,
				ToTeamID:      toTeamID.String,
			}
			if fromApprove.Valid {
				v := fromApprove.Bool
				r.Approvement.FromTeamApprove = &v
			}
			if toApprove.Valid {
				v := toApprove.Bool
				r.Approvement.ToTeamApprove = &v
			}
		}
		requests = append(requests, &r)
	}

	return requests, rows.Err()
}

func (s *RequestStorage) ExistsRequest(ctx context.Context, id string) (bool, error) {
	exec := getQueryExecer(ctx, s.db.DB)
	var exists bool

	err := exec.QueryRowContext(
		ctx,
		"select exists(select 1 from team_requests where id = $1)",
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check team request exists: %w", err)
	}

	return exists, nil
}

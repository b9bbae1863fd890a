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

var ErrRoleNotFound = errors.New("role not found")

type RoleStorage struct {
	db  *postgres.Postgres
	log *slog.Logger
}

func NewRoleStorage(db *postgres.Postgres, log *slog.Logger) (*RoleStorage, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &RoleStorage{
		db:  db,
		log: log,
	}, nil
}

func (s *RoleStorage) GetRoleByValue(ctx context.Context, value string) (*models.Role, error) {
	exec := getQueryExecer(ctx, s.db.DB)
	var r models.Role
	err := exec.QueryRowContext(
		ctx,
		"select id, value from roles where value = $1",
		value,
	).Scan(&r.ID, &r.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get role %q: %w", value, ErrRoleNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get role %q: %w", value, err)
	}
	return &r, nil
}

// GrantRole is idempotent: granting an already held role is a no-op.
func (s *RoleStorage) GrantRole(ctx context.Context, userID, roleID string) error {
	exec := getExecer(ctx, s.db.DB)
	_, err := exec.ExecContext(
		ctx,
		"insert into user_roles (user_id, role_id) values ($1, $2) on conflict (user_id, role_id) do nothing",
		userID,
		roleID,
	)
	if err != nil {
		s.log.Error("failed to grant role", slog.Any("error", err))
		return fmt.Errorf("grant role: %w", err)
	}
	return nil
}

func (s *RoleStorage) RevokeRole(ctx context.Context, userID, roleID string) error {
	exec := getExecer(ctx, s.db.DB)
	_, err := exec.ExecContext(
		ctx,
		"delete from user_roles where user_id = $1 and role_id = $2",
		userID,
		roleID,
	)
	if err != nil {
		s.log.Error("failed to revoke role", slog.Any("error", err))
		return fmt.Errorf("revoke role: %w", err)
	}
	return nil
}

func (s *RoleStorage) GetUserRoles(ctx context.Context, userID string) ([]string, error) {
	exec := getQueryExecer(ctx, s.db.DB)
	rows, err := exec.QueryContext(
		ctx,
		`select r.value from roles r
join user_roles ur on ur.role_id = r.id
where ur.user_id = $1
order by r.value`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get user roles: %w", err)
	}
	defer rows.Close()

	var values []string

	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("get user roles: %w", err)
		}
		values = append(values, value)
	}

	return values, rows.Err()
}

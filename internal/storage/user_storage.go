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
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

type UserStorage struct {
	db  *postgres.Postgres
	log *slog.Logger
}

func NewUserStorage(db *postgres.Postgres, log *slog.Logger) (*UserStorage, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &UserStorage{
		db:  db,
		log: log,
	}, nil
}

func (s *UserStorage) CreateUser(ctx context.Context, u models.User, passwordHash string) error {
	exec := getExecer(ctx, s.db.DB)
	_, err := exec.ExecContext(
		ctx,
		"insert into users (id, username, email, password_hash) values ($1, $2, $3, $4)",
		u.ID,
		u.Username,
		u.Email,
		passwordHash,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("insert user: %w", ErrUserExists)
		}
		s.log.Error("failed to create user", slog.Any("error", err))
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	exec := getQueryExecer(ctx, s.db.DB)
	var u models.User
	err := exec.QueryRowContext(
		ctx,
		"select id, username, email, team_id from users where id = $1",
		id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.TeamID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user %q: %w", id, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", id, err)
	}
	return &u, nil
}

func (s *UserStorage) GetCredentialsByUsername(ctx context.Context, username string) (*models.UserCredentials, error) {
	exec := getQueryExecer(ctx, s.db.DB)
	var c models.UserCredentials
	err := exec.QueryRowContext(
		ctx,
		"select id, username, password_hash from users where username = $1",
		username,
	).Scan(&c.ID, &c.Username, &c.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get credentials: %w", ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get credentials: %w", err)
	}
	return &c, nil
}

func (s *UserStorage) SetUserTeam(ctx context.Context, userID string, teamID *string) error {
	exec := getExecer(ctx, s.db.DB)
	res, err := exec.ExecContext(
		ctx,
		"update users set team_id = $1 where id = $2",
		teamID,
		userID,
	)
	if err != nil {
		s.log.Error("failed to set user team", slog.Any("error", err))
		return fmt.Errorf("set user team: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set user team: %w", ErrUserNotFound)
	}
	return nil
}

func (s *UserStorage) GetUsersByTeam(ctx context.Context, teamID string) ([]*models.User, error) {
	exec := getQueryExecer(ctx, s.db.DB)
	rows, err := exec.QueryContext(
		ctx,
		"select id, username, email, team_id from users where team_id = $1 order by username",
		teamID,
	)
	if err != nil {
		s.log.Error("failed to get users by team", slog.Any("error", err))
		return nil, fmt.Errorf("get users by team: %w", err)
	}
	defer rows.Close()

	var users []*models.User

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.TeamID); err != nil {
			return nil, fmt.Errorf("get users by team: %w", err)
		}
		users = append(users, &u)
	}

	return users, rows.Err()
}

func (s *UserStorage) ListUsers(ctx context.Context) ([]*models.User, error) {
	exec := getQueryExecer(ctx, s.db.DB)
	rows, err := exec.QueryContext(
		ctx,
		"select id, username, email, team_id from users order by username",
	)
	if err != nil {
		s.log.Error("failed to list users", slog.Any("error", err))
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.TeamID); err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, &u)
	}

	return users, rows.Err()
}

func (s *UserStorage) ExistsUser(ctx context.Context, id string) (bool, error) {
	exec := getQueryExecer(ctx, s.db.DB)
	var exists bool

	err := exec.QueryRowContext(
		ctx,
		"select exists(select 1 from users where id = $1)",
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}

	return exists, nil
}

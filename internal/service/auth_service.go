package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"team-request-service/internal/models"
	"team-request-service/internal/storage"
)

var (
	ErrAuthValidation     = errors.New("validation error")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type AuthUserRepository interface {
	CreateUser(ctx context.Context, u models.User, passwordHash string) error
	GetCredentialsByUsername(ctx context.Context, username string) (*models.UserCredentials, error)
	ExistsUser(ctx context.Context, id string) (bool, error)
}

type AuthService struct {
	tx       txManager
	users    AuthUserRepository
	roles    RoleDirectory
	secret   []byte
	tokenTTL time.Duration
	log      *slog.Logger
}

func NewAuthService(tx txManager, users AuthUserRepository, roles RoleDirectory, secret string, tokenTTL time.Duration, log *slog.Logger) (*AuthService, error) {
	if tx == nil {
		return nil, errors.New("tx manager cannot be nil")
	}
	if users == nil {
		return nil, errors.New("users repository cannot be nil")
	}
	if roles == nil {
		return nil, errors.New("roles directory cannot be nil")
	}
	if secret == "" {
		return nil, errors.New("jwt secret cannot be empty")
	}
	if tokenTTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &AuthService{
		tx:       tx,
		users:    users,
		roles:    roles,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		log:      log,
	}, nil
}

// Register creates a user with a bcrypt password hash and the default
// player role.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrAuthValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrAuthValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var created *models.User
	err = s.tx.Run(ctx, func(ctx context.Context) error {
		id, err := generateID(ctx, s.users.ExistsUser)
		if err != nil {
			return fmt.Errorf("register user: %w", err)
		}
		user := models.User{ID: id, Username: username, Email: email}
		if err := s.users.CreateUser(ctx, user, string(hash)); err != nil {
			if errors.Is(err, storage.ErrUserExists) {
				return ErrUserExists
			}
			return fmt.Errorf("register user: %w", err)
		}

		playerRole, err := s.roles.GetRoleByValue(ctx, models.RolePlayer)
		if err != nil {
			return fmt.Errorf("register user: %w", err)
		}
		if err := s.roles.GrantRole(ctx, user.ID, playerRole.ID); err != nil {
			return fmt.Errorf("register user: %w", err)
		}

		user.Roles = []string{playerRole.Value}
		created = &user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Login verifies the password and issues a signed token carrying the user id
// and role values.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	creds, err := s.users.GetCredentialsByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	roles, err := s.roles.GetUserRoles(ctx, creds.ID)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      creds.ID,
		"username": creds.Username,
		"roles":    roles,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

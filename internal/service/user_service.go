package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"team-request-service/internal/models"
	"team-request-service/internal/storage"
)

type UserLister interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
}

type UserService struct {
	users   UserDirectory
	listing UserLister
	roles   RoleDirectory
	log     *slog.Logger
}

func NewUserService(users UserDirectory, listing UserLister, roles RoleDirectory, log *slog.Logger) (*UserService, error) {
	if users == nil {
		return nil, errors.New("users directory cannot be nil")
	}
	if listing == nil {
		return nil, errors.New("users listing cannot be nil")
	}
	if roles == nil {
		return nil, errors.New("roles directory cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &UserService{
		users:   users,
		listing: listing,
		roles:   roles,
		log:     log,
	}, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	roles, err := s.roles.GetUserRoles(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.Roles = roles
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.listing.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

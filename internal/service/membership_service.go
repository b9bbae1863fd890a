package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"team-request-service/internal/models"
)

type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SetUserTeam(ctx context.Context, userID string, teamID *string) error
	GetUsersByTeam(ctx context.Context, teamID string) ([]*models.User, error)
}

type TeamDirectory interface {
	GetTeamByID(ctx context.Context, id string) (*models.Team, error)
	SetManager(ctx context.Context, teamID string, managerID *string) error
}

type RoleDirectory interface {
	GetRoleByValue(ctx context.Context, value string) (*models.Role, error)
	GrantRole(ctx context.Context, userID, roleID string) error
	RevokeRole(ctx context.Context, userID, roleID string) error
	GetUserRoles(ctx context.Context, userID string) ([]string, error)
}

// MembershipService executes the concrete membership effects of accepted
// team requests. Every method is idempotent with respect to already-applied
// state and expects to run on the caller's transaction.
type MembershipService struct {
	users UserDirectory
	teams TeamDirectory
	roles RoleDirectory
	log   *slog.Logger
}

func NewMembershipService(users UserDirectory, teams TeamDirectory, roles RoleDirectory, log *slog.Logger) (*MembershipService, error) {
	if users == nil {
		return nil, errors.New("users directory cannot be nil")
	}
	if teams == nil {
		return nil, errors.New("teams directory cannot be nil")
	}
	if roles == nil {
		return nil, errors.New("roles directory cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &MembershipService{
		users: users,
		teams: teams,
		roles: roles,
		log:   log,
	}, nil
}

func (s *MembershipService) Join(ctx context.Context, user *models.User, team *models.Team) error {
	if user.TeamID != nil && *user.TeamID == team.ID {
		return nil
	}
	if err := s.users.SetUserTeam(ctx, user.ID, &team.ID); err != nil {
		return fmt.Errorf("join team: %w", err)
	}
	return nil
}

func (s *MembershipService) Leave(ctx context.Context, user *models.User, team *models.Team) error {
	if team.ManagerID != nil && *team.ManagerID == user.ID {
		if err := s.unsetManager(ctx, user, team); err != nil {
			return fmt.Errorf("leave team: %w", err)
		}
	}
	if err := s.users.SetUserTeam(ctx, user.ID, nil); err != nil {
		return fmt.Errorf("leave team: %w", err)
	}
	return nil
}

func (s *MembershipService) Move(ctx context.Context, user *models.User, toTeamID string) error {
	team, err := s.teams.GetTeamByID(ctx, toTeamID)
	if err != nil {
		return fmt.Errorf("move to team: %w", err)
	}
	if err := s.users.SetUserTeam(ctx, user.ID, &team.ID); err != nil {
		return fmt.Errorf("move to team: %w", err)
	}
	return nil
}

// InstallManager demotes the current manager, if any, and installs user as
// the manager of team, joining the team first when needed.
func (s *MembershipService) InstallManager(ctx context.Context, user *models.User, team *models.Team) error {
	if user.TeamID == nil || *user.TeamID != team.ID {
		if err := s.users.SetUserTeam(ctx, user.ID, &team.ID); err != nil {
			return fmt.Errorf("install manager: %w", err)
		}
	}
	if team.ManagerID != nil && *team.ManagerID != user.ID {
		current, err := s.users.GetUserByID(ctx, *team.ManagerID)
		if err != nil {
			return fmt.Errorf("install manager: %w", err)
		}
		if err := s.unsetManager(ctx, current, team); err != nil {
			return fmt.Errorf("install manager: %w", err)
		}
	}
	if err := s.teams.SetManager(ctx, team.ID, &user.ID); err != nil {
		return fmt.Errorf("install manager: %w", err)
	}
	managerRole, err := s.roles.GetRoleByValue(ctx, models.RoleManager)
	if err != nil {
		return fmt.Errorf("install manager: %w", err)
	}
	if err := s.roles.GrantRole(ctx, user.ID, managerRole.ID); err != nil {
		return fmt.Errorf("install manager: %w", err)
	}
	managerID := user.ID
	team.ManagerID = &managerID
	return nil
}

// RemoveFromTeam detaches user from team, clearing the manager post first
// when the user holds it. Used by the kick flow.
func (s *MembershipService) RemoveFromTeam(ctx context.Context, user *models.User, team *models.Team) error {
	if team.ManagerID != nil && *team.ManagerID == user.ID {
		if err := s.unsetManager(ctx, user, team); err != nil {
			return fmt.Errorf("remove from team: %w", err)
		}
	}
	if err := s.users.SetUserTeam(ctx, user.ID, nil); err != nil {
		return fmt.Errorf("remove from team: %w", err)
	}
	return nil
}

func (s *MembershipService) unsetManager(ctx context.Context, user *models.User, team *models.Team) error {
	if err := s.teams.SetManager(ctx, team.ID, nil); err != nil {
		return err
	}
	managerRole, err := s.roles.GetRoleByValue(ctx, models.RoleManager)
	if err != nil {
		return err
	}
	if err := s.roles.RevokeRole(ctx, user.ID, managerRole.ID); err != nil {
		return err
	}
	team.ManagerID = nil
	return nil
}

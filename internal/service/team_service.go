package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"team-request-service/internal/models"
	"team-request-service/internal/storage"
)

var (
	ErrTeamValidation = errors.New("validation error")
	ErrTeamExists     = errors.New("team already exists")
	ErrNotTeamMember  = errors.New("user is not a member of any team")
)

type TeamRepository interface {
	CreateTeam(context.Context, models.Team) error
	GetTeamByID(ctx context.Context, id string) (*models.Team, error)
	GetTeamByName(ctx context.Context, name string) (*models.Team, error)
	SetManager(ctx context.Context, teamID string, managerID *string) error
	ListTeams(ctx context.Context) ([]*models.Team, error)
	ExistsTeam(ctx context.Context, id string) (bool, error)
}

type KickRepository interface {
	CreateKick(context.Context, models.TeamKick) error
	ListKicksByTeam(ctx context.Context, teamID string) ([]*models.TeamKick, error)
	ExistsKick(ctx context.Context, id string) (bool, error)
}

type awaitingDecliner interface {
	DeclineAwaitingFor(ctx context.Context, userID string) error
}

type TeamService struct {
	tx         txManager
	teams      TeamRepository
	users      UserDirectory
	roles      RoleDirectory
	kicks      KickRepository
	membership *MembershipService
	requests   awaitingDecliner
	log        *slog.Logger
}

func NewTeamService(
	tx txManager,
	teams TeamRepository,
	users UserDirectory,
	roles RoleDirectory,
	kicks KickRepository,
	membership *MembershipService,
	requests awaitingDecliner,
	log *slog.Logger,
) (*TeamService, error) {
	if tx == nil {
		return nil, errors.New("tx manager cannot be nil")
	}
	if teams == nil {
		return nil, errors.New("teams repository cannot be nil")
	}
	if users == nil {
		return nil, errors.New("users directory cannot be nil")
	}
	if roles == nil {
		return nil, errors.New("roles directory cannot be nil")
	}
	if kicks == nil {
		return nil, errors.New("kicks repository cannot be nil")
	}
	if membership == nil {
		return nil, errors.New("membership service cannot be nil")
	}
	if requests == nil {
		return nil, errors.New("requests decliner cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &TeamService{
		tx:         tx,
		teams:      teams,
		users:      users,
		roles:      roles,
		kicks:      kicks,
		membership: membership,
		requests:   requests,
		log:        log,
	}, nil
}

func (s *TeamService) CreateTeam(ctx context.Context, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: team_name is required", ErrTeamValidation)
	}

	var created *models.Team
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		id, err := generateID(ctx, s.teams.ExistsTeam)
		if err != nil {
			return fmt.Errorf("create team: %w", err)
		}
		team := models.Team{ID: id, Name: name}
		if err := s.teams.CreateTeam(ctx, team); err != nil {
			if errors.Is(err, storage.ErrTeamExists) {
				return ErrTeamExists
			}
			return fmt.Errorf("create team: %w", err)
		}
		created = &team
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *TeamService) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	team, err := s.teams.GetTeamByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	members, err := s.users.GetUsersByTeam(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("get team: %w", err)
	}
	team.Members = members
	return team, nil
}

func (s *TeamService) ListTeams(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teams.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	for _, team := range teams {
		members, err := s.users.GetUsersByTeam(ctx, team.ID)
		if err != nil {
			return nil, fmt.Errorf("list teams: %w", err)
		}
		team.Members = members
	}
	return teams, nil
}

// AddUser places a user on a team directly, bypassing the request workflow.
// Authorization (manager/admin) is enforced at the HTTP boundary.
func (s *TeamService) AddUser(ctx context.Context, teamID, userID string) (*models.Team, error) {
	var team *models.Team
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		var err error
		team, err = s.teams.GetTeamByID(ctx, teamID)
		if err != nil {
			if errors.Is(err, storage.ErrTeamNotFound) {
				return ErrTeamNotFound
			}
			return fmt.Errorf("add user to team: %w", err)
		}
		user, err := s.users.GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("add user to team: %w", err)
		}
		return s.membership.Join(ctx, user, team)
	})
	if err != nil {
		return nil, err
	}
	return s.GetTeam(ctx, team.ID)
}

// SetManager installs a user as the manager of a team directly (admin
// surface); the displaced manager, if any, is demoted.
func (s *TeamService) SetManager(ctx context.Context, teamID, userID string) (*models.Team, error) {
	var team *models.Team
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		var err error
		team, err = s.teams.GetTeamByID(ctx, teamID)
		if err != nil {
			if errors.Is(err, storage.ErrTeamNotFound) {
				return ErrTeamNotFound
			}
			return fmt.Errorf("set team manager: %w", err)
		}
		user, err := s.users.GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("set team manager: %w", err)
		}
		return s.membership.InstallManager(ctx, user, team)
	})
	if err != nil {
		return nil, err
	}
	return s.GetTeam(ctx, team.ID)
}

func (s *TeamService) ListKicks(ctx context.Context, teamID string) ([]*models.TeamKick, error) {
	if _, err := s.teams.GetTeamByID(ctx, teamID); err != nil {
		if errors.Is(err, storage.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("list team kicks: %w", err)
	}
	kicks, err := s.kicks.ListKicksByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list team kicks: %w", err)
	}
	return kicks, nil
}

// Kick removes a user from their team on behalf of a manager of that team or
// an admin. The removal is recorded, and the victim's awaiting team request,
// if any, is declined rather than silently dropped.
func (s *TeamService) Kick(ctx context.Context, actorID, userID, reason string) (*models.TeamKick, error) {
	var kick *models.TeamKick
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		actor, err := s.users.GetUserByID(ctx, actorID)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("kick user: %w", err)
		}
		kicked, err := s.users.GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("kick user: %w", err)
		}

		actorRoles, err := s.roles.GetUserRoles(ctx, actor.ID)
		if err != nil {
			return fmt.Errorf("kick user: %w", err)
		}
		isAdmin := slices.Contains(actorRoles, models.RoleAdmin)

		if actor.TeamID == nil && !isAdmin {
			return ErrNoAccess
		}
		if kicked.TeamID == nil {
			return ErrNotTeamMember
		}

		team, err := s.teams.GetTeamByID(ctx, *kicked.TeamID)
		if err != nil {
			if errors.Is(err, storage.ErrTeamNotFound) {
				return ErrTeamNotFound
			}
			return fmt.Errorf("kick user: %w", err)
		}
		if !isAdmin && *actor.TeamID != team.ID {
			return ErrNoAccess
		}

		kickID, err := generateID(ctx, s.kicks.ExistsKick)
		if err != nil {
			return fmt.Errorf("kick user: %w", err)
		}
		record := models.TeamKick{
			ID:         kickID,
			UserID:     kicked.ID,
			TeamID:     team.ID,
			KickedBy:   actor.ID,
			KickReason: reason,
		}
		if err := s.kicks.CreateKick(ctx, record); err != nil {
			return fmt.Errorf("kick user: %w", err)
		}

		if err := s.requests.DeclineAwaitingFor(ctx, kicked.ID); err != nil {
			return fmt.Errorf("kick user: %w", err)
		}
		if err := s.membership.RemoveFromTeam(ctx, kicked, team); err != nil {
			return fmt.Errorf("kick user: %w", err)
		}

		kick = &record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return kick, nil
}

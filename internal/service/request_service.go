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
	ErrRequestValidation = errors.New("validation error")
	ErrUserNotFound      = errors.New("user not found")
	ErrTeamNotFound      = errors.New("team not found")
	ErrRequestNotFound   = errors.New("team request not found")
	ErrRequestPending    = errors.New("user already has an awaiting team request")
	ErrAlreadyMember     = errors.New("user is already on the team")
	ErrRequestVerified   = errors.New("team request is already verified")
	ErrNoAccess          = errors.New("no access to the team request")
	ErrNoAwaitingRequest = errors.New("user has no awaiting team request")
)

type RequestRepository interface {
	CreateRequest(context.Context, models.TeamRequest) error
	GetRequestByID(ctx context.Context, id string) (*models.TeamRequest, error)
	GetRequestForUpdate(ctx context.Context, id string) (*models.TeamRequest, error)
	GetAwaitingByUser(ctx context.Context, userID string) (*models.TeamRequest, error)
	SetStatus(ctx context.Context, id, status string) error
	SetTeam(ctx context.Context, id, teamID string) error
	DeleteRequest(ctx context.Context, id string) error
	ListRequests(ctx context.Context) ([]*models.TeamRequest, error)
	ExistsRequest(ctx context.Context, id string) (bool, error)
}

type requestTeamDirectory interface {
	GetTeamByID(ctx context.Context, id string) (*models.Team, error)
}

// RequestService is the team request workflow: it validates and creates
// membership-change requests, applies accept/decline transitions and, on
// final acceptance, hands the effect to the membership service. A request
// lives in AWAITING until a single verdict (or, for moves, a bilateral one)
// makes it ACCEPTED or DECLINED; terminal states are immutable.
type RequestService struct {
	tx           txManager
	users        UserDirectory
	teams        requestTeamDirectory
	roles        RoleDirectory
	requests     RequestRepository
	approvements ApprovementRepository
	approval     *ApprovalCoordinator
	membership   *MembershipService
	log          *slog.Logger
}

func NewRequestService(
	tx txManager,
	users UserDirectory,
	teams requestTeamDirectory,
	roles RoleDirectory,
	requests RequestRepository,
	approvements ApprovementRepository,
	approval *ApprovalCoordinator,
	membership *MembershipService,
	log *slog.Logger,
) (*RequestService, error) {
	if tx == nil {
		return nil, errors.New("tx manager cannot be nil")
	}
	if users == nil {
		return nil, errors.New("users directory cannot be nil")
	}
	if teams == nil {
		return nil, errors.New("teams directory cannot be nil")
	}
	if roles == nil {
		return nil, errors.New("roles directory cannot be nil")
	}
	if requests == nil {
		return nil, errors.New("requests repository cannot be nil")
	}
	if approvements == nil {
		return nil, errors.New("approvements repository cannot be nil")
	}
	if approval == nil {
		return nil, errors.New("approval coordinator cannot be nil")
	}
	if membership == nil {
		return nil, errors.New("membership service cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &RequestService{
		tx:           tx,
		users:        users,
		teams:        teams,
		roles:        roles,
		requests:     requests,
		approvements: approvements,
		approval:     approval,
		membership:   membership,
		log:          log,
	}, nil
}

func (s *RequestService) CreateJoin(ctx context.Context, userID, teamID string) (*models.TeamRequest, error) {
	if strings.TrimSpace(teamID) == "" {
		return nil, fmt.Errorf("%w: team_id is required", ErrRequestValidation)
	}

	var created *models.TeamRequest
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		user, team, err := s.validateCreation(ctx, userID, teamID)
		if err != nil {
			return err
		}
		if user.TeamID != nil && *user.TeamID == team.ID {
			return ErrAlreadyMember
		}
		created, err = s.newRequest(ctx, models.RequestTypeJoin, user.ID, team.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *RequestService) CreateLeave(ctx context.Context, userID string) (*models.TeamRequest, error) {
	var created *models.TeamRequest
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		user, team, err := s.validateCreation(ctx, userID, "")
		if err != nil {
			return err
		}
		created, err = s.newRequest(ctx, models.RequestTypeLeave, user.ID, team.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *RequestService) CreateManagerPost(ctx context.Context, userID, teamID string) (*models.TeamRequest, error) {
	if strings.TrimSpace(teamID) == "" {
		return nil, fmt.Errorf("%w: team_id is required", ErrRequestValidation)
	}

	var created *models.TeamRequest
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		user, team, err := s.validateCreation(ctx, userID, teamID)
		if err != nil {
			return err
		}
		created, err = s.newRequest(ctx, models.RequestTypeManagerPost, user.ID, team.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateMove opens a cross-team move. The request stays attached to the
// user's current team; the approvement record carries both endpoints and
// collects one vote per side.
func (s *RequestService) CreateMove(ctx context.Context, userID, toTeamID string) (*models.TeamRequest, error) {
	if strings.TrimSpace(toTeamID) == "" {
		return nil, fmt.Errorf("%w: team_id is required", ErrRequestValidation)
	}

	var created *models.TeamRequest
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		user, team, err := s.validateCreation(ctx, userID, "")
		if err != nil {
			return err
		}
		toTeam, err := s.teams.GetTeamByID(ctx, toTeamID)
		if err != nil {
			if errors.Is(err, storage.ErrTeamNotFound) {
				return ErrTeamNotFound
			}
			return fmt.Errorf("create move request: %w", err)
		}
		created, err = s.newRequest(ctx, models.RequestTypeMove, user.ID, team.ID)
		if err != nil {
			return err
		}

		approvementID, err := generateID(ctx, s.approvements.ExistsApprovement)
		if err != nil {
			return fmt.Errorf("create move request: %w", err)
		}
		approvement := models.TeamRequestApprovement{
			ID:            approvementID,
			TeamRequestID: created.ID,
			FromTeamID:    team.ID,
			ToTeamID:      toTeam.ID,
		}
		if err := s.approvements.CreateApprovement(ctx, approvement); err != nil {
			return fmt.Errorf("create move request: %w", err)
		}
		created.Approvement = &approvement
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Accept records the acting side's verdict. For a move request the first
// accept only stores the side's vote and hands the request over to the
// opposite team; the request turns ACCEPTED, and the membership effect runs,
// once no vote is missing.
func (s *RequestService) Accept(ctx context.Context, actorID, requestID string) (*models.TeamRequest, error) {
	var result *models.TeamRequest
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		team, request, isAdmin, err := s.validateVerification(ctx, actorID, requestID)
		if err != nil {
			return err
		}
		if request.RequestType == models.RequestTypeManagerPost && !isAdmin {
			return ErrNoAccess
		}

		if request.Approvement != nil {
			if err := s.approval.RecordVote(ctx, request.Approvement, team.ID, true); err != nil {
				return fmt.Errorf("accept request: %w", err)
			}
			opposite := s.approval.OppositeTeam(request.Approvement, team.ID)
			if err := s.requests.SetTeam(ctx, request.ID, opposite); err != nil {
				return fmt.Errorf("accept request: %w", err)
			}
			request.TeamID = opposite
		}

		if s.approval.FullyApproved(request.Approvement) {
			if err := s.requests.SetStatus(ctx, request.ID, models.StatusAccepted); err != nil {
				return fmt.Errorf("accept request: %w", err)
			}
			request.Status = models.StatusAccepted

			subject, err := s.users.GetUserByID(ctx, request.UserID)
			if err != nil {
				if errors.Is(err, storage.ErrUserNotFound) {
					return ErrUserNotFound
				}
				return fmt.Errorf("accept request: %w", err)
			}
			if err := s.execute(ctx, request, team, subject); err != nil {
				return fmt.Errorf("accept request: %w", err)
			}
		}

		result = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Decline finalizes the request as DECLINED. For a move request the acting
// side's vote is stored as false first; either side declining ends the whole
// request immediately.
func (s *RequestService) Decline(ctx context.Context, actorID, requestID string) (*models.TeamRequest, error) {
	var result *models.TeamRequest
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		team, request, _, err := s.validateVerification(ctx, actorID, requestID)
		if err != nil {
			return err
		}

		if request.Approvement != nil {
			if err := s.approval.RecordVote(ctx, request.Approvement, team.ID, false); err != nil {
				return fmt.Errorf("decline request: %w", err)
			}
		}

		if err := s.requests.SetStatus(ctx, request.ID, models.StatusDeclined); err != nil {
			return fmt.Errorf("decline request: %w", err)
		}
		request.Status = models.StatusDeclined

		result = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CancelOwn deletes the caller's awaiting request along with its approvement.
func (s *RequestService) CancelOwn(ctx context.Context, userID string) error {
	return s.tx.Run(ctx, func(ctx context.Context) error {
		if _, err := s.users.GetUserByID(ctx, userID); err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("cancel request: %w", err)
		}

		request, err := s.requests.GetAwaitingByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, storage.ErrRequestNotFound) {
				return ErrNoAwaitingRequest
			}
			return fmt.Errorf("cancel request: %w", err)
		}

		if request.Approvement != nil {
			if err := s.approvements.DeleteByRequestID(ctx, request.ID); err != nil {
				return fmt.Errorf("cancel request: %w", err)
			}
		}
		if err := s.requests.DeleteRequest(ctx, request.ID); err != nil {
			return fmt.Errorf("cancel request: %w", err)
		}
		return nil
	})
}

// DeclineAwaitingFor declines (not deletes) the user's awaiting request, if
// any. Called from the kick flow on the kicker's transaction so the victim's
// pending intent is not left orphaned.
func (s *RequestService) DeclineAwaitingFor(ctx context.Context, userID string) error {
	request, err := s.requests.GetAwaitingByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrRequestNotFound) {
			return nil
		}
		return fmt.Errorf("decline awaiting request: %w", err)
	}
	if err := s.requests.SetStatus(ctx, request.ID, models.StatusDeclined); err != nil {
		return fmt.Errorf("decline awaiting request: %w", err)
	}
	return nil
}

func (s *RequestService) ListAll(ctx context.Context) ([]*models.TeamRequest, error) {
	requests, err := s.requests.ListRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

func (s *RequestService) newRequest(ctx context.Context, requestType, userID, teamID string) (*models.TeamRequest, error) {
	id, err := generateID(ctx, s.requests.ExistsRequest)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	request := models.TeamRequest{
		ID:          id,
		UserID:      userID,
		TeamID:      teamID,
		RequestType: requestType,
		Status:      models.StatusAwaiting,
	}
	if err := s.requests.CreateRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return &request, nil
}

// validateCreation resolves the acting user and the relevant team (teamID
// when given, the user's current team otherwise) and rejects a second
// awaiting request.
func (s *RequestService) validateCreation(ctx context.Context, userID, teamID string) (*models.User, *models.Team, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("validate request creation: %w", err)
	}

	if teamID == "" {
		if user.TeamID == nil {
			return nil, nil, ErrTeamNotFound
		}
		teamID = *user.TeamID
	}
	team, err := s.teams.GetTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, storage.ErrTeamNotFound) {
			return nil, nil, ErrTeamNotFound
		}
		return nil, nil, fmt.Errorf("validate request creation: %w", err)
	}

	_, err = s.requests.GetAwaitingByUser(ctx, user.ID)
	if err == nil {
		return nil, nil, ErrRequestPending
	}
	if !errors.Is(err, storage.ErrRequestNotFound) {
		return nil, nil, fmt.Errorf("validate request creation: %w", err)
	}

	return user, team, nil
}

// validateVerification resolves the actor, the team the actor verifies for
// (the request's own team for admins) and the request itself, locked for the
// rest of the transaction. The actor's team must own the request.
func (s *RequestService) validateVerification(ctx context.Context, actorID, requestID string) (*models.Team, *models.TeamRequest, bool, error) {
	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, nil, false, ErrUserNotFound
		}
		return nil, nil, false, fmt.Errorf("validate request verification: %w", err)
	}

	roles, err := s.roles.GetUserRoles(ctx, actor.ID)
	if err != nil {
		return nil, nil, false, fmt.Errorf("validate request verification: %w", err)
	}
	isAdmin := slices.Contains(roles, models.RoleAdmin)

	if actor.TeamID == nil && !isAdmin {
		return nil, nil, false, ErrTeamNotFound
	}

	var team *models.Team
	if actor.TeamID != nil {
		team, err = s.teams.GetTeamByID(ctx, *actor.TeamID)
		if err != nil && !errors.Is(err, storage.ErrTeamNotFound) {
			return nil, nil, false, fmt.Errorf("validate request verification: %w", err)
		}
		if team == nil && !isAdmin {
			return nil, nil, false, ErrTeamNotFound
		}
	}

	request, err := s.requests.GetRequestForUpdate(ctx, requestID)
	if err != nil {
		if errors.Is(err, storage.ErrRequestNotFound) {
			return nil, nil, false, ErrRequestNotFound
		}
		return nil, nil, false, fmt.Errorf("validate request verification: %w", err)
	}

	// an admin acts on behalf of whichever team currently holds the request
	if isAdmin {
		team, err = s.teams.GetTeamByID(ctx, request.TeamID)
		if err != nil {
			if errors.Is(err, storage.ErrTeamNotFound) {
				return nil, nil, false, ErrTeamNotFound
			}
			return nil, nil, false, fmt.Errorf("validate request verification: %w", err)
		}
	}

	if request.Status != models.StatusAwaiting {
		return nil, nil, false, ErrRequestVerified
	}
	if request.TeamID != team.ID {
		return nil, nil, false, ErrNoAccess
	}

	return team, request, isAdmin, nil
}

func (s *RequestService) execute(ctx context.Context, request *models.TeamRequest, team *models.Team, user *models.User) error {
	switch request.RequestType {
	case models.RequestTypeJoin:
		return s.membership.Join(ctx, user, team)
	case models.RequestTypeLeave:
		return s.membership.Leave(ctx, user, team)
	case models.RequestTypeMove:
		if request.Approvement == nil {
			return fmt.Errorf("move request %s has no approvement", request.ID)
		}
		return s.membership.Move(ctx, user, request.Approvement.ToTeamID)
	case models.RequestTypeManagerPost:
		return s.membership.InstallManager(ctx, user, team)
	default:
		return fmt.Errorf("unknown request type %q", request.RequestType)
	}
}

package service

import (
	"context"
	"errors"

	"team-request-service/internal/models"
)

type ApprovementRepository interface {
	CreateApprovement(context.Context, models.TeamRequestApprovement) error
	SetFromTeamApprove(ctx context.Context, id string, approve bool) error
	SetToTeamApprove(ctx context.Context, id string, approve bool) error
	DeleteByRequestID(ctx context.Context, requestID string) error
	ExistsApprovement(ctx context.Context, id string) (bool, error)
}

// ApprovalCoordinator owns the bilateral vote record of a move request.
// The voting side is resolved by comparing the acting team against the
// approvement endpoints; a side may re-vote until the request is terminal.
type ApprovalCoordinator struct {
	approvements ApprovementRepository
}

func NewApprovalCoordinator(approvements ApprovementRepository) (*ApprovalCoordinator, error) {
	if approvements == nil {
		return nil, errors.New("approvements repository cannot be nil")
	}
	return &ApprovalCoordinator{approvements: approvements}, nil
}

func (c *ApprovalCoordinator) RecordVote(ctx context.Context, a *models.TeamRequestApprovement, teamID string, approve bool) error {
	vote := approve
	if a.FromTeamID == teamID {
		if err := c.approvements.SetFromTeamApprove(ctx, a.ID, vote); err != nil {
			return err
		}
		a.FromTeamApprove = &vote
		return nil
	}
	if err := c.approvements.SetToTeamApprove(ctx, a.ID, vote); err != nil {
		return err
	}
	a.ToTeamApprove = &vote
	return nil
}

func (c *ApprovalCoordinator) FullyApproved(a *models.TeamRequestApprovement) bool {
	if a == nil {
		return true
	}
	return a.FromTeamApprove != nil && *a.FromTeamApprove &&
		a.ToTeamApprove != nil && *a.ToTeamApprove
}

// OppositeTeam returns the endpoint the acting team is not on. After a vote
// the request travels there so the counterpart manager can act on it.
func (c *ApprovalCoordinator) OppositeTeam(a *models.TeamRequestApprovement, teamID string) string {
	if a.FromTeamID == teamID {
		return a.ToTeamID
	}
	return a.FromTeamID
}

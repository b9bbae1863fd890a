package service

import (
	"context"
	"testing"

	"team-request-service/internal/models"
)

func TestApprovalCoordinator_RecordVoteResolvesSide(t *testing.T) {
	store := newMemStore()
	coordinator, err := NewApprovalCoordinator(store)
	if err != nil {
		t.Fatalf("NewApprovalCoordinator: %v", err)
	}
	ctx := context.Background()

	approvement := models.TeamRequestApprovement{
		ID:            "approvement-1",
		TeamRequestID: "request-1",
		FromTeamID:    "team-a",
		ToTeamID:      "team-b",
	}
	if err := store.CreateApprovement(ctx, approvement); err != nil {
		t.Fatalf("CreateApprovement: %v", err)
	}

	if err := coordinator.RecordVote(ctx, &approvement, "team-a", true); err != nil {
		t.Fatalf("RecordVote from-side: %v", err)
	}
	if approvement.FromTeamApprove == nil || !*approvement.FromTeamApprove {
		t.Error("expected from-side vote true")
	}
	if approvement.ToTeamApprove != nil {
		t.Error("expected to-side vote untouched")
	}
	if stored := store.approvements["approvement-1"]; stored.FromTeamApprove == nil || !*stored.FromTeamApprove {
		t.Error("expected from-side vote persisted")
	}

	if err := coordinator.RecordVote(ctx, &approvement, "team-b", false); err != nil {
		t.Fatalf("RecordVote to-side: %v", err)
	}
	if approvement.ToTeamApprove == nil || *approvement.ToTeamApprove {
		t.Error("expected to-side vote false")
	}
}

func TestApprovalCoordinator_FullyApproved(t *testing.T) {
	coordinator, err := NewApprovalCoordinator(newMemStore())
	if err != nil {
		t.Fatalf("NewApprovalCoordinator: %v", err)
	}

	yes, no := true, false
	tests := []struct {
		name        string
		approvement *models.TeamRequestApprovement
		want        bool
	}{
		{"no approvement needed", nil, true},
		{"no votes", &models.TeamRequestApprovement{}, false},
		{"from only", &models.TeamRequestApprovement{FromTeamApprove: &yes}, false},
		{"both yes", &models.TeamRequestApprovement{FromTeamApprove: &yes, ToTeamApprove: &yes}, true},
		{"one no", &models.TeamRequestApprovement{FromTeamApprove: &yes, ToTeamApprove: &no}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := coordinator.FullyApproved(tc.approvement); got != tc.want {
				t.Errorf("FullyApproved = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestApprovalCoordinator_OppositeTeam(t *testing.T) {
	coordinator, err := NewApprovalCoordinator(newMemStore())
	if err != nil {
		t.Fatalf("NewApprovalCoordinator: %v", err)
	}

	approvement := &models.TeamRequestApprovement{FromTeamID: "team-a", ToTeamID: "team-b"}
	if got := coordinator.OppositeTeam(approvement, "team-a"); got != "team-b" {
		t.Errorf("OppositeTeam(team-a) = %s, want team-b", got)
	}
	if got := coordinator.OppositeTeam(approvement, "team-b"); got != "team-a" {
		t.Errorf("OppositeTeam(team-b) = %s, want team-a", got)
	}
}

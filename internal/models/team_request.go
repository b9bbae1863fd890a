package models

const (
	RequestTypeJoin        = "JOIN_THE_TEAM"
	RequestTypeLeave       = "LEAVE_THE_TEAM"
	RequestTypeMove        = "MOVE_TO_ANOTHER_TEAM"
	RequestTypeManagerPost = "MANAGER_POST"
)

const (
	StatusAwaiting = "AWAITING"
	StatusAccepted = "ACCEPTED"
	StatusDeclined = "DECLINED"
)

type TeamRequest struct {
	ID          string                  `json:"team_request_id"`
	UserID      string                  `json:"user_id"`
	TeamID      string                  `json:"team_id"`
	RequestType string                  `json:"request_type"`
	Status      string                  `json:"status"`
	Approvement *TeamRequestApprovement `json:"approvement,omitempty"`
}

// TeamRequestApprovement is the bilateral vote record of a move request.
// A nil vote means the side has not voted yet.
type TeamRequestApprovement struct {
	ID              string `json:"approvement_id"`
	TeamRequestID   string `json:"team_request_id"`
	FromTeamID      string `json:"from_team_id"`
	ToTeamID        string `json:"to_team_id"`
	FromTeamApprove *bool  `json:"from_team_approve"`
	ToTeamApprove   *bool  `json:"to_team_approve"`
}

type TeamIDRequest struct {
	TeamID string `json:"team_id"`
}

type TeamRequestResponse struct {
	TeamRequest TeamRequest `json:"team_request"`
}

type TeamRequestsResponse struct {
	TeamRequests []*TeamRequest `json:"team_requests"`
}

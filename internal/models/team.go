package models

type Team struct {
	ID        string  `json:"team_id"`
	Name      string  `json:"team_name"`
	ManagerID *string `json:"manager_id"`
	Members   []*User `json:"members,omitempty"`
}

type TeamKick struct {
	ID         string `json:"kick_id"`
	UserID     string `json:"user_id"`
	TeamID     string `json:"team_id"`
	KickedBy   string `json:"kicked_by"`
	KickReason string `json:"kick_reason"`
}

type CreateTeamRequest struct {
	TeamName string `json:"team_name"`
}

type AddUserRequest struct {
	UserID string `json:"user_id"`
}

type KickUserRequest struct {
	UserID     string `json:"user_id"`
	KickReason string `json:"kick_reason"`
}

type TeamResponse struct {
	Team Team `json:"team"`
}

type TeamsResponse struct {
	Teams []*Team `json:"teams"`
}

type TeamKickResponse struct {
	Kick TeamKick `json:"kick"`
}

type TeamKicksResponse struct {
	Kicks []*TeamKick `json:"kicks"`
}

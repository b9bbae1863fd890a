package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"team-request-service/internal/models"
	"team-request-service/internal/storage"
)

type fakeTx struct{}

func (fakeTx) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memStore is an in-memory stand-in for every storage the services consume.
type memStore struct {
	users        map[string]*models.User
	creds        map[string]*models.UserCredentials
	teams        map[string]*models.Team
	rolesByValue map[string]*models.Role
	userRoles    map[string]map[string]bool
	requests     map[string]*models.TeamRequest
	approvements map[string]*models.TeamRequestApprovement
	kicks        map[string]*models.TeamKick
}

func newMemStore() *memStore {
	s := &memStore{
		users:        make(map[string]*models.User),
		creds:        make(map[string]*models.UserCredentials),
		teams:        make(map[string]*models.Team),
		rolesByValue: make(map[string]*models.Role),
		userRoles:    make(map[string]map[string]bool),
		requests:     make(map[string]*models.TeamRequest),
		approvements: make(map[string]*models.TeamRequestApprovement),
		kicks:        make(map[string]*models.TeamKick),
	}
	for i, value := range []string{models.RolePlayer, models.RoleManager, models.RoleAdmin} {
		s.rolesByValue[value] = &models.Role{ID: fmt.Sprintf("role-%d", i), Value: value}
	}
	return s
}

func (s *memStore) addUser(id string, teamID *string, roles ...string) *models.User {
	u := &models.User{ID: id, Username: id, Email: id + "@example.com", TeamID: teamID}
	s.users[id] = u
	for _, value := range roles {
		role := s.rolesByValue[value]
		if s.userRoles[id] == nil {
			s.userRoles[id] = make(map[string]bool)
		}
		s.userRoles[id][role.ID] = true
	}
	return u
}

func (s *memStore) addTeam(id, name string, managerID *string) *models.Team {
	t := &models.Team{ID: id, Name: name, ManagerID: managerID}
	s.teams[id] = t
	return t
}

func (s *memStore) roleID(value string) string {
	return s.rolesByValue[value].ID
}

func (s *memStore) hasRole(userID, value string) bool {
	return s.userRoles[userID][s.roleID(value)]
}

// UserDirectory / UserLister / AuthUserRepository

func (s *memStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *memStore) SetUserTeam(_ context.Context, userID string, teamID *string) error {
	u, ok := s.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.TeamID = teamID
	return nil
}

func (s *memStore) GetUsersByTeam(_ context.Context, teamID string) ([]*models.User, error) {
	var users []*models.User
	for _, u := range s.users {
		if u.TeamID != nil && *u.TeamID == teamID {
			copied := *u
			users = append(users, &copied)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *memStore) ListUsers(_ context.Context) ([]*models.User, error) {
	var users []*models.User
	for _, u := range s.users {
		copied := *u
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *memStore) CreateUser(_ context.Context, u models.User, passwordHash string) error {
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return storage.ErrUserExists
		}
	}
	s.users[u.ID] = &u
	s.creds[u.Username] = &models.UserCredentials{ID: u.ID, Username: u.Username, PasswordHash: passwordHash}
	return nil
}

func (s *memStore) GetCredentialsByUsername(_ context.Context, username string) (*models.UserCredentials, error) {
	c, ok := s.creds[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *memStore) ExistsUser(_ context.Context, id string) (bool, error) {
	_, ok := s.users[id]
	return ok, nil
}

// TeamDirectory / TeamRepository

func (s *memStore) CreateTeam(_ context.Context, team models.Team) error {
	for _, existing := range s.teams {
		if existing.Name == team.Name {
			return storage.ErrTeamExists
		}
	}
	s.teams[team.ID] = &team
	return nil
}

func (s *memStore) GetTeamByID(_ context.Context, id string) (*models.Team, error) {
	t, ok := s.teams[id]
	if !ok {
		return nil, storage.ErrTeamNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *memStore) GetTeamByName(_ context.Context, name string) (*models.Team, error) {
	for _, t := range s.teams {
		if t.Name == name {
			copied := *t
			return &copied, nil
		}
	}
	return nil, storage.ErrTeamNotFound
}

func (s *memStore) SetManager(_ context.Context, teamID string, managerID *string) error {
	t, ok := s.teams[teamID]
	if !ok {
		return storage.ErrTeamNotFound
	}
	t.ManagerID = managerID
	return nil
}

func (s *memStore) ListTeams(_ context.Context) ([]*models.Team, error) {
	var teams []*models.Team
	for _, t := range s.teams {
		copied := *t
		teams = append(teams, &copied)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

func (s *memStore) ExistsTeam(_ context.Context, id string) (bool, error) {
	_, ok := s.teams[id]
	return ok, nil
}

// RoleDirectory

func (s *memStore) GetRoleByValue(_ context.Context, value string) (*models.Role, error) {
	r, ok := s.rolesByValue[value]
	if !ok {
		return nil, storage.ErrRoleNotFound
	}
	copied := *r
	return &copied, nil
}

func (s *memStore) GrantRole(_ context.Context, userID, roleID string) error {
	if s.userRoles[userID] == nil {
		s.userRoles[userID] = make(map[string]bool)
	}
	s.userRoles[userID][roleID] = true
	return nil
}

func (s *memStore) RevokeRole(_ context.Context, userID, roleID string) error {
	delete(s.userRoles[userID], roleID)
	return nil
}

func (s *memStore) GetUserRoles(_ context.Context, userID string) ([]string, error) {
	var values []string
	for _, role := range s.rolesByValue {
		if s.userRoles[userID][role.ID] {
			values = append(values, role.Value)
		}
	}
	sort.Strings(values)
	return values, nil
}

// RequestRepository

func (s *memStore) CreateRequest(_ context.Context, r models.TeamRequest) error {
	s.requests[r.ID] = &r
	return nil
}

func (s *memStore) getRequestCopy(id string) (*models.TeamRequest, error) {
	r, ok := s.requests[id]
	if !ok {
		return nil, storage.ErrRequestNotFound
	}
	copied := *r
	for _, a := range s.approvements {
		if a.TeamRequestID == r.ID {
			approvement := *a
			copied.Approvement = &approvement
			break
		}
	}
	return &copied, nil
}

func (s *memStore) GetRequestByID(_ context.Context, id string) (*models.TeamRequest, error) {
	return s.getRequestCopy(id)
}

func (s *memStore) GetRequestForUpdate(_ context.Context, id string) (*models.TeamRequest, error) {
	return s.getRequestCopy(id)
}

func (s *memStore) GetAwaitingByUser(_ context.Context, userID string) (*models.TeamRequest, error) {
	for _, r := range s.requests {
		if r.UserID == userID && r.Status == models.StatusAwaiting {
			return s.getRequestCopy(r.ID)
		}
	}
	return nil, storage.ErrRequestNotFound
}

func (s *memStore) SetStatus(_ context.Context, id, status string) error {
	r, ok := s.requests[id]
	if !ok {
		return storage.ErrRequestNotFound
	}
	r.Status = status
	return nil
}

func (s *memStore) SetTeam(_ context.Context, id, teamID string) error {
	r, ok := s.requests[id]
	if !ok {
		return storage.ErrRequestNotFound
	}
	r.TeamID = teamID
	return nil
}

func (s *memStore) DeleteRequest(_ context.Context, id string) error {
	delete(s.requests, id)
	return nil
}

func (s *memStore) ListRequests(_ context.Context) ([]*models.TeamRequest, error) {
	var requests []*models.TeamRequest
	for id := range s.requests {
		r, err := s.getRequestCopy(id)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].ID < requests[j].ID })
	return requests, nil
}

func (s *memStore) ExistsRequest(_ context.Context, id string) (bool, error) {
	_, ok := s.requests[id]
	return ok, nil
}

// ApprovementRepository

func (s *memStore) CreateApprovement(_ context.Context, a models.TeamRequestApprovement) error {
	s.approvements[a.ID] = &a
	return nil
}

func (s *memStore) SetFromTeamApprove(_ context.Context, id string, approve bool) error {
	a, ok := s.approvements[id]
	if !ok {
		return storage.ErrApprovementNotFound
	}
	a.FromTeamApprove = &approve
	return nil
}

func (s *memStore) SetToTeamApprove(_ context.Context, id string, approve bool) error {
	a, ok := s.approvements[id]
	if !ok {
		return storage.ErrApprovementNotFound
	}
	a.ToTeamApprove = &approve
	return nil
}

func (s *memStore) DeleteByRequestID(_ context.Context, requestID string) error {
	for id, a := range s.approvements {
		if a.TeamRequestID == requestID {
			delete(s.approvements, id)
		}
	}
	return nil
}

func (s *memStore) ExistsApprovement(_ context.Context, id string) (bool, error) {
	_, ok := s.approvements[id]
	return ok, nil
}

// KickRepository

func (s *memStore) CreateKick(_ context.Context, k models.TeamKick) error {
	s.kicks[k.ID] = &k
	return nil
}

func (s *memStore) ListKicksByTeam(_ context.Context, teamID string) ([]*models.TeamKick, error) {
	var kicks []*models.TeamKick
	for _, k := range s.kicks {
		if k.TeamID == teamID {
			copied := *k
			kicks = append(kicks, &copied)
		}
	}
	sort.Slice(kicks, func(i, j int) bool { return kicks[i].ID < kicks[j].ID })
	return kicks, nil
}

func (s *memStore) ExistsKick(_ context.Context, id string) (bool, error) {
	_, ok := s.kicks[id]
	return ok, nil
}

func strPtr(s string) *string {
	return &s
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRequestService(s *memStore) *RequestService {
	approval, err := NewApprovalCoordinator(s)
	if err != nil {
		panic(err)
	}
	membership, err := NewMembershipService(s, s, s, testLogger())
	if err != nil {
		panic(err)
	}
	svc, err := NewRequestService(fakeTx{}, s, s, s, s, s, approval, membership, testLogger())
	if err != nil {
		panic(err)
	}
	return svc
}

func newTestTeamService(s *memStore) *TeamService {
	membership, err := NewMembershipService(s, s, s, testLogger())
	if err != nil {
		panic(err)
	}
	requests := newTestRequestService(s)
	svc, err := NewTeamService(fakeTx{}, s, s, s, s, membership, requests, testLogger())
	if err != nil {
		panic(err)
	}
	return svc
}

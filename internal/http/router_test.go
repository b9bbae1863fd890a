package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"team-request-service/internal/models"
)

const testSecret = "test-secret"

type fakeAuthService struct {
	register func(ctx context.Context, username, email, password string) (*models.User, error)
	login    func(ctx context.Context, username, password string) (string, error)
}

func (f *fakeAuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	return f.register(ctx, username, email, password)
}

func (f *fakeAuthService) Login(ctx context.Context, username, password string) (string, error) {
	return f.login(ctx, username, password)
}

type fakeUserService struct {
	getUser   func(ctx context.Context, id string) (*models.User, error)
	listUsers func(ctx context.Context) ([]*models.User, error)
}

func (f *fakeUserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return f.getUser(ctx, id)
}

func (f *fakeUserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return f.listUsers(ctx)
}

type fakeTeamService struct {
	createTeam func(ctx context.Context, name string) (*models.Team, error)
	getTeam    func(ctx context.Context, id string) (*models.Team, error)
	listTeams  func(ctx context.Context) ([]*models.Team, error)
	addUser    func(ctx context.Context, teamID, userID string) (*models.Team, error)
	setManager func(ctx context.Context, teamID, userID string) (*models.Team, error)
	kick       func(ctx context.Context, actorID, userID, reason string) (*models.TeamKick, error)
	listKicks  func(ctx context.Context, teamID string) ([]*models.TeamKick, error)
}

func (f *fakeTeamService) CreateTeam(ctx context.Context, name string) (*models.Team, error) {
	return f.createTeam(ctx, name)
}

func (f *fakeTeamService) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	return f.getTeam(ctx, id)
}

func (f *fakeTeamService) ListTeams(ctx context.Context) ([]*models.Team, error) {
	return f.listTeams(ctx)
}

func (f *fakeTeamService) AddUser(ctx context.Context, teamID, userID string) (*models.Team, error) {
	return f.addUser(ctx, teamID, userID)
}

func (f *fakeTeamService) SetManager(ctx context.Context, teamID, userID string) (*models.Team, error) {
	return f.setManager(ctx, teamID, userID)
}

func (f *fakeTeamService) Kick(ctx context.Context, actorID, userID, reason string) (*models.TeamKick, error) {
	return f.kick(ctx, actorID, userID, reason)
}

func (f *fakeTeamService) ListKicks(ctx context.Context, teamID string) ([]*models.TeamKick, error) {
	return f.listKicks(ctx, teamID)
}

type fakeRequestService struct {
	createJoin        func(ctx context.Context, userID, teamID string) (*models.TeamRequest, error)
	createLeave       func(ctx context.Context, userID string) (*models.TeamRequest, error)
	createManagerPost func(ctx context.Context, userID, teamID string) (*models.TeamRequest, error)
	createMove        func(ctx context.Context, userID, toTeamID string) (*models.TeamRequest, error)
	accept            func(ctx context.Context, actorID, requestID string) (*models.TeamRequest, error)
	decline           func(ctx context.Context, actorID, requestID string) (*models.TeamRequest, error)
	cancelOwn         func(ctx context.Context, userID string) error
	listAll           func(ctx context.Context) ([]*models.TeamRequest, error)
}

func (f *fakeRequestService) CreateJoin(ctx context.Context, userID, teamID string) (*models.TeamRequest, error) {
	return f.createJoin(ctx, userID, teamID)
}

func (f *fakeRequestService) CreateLeave(ctx context.Context, userID string) (*models.TeamRequest, error) {
	return f.createLeave(ctx, userID)
}

func (f *fakeRequestService) CreateManagerPost(ctx context.Context, userID, teamID string) (*models.TeamRequest, error) {
	return f.createManagerPost(ctx, userID, teamID)
}

func (f *fakeRequestService) CreateMove(ctx context.Context, userID, toTeamID string) (*models.TeamRequest, error) {
	return f.createMove(ctx, userID, toTeamID)
}

func (f *fakeRequestService) Accept(ctx context.Context, actorID, requestID string) (*models.TeamRequest, error) {
	return f.accept(ctx, actorID, requestID)
}

func (f *fakeRequestService) Decline(ctx context.Context, actorID, requestID string) (*models.TeamRequest, error) {
	return f.decline(ctx, actorID, requestID)
}

func (f *fakeRequestService) CancelOwn(ctx context.Context, userID string) error {
	return f.cancelOwn(ctx, userID)
}

func (f *fakeRequestService) ListAll(ctx context.Context) ([]*models.TeamRequest, error) {
	return f.listAll(ctx)
}

type testServices struct {
	auth     *fakeAuthService
	users    *fakeUserService
	teams    *fakeTeamService
	requests *fakeRequestService
}

func newTestRouter(t *testing.T) (http.Handler, *testServices) {
	t.Helper()
	services := &testServices{
		auth:     &fakeAuthService{},
		users:    &fakeUserService{},
		teams:    &fakeTeamService{},
		requests: &fakeRequestService{},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler, err := NewRouter(services.auth, services.users, services.teams, services.requests, testSecret, log)
	require.NoError(t, err)
	return handler, services
}

func signTestToken(t *testing.T, userID string, roles ...string) string {
	t.Helper()
	rawRoles := make([]any, 0, len(roles))
	for _, role := range roles {
		rawRoles = append(rawRoles, role)
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": userID,
		"roles":    rawRoles,
		"iat":      now.Unix(),
		"exp":      now.Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, handler http.Handler, method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Ping(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doRequest(t, handler, http.MethodGet, "/ping", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"ok"}`, rec.Body.String())
}

func TestRouter_RequiresToken(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doRequest(t, handler, http.MethodGet, "/users/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RejectsBadToken(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := doRequest(t, handler, http.MethodGet, "/users/me", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RejectsWrongSecret(t *testing.T) {
	handler, _ := newTestRouter(t)

	claims := jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	rec := doRequest(t, handler, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_CurrentUser(t *testing.T) {
	handler, services := newTestRouter(t)
	services.users.getUser = func(ctx context.Context, id string) (*models.User, error) {
		require.Equal(t, "user-1", id)
		return &models.User{ID: id, Username: "alice", Email: "alice@example.com", Roles: []string{models.RolePlayer}}, nil
	}

	token := signTestToken(t, "user-1", models.RolePlayer)
	rec := doRequest(t, handler, http.MethodGet, "/users/me", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "alice", resp.User.Username)
}

func TestRouter_RoleGate(t *testing.T) {
	handler, services := newTestRouter(t)
	services.requests.listAll = func(ctx context.Context) ([]*models.TeamRequest, error) {
		return nil, nil
	}

	playerToken := signTestToken(t, "player", models.RolePlayer)
	rec := doRequest(t, handler, http.MethodGet, "/team-requests/all", playerToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	managerToken := signTestToken(t, "manager", models.RolePlayer, models.RoleManager)
	rec = doRequest(t, handler, http.MethodGet, "/team-requests/all", managerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dirgate/internal/db"
	"dirgate/internal/db/repository"
	"dirgate/internal/domain"
	"dirgate/internal/service"
)

// testEnv runs the full HTTP stack against a throwaway SQLite store, with an
// admin and a regular account already logged in.
type testEnv struct {
	srv   *httptest.Server
	users *repository.UserRepo
	audit *repository.AuditRepo

	admin      *domain.User
	regular    *domain.User
	adminToken string
	userToken  string
}

const testPassword = "Sup3rSecret"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	writeDB, readDB := db.OpenTestSQLite(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	userRepo := repository.NewUserRepo(writeDB, readDB)
	groupRepo := repository.NewGroupRepo(writeDB, readDB)
	computerRepo := repository.NewComputerRepo(writeDB, readDB)
	ouRepo := repository.NewOURepo(writeDB, readDB)
	auditRepo := repository.NewAuditRepo(writeDB, readDB)
	statsRepo := repository.NewStatsRepo(readDB)

	recorder := service.NewRecorder(auditRepo, log)
	// MinCost keeps the bcrypt work factor out of test runtime.
	credentials := service.NewCredentialStore(userRepo, 4)
	lockout := service.NewLockout(userRepo, 5, 15*time.Minute)
	rules := domain.DefaultPasswordRules()

	h := &Handlers{
		Auth:      service.NewAuthService(userRepo, credentials, lockout, rules, recorder, "test-secret", time.Hour),
		Authz:     service.NewAuthorizationService(userRepo, groupRepo),
		Users:     service.NewUserService(userRepo, groupRepo, credentials, rules, recorder),
		Groups:    service.NewGroupService(groupRepo, userRepo, recorder),
		Computers: service.NewComputerService(computerRepo, ouRepo, recorder),
		OUs:       service.NewOUService(ouRepo, computerRepo, recorder),
		Audit:     recorder,
		Stats:     service.NewStatsService(statsRepo),
		Log:       log,
	}

	router := NewRouter(h, userRepo, RouterConfig{
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
		CORSAllowedOrigins: []string{"*"},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	env := &testEnv{srv: srv, users: userRepo, audit: auditRepo}

	env.admin = env.createAccount(t, h, "admin", domain.RoleAdmin)
	env.regular = env.createAccount(t, h, "jdoe", domain.RoleUser)
	env.adminToken = env.login(t, "admin", testPassword)
	env.userToken = env.login(t, "jdoe", testPassword)
	return env
}

func (e *testEnv) createAccount(t *testing.T, h *Handlers, username, role string) *domain.User {
	t.Helper()
	u, err := h.Users.Create(context.Background(), domain.CreateUserRequest{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		Password: testPassword,
	})
	require.NoError(t, err)
	return u
}

// login authenticates through the HTTP endpoint and returns the session token.
func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

// do issues a request against the test server. A nil body sends no payload.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

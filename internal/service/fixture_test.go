package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dirgate/internal/db"
	"dirgate/internal/db/repository"
	"dirgate/internal/domain"
)

// fixture wires the full service stack against a throwaway SQLite store.
type fixture struct {
	users     *repository.UserRepo
	groups    *repository.GroupRepo
	computers *repository.ComputerRepo
	ous       *repository.OURepo
	auditRepo *repository.AuditRepo

	recorder    *Recorder
	credentials *CredentialStore
	lockout     *Lockout
	auth        *AuthService
	authz       *AuthorizationService
	userSvc     *UserService
	groupSvc    *GroupService
	computerSvc *ComputerService
	ouSvc       *OUService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	writeDB, readDB := db.OpenTestSQLite(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		users:     repository.NewUserRepo(writeDB, readDB),
		groups:    repository.NewGroupRepo(writeDB, readDB),
		computers: repository.NewComputerRepo(writeDB, readDB),
		ous:       repository.NewOURepo(writeDB, readDB),
		auditRepo: repository.NewAuditRepo(writeDB, readDB),
	}
	f.recorder = NewRecorder(f.auditRepo, log)
	// MinCost keeps the bcrypt work factor out of test runtime.
	f.credentials = NewCredentialStore(f.users, 4)
	f.lockout = NewLockout(f.users, 5, 15*time.Minute)
	rules := domain.DefaultPasswordRules()
	f.auth = NewAuthService(f.users, f.credentials, f.lockout, rules, f.recorder, "test-secret", time.Hour)
	f.authz = NewAuthorizationService(f.users, f.groups)
	f.userSvc = NewUserService(f.users, f.groups, f.credentials, rules, f.recorder)
	f.groupSvc = NewGroupService(f.groups, f.users, f.recorder)
	f.computerSvc = NewComputerService(f.computers, f.ous, f.recorder)
	f.ouSvc = NewOUService(f.ous, f.computers, f.recorder)
	return f
}

func (f *fixture) createUser(t *testing.T, username, password, role string) *domain.User {
	t.Helper()
	u, err := f.userSvc.Create(context.Background(), domain.CreateUserRequest{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		Password: password,
	})
	require.NoError(t, err)
	return u
}

// auditActions returns every recorded action, oldest first.
func (f *fixture) auditActions(t *testing.T) []string {
	t.Helper()
	records, _, err := f.auditRepo.List(context.Background(), domain.AuditFilter{})
	require.NoError(t, err)
	actions := make([]string, len(records))
	for i, r := range records {
		actions[i] = r.Action
	}
	return actions
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirgate/internal/domain"
)

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createUser(t, "alice", "Sup3rSecret", domain.RoleUser)

	res, err := f.auth.Login(ctx, "alice", "Sup3rSecret", "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.NotNil(t, res.User.LastLogin)
	assert.Equal(t, 0, res.User.FailedAttempts)

	claims, err := f.auth.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, res.User.ID, claims.Subject)

	assert.Contains(t, f.auditActions(t), domain.ActionLogin)
}

func TestLogin_UnknownUserIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createUser(t, "alice", "Sup3rSecret", domain.RoleUser)

	_, errUnknown := f.auth.Login(ctx, "nobody", "whatever", "")
	_, errWrongPw := f.auth.Login(ctx, "alice", "wrong", "")

	var bad *domain.BadCredentialError
	require.ErrorAs(t, errUnknown, &bad)
	require.ErrorAs(t, errWrongPw, &bad)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestLogin_InactiveAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "alice", "Sup3rSecret", domain.RoleUser)

	off := false
	_, err := f.users.Update(ctx, u.ID, domain.UpdateUserRequest{Active: &off})
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, "alice", "Sup3rSecret", "")
	var bad *domain.BadCredentialError
	require.ErrorAs(t, err, &bad)

	assert.Contains(t, f.auditActions(t), domain.ActionLoginInactive)
}

func TestLogin_LockoutAfterThreshold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "alice", "Sup3rSecret", domain.RoleUser)

	var bad *domain.BadCredentialError
	for i := 0; i < 4; i++ {
		_, err := f.auth.Login(ctx, "alice", "wrong", "")
		require.ErrorAs(t, err, &bad, "attempt %d stays a credential failure", i+1)
	}

	got, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.FailedAttempts)
	assert.Nil(t, got.LockedUntil)

	// Fifth failure crosses the threshold and locks the account.
	_, err = f.auth.Login(ctx, "alice", "wrong", "")
	require.ErrorAs(t, err, &bad)

	got, err = f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LockedUntil)

	// Even the correct password is refused while locked.
	_, err = f.auth.Login(ctx, "alice", "Sup3rSecret", "")
	var locked *domain.LockedError
	require.ErrorAs(t, err, &locked)
	assert.True(t, locked.Until.After(time.Now()))

	assert.Contains(t, f.auditActions(t), domain.ActionLoginLocked)
}

func TestLogin_ExpiredLockClearsLazily(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "alice", "Sup3rSecret", domain.RoleUser)

	past := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, f.users.SetLockout(ctx, u.ID, 5, &past))

	res, err := f.auth.Login(ctx, "alice", "Sup3rSecret", "")
	require.NoError(t, err, "expired lock admits the attempt")
	assert.Equal(t, 0, res.User.FailedAttempts)
	assert.Nil(t, res.User.LockedUntil)
}

func TestLogin_SuccessResetsCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "alice", "Sup3rSecret", domain.RoleUser)

	var bad *domain.BadCredentialError
	for i := 0; i < 3; i++ {
		_, err := f.auth.Login(ctx, "alice", "wrong", "")
		require.ErrorAs(t, err, &bad)
	}

	_, err := f.auth.Login(ctx, "alice", "Sup3rSecret", "")
	require.NoError(t, err)

	got, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.FailedAttempts, "a successful login starts the count over")
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "alice", "Sup3rSecret", domain.RoleUser)

	err := f.auth.ChangePassword(ctx, u.ID, "wrong", "N3wSecret!")
	var bad *domain.BadCredentialError
	require.ErrorAs(t, err, &bad)

	err = f.auth.ChangePassword(ctx, u.ID, "Sup3rSecret", "weak")
	var policy *domain.PolicyViolationError
	require.ErrorAs(t, err, &policy)
	assert.Len(t, policy.Violations, 3)

	require.NoError(t, f.auth.ChangePassword(ctx, u.ID, "Sup3rSecret", "N3wSecret!"))

	_, err = f.auth.Login(ctx, "alice", "Sup3rSecret", "")
	require.ErrorAs(t, err, &bad, "old password no longer works")
	_, err = f.auth.Login(ctx, "alice", "N3wSecret!", "")
	require.NoError(t, err)
}

func TestResetPasswordClearsLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "alice", "Sup3rSecret", domain.RoleUser)

	future := time.Now().UTC().Add(15 * time.Minute)
	require.NoError(t, f.users.SetLockout(ctx, u.ID, 5, &future))

	require.NoError(t, f.auth.ResetPassword(ctx, u.ID, "Fresh5tart"))

	res, err := f.auth.Login(ctx, "alice", "Fresh5tart", "")
	require.NoError(t, err, "reset unlocks and sets the new password")
	assert.Equal(t, "alice", res.User.Username)
}

func TestUnlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "alice", "Sup3rSecret", domain.RoleUser)

	future := time.Now().UTC().Add(15 * time.Minute)
	require.NoError(t, f.users.SetLockout(ctx, u.ID, 5, &future))

	require.NoError(t, f.auth.Unlock(ctx, u.ID))

	_, err := f.auth.Login(ctx, "alice", "Sup3rSecret", "")
	require.NoError(t, err)
}

func TestParseToken_Tampered(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "alice", "Sup3rSecret", domain.RoleUser)

	res, err := f.auth.Login(context.Background(), "alice", "Sup3rSecret", "")
	require.NoError(t, err)

	_, err = f.auth.ParseToken(res.Token + "x")
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)
}

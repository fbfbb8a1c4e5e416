package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirgate/internal/db"
	"dirgate/internal/domain"
)

func newUserRepo(t *testing.T) *UserRepo {
	t.Helper()
	writeDB, readDB := db.OpenTestSQLite(t)
	return NewUserRepo(writeDB, readDB)
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.User{
		Username:  "jdoe",
		Email:     "jdoe@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      domain.RoleUser,
		Active:    true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", got.Username)
	assert.Equal(t, "jdoe@example.com", got.Email)
	assert.True(t, got.Active)
	assert.Nil(t, got.LockedUntil)
	assert.Nil(t, got.LastLogin)
	assert.False(t, got.CreatedAt.IsZero())

	byName, err := repo.GetByUsername(ctx, "jdoe")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
}

func TestUserRepo_DuplicateUsername(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.User{Username: "jdoe", Email: "a@example.com", Role: domain.RoleUser, Active: true})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Username: "jdoe", Email: "b@example.com", Role: domain.RoleUser, Active: true})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestUserRepo_GetNotFound(t *testing.T) {
	repo := newUserRepo(t)

	_, err := repo.GetByID(context.Background(), domain.NewID())
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestUserRepo_Update(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	u, err := repo.Create(ctx, &domain.User{Username: "jdoe", Email: "jdoe@example.com", Role: domain.RoleUser, Active: true})
	require.NoError(t, err)

	email := "new@example.com"
	role := domain.RoleAdmin
	updated, err := repo.Update(ctx, u.ID, domain.UpdateUserRequest{Email: &email, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	assert.Equal(t, "jdoe", updated.Username, "username is immutable")
}

func TestUserRepo_Credential(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	u, err := repo.Create(ctx, &domain.User{Username: "jdoe", Email: "jdoe@example.com", Role: domain.RoleUser, Active: true})
	require.NoError(t, err)

	require.NoError(t, repo.SetCredential(ctx, u.ID, "bcrypt-hash"))

	hash, err := repo.GetCredential(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "bcrypt-hash", hash)

	// The hash never surfaces on the entity itself.
	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotContains(t, []string{got.Username, got.Email, got.FirstName, got.LastName}, "bcrypt-hash")
}

func TestUserRepo_Lockout(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	u, err := repo.Create(ctx, &domain.User{Username: "jdoe", Email: "jdoe@example.com", Role: domain.RoleUser, Active: true})
	require.NoError(t, err)

	until := time.Now().UTC().Add(15 * time.Minute).Truncate(time.Second)
	require.NoError(t, repo.SetLockout(ctx, u.ID, 5, &until))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.FailedAttempts)
	require.NotNil(t, got.LockedUntil)
	assert.True(t, got.Locked(time.Now()))

	require.NoError(t, repo.SetLockout(ctx, u.ID, 0, nil))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.FailedAttempts)
	assert.Nil(t, got.LockedUntil)
}

func TestUserRepo_ClearExpiredLocks(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	expired, err := repo.Create(ctx, &domain.User{Username: "expired", Email: "e@example.com", Role: domain.RoleUser, Active: true})
	require.NoError(t, err)
	past := now.Add(-time.Minute)
	require.NoError(t, repo.SetLockout(ctx, expired.ID, 5, &past))

	held, err := repo.Create(ctx, &domain.User{Username: "held", Email: "h@example.com", Role: domain.RoleUser, Active: true})
	require.NoError(t, err)
	future := now.Add(15 * time.Minute)
	require.NoError(t, repo.SetLockout(ctx, held.ID, 5, &future))

	n, err := repo.ClearExpiredLocks(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := repo.GetByID(ctx, expired.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LockedUntil)
	assert.Equal(t, 0, got.FailedAttempts)

	got, err = repo.GetByID(ctx, held.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LockedUntil)
}

func TestUserRepo_ListSearch(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	for _, u := range []domain.User{
		{Username: "alice", Email: "alice@example.com", FirstName: "Alice", Role: domain.RoleUser, Active: true},
		{Username: "bob", Email: "bob@example.com", FirstName: "Bob", Role: domain.RoleUser, Active: true},
		{Username: "carol", Email: "carol@other.org", FirstName: "Carol", Role: domain.RoleAdmin, Active: true},
	} {
		u := u
		_, err := repo.Create(ctx, &u)
		require.NoError(t, err)
	}

	users, total, err := repo.List(ctx, "", domain.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, users, 3)

	users, total, err = repo.List(ctx, "example.com", domain.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)

	// LIKE metacharacters in the search term are literals, not wildcards.
	_, total, err = repo.List(ctx, "%", domain.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestUserRepo_ListPagination(t *testing.T) {
	repo := newUserRepo(t)
	ctx := context.Background()

	for _, name := range []string{"u1", "u2", "u3", "u4", "u5"} {
		_, err := repo.Create(ctx, &domain.User{Username: name, Email: name + "@example.com", Role: domain.RoleUser, Active: true})
		require.NoError(t, err)
	}

	page1, total, err := repo.List(ctx, "", domain.PageRequest{MaxResults: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page1, 2)

	token := domain.NextPageToken(0, 2, total)
	require.NotEmpty(t, token)

	page2, _, err := repo.List(ctx, "", domain.PageRequest{MaxResults: 2, PageToken: token})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.NotEqual(t, page1[0].ID, page2[0].ID)
}

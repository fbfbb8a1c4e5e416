package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirgate/internal/db"
	"dirgate/internal/domain"
)

func newGroupFixture(t *testing.T) (*GroupRepo, *UserRepo) {
	t.Helper()
	writeDB, readDB := db.OpenTestSQLite(t)
	return NewGroupRepo(writeDB, readDB), NewUserRepo(writeDB, readDB)
}

func TestGroupRepo_CreateWithCapabilities(t *testing.T) {
	groups, _ := newGroupFixture(t)
	ctx := context.Background()

	g, err := groups.Create(ctx, &domain.Group{
		Name:         "operators",
		Description:  "machine operators",
		Capabilities: []string{domain.CapManageComputers, domain.CapReadDirectory},
	})
	require.NoError(t, err)

	got, err := groups.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "operators", got.Name)
	assert.Equal(t, []string{domain.CapManageComputers, domain.CapReadDirectory}, got.Capabilities)
}

func TestGroupRepo_DuplicateName(t *testing.T) {
	groups, _ := newGroupFixture(t)
	ctx := context.Background()

	_, err := groups.Create(ctx, &domain.Group{Name: "operators"})
	require.NoError(t, err)

	_, err = groups.Create(ctx, &domain.Group{Name: "operators"})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestGroupRepo_MembershipIdempotent(t *testing.T) {
	groups, users := newGroupFixture(t)
	ctx := context.Background()

	g, err := groups.Create(ctx, &domain.Group{Name: "operators"})
	require.NoError(t, err)
	u, err := users.Create(ctx, &domain.User{Username: "jdoe", Email: "jdoe@example.com", Role: domain.RoleUser, Active: true})
	require.NoError(t, err)

	require.NoError(t, groups.AddMember(ctx, g.ID, u.ID))
	require.NoError(t, groups.AddMember(ctx, g.ID, u.ID), "duplicate add is a no-op")

	n, err := groups.CountMembers(ctx, g.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, groups.RemoveMember(ctx, g.ID, u.ID))
	require.NoError(t, groups.RemoveMember(ctx, g.ID, u.ID), "missing remove is a no-op")

	n, err = groups.CountMembers(ctx, g.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestGroupRepo_MembershipQueries(t *testing.T) {
	groups, users := newGroupFixture(t)
	ctx := context.Background()

	g1, err := groups.Create(ctx, &domain.Group{Name: "alpha"})
	require.NoError(t, err)
	g2, err := groups.Create(ctx, &domain.Group{Name: "beta"})
	require.NoError(t, err)
	u, err := users.Create(ctx, &domain.User{Username: "jdoe", Email: "jdoe@example.com", Role: domain.RoleUser, Active: true})
	require.NoError(t, err)

	require.NoError(t, groups.AddMember(ctx, g1.ID, u.ID))
	require.NoError(t, groups.AddMember(ctx, g2.ID, u.ID))

	memberOf, err := groups.GroupsForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, memberOf, 2)
	assert.Equal(t, "alpha", memberOf[0].Name)
	assert.Equal(t, "beta", memberOf[1].Name)

	members, total, err := groups.ListMembers(ctx, g1.ID, domain.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, members, 1)
	assert.Equal(t, "jdoe", members[0].Username)
}

func TestGroupRepo_CapabilitiesForUser_Union(t *testing.T) {
	groups, users := newGroupFixture(t)
	ctx := context.Background()

	g1, err := groups.Create(ctx, &domain.Group{Name: "alpha", Capabilities: []string{domain.CapManageUsers, domain.CapReadDirectory}})
	require.NoError(t, err)
	g2, err := groups.Create(ctx, &domain.Group{Name: "beta", Capabilities: []string{domain.CapManageUsers, domain.CapViewAudit}})
	require.NoError(t, err)
	u, err := users.Create(ctx, &domain.User{Username: "jdoe", Email: "jdoe@example.com", Role: domain.RoleUser, Active: true})
	require.NoError(t, err)

	require.NoError(t, groups.AddMember(ctx, g1.ID, u.ID))
	require.NoError(t, groups.AddMember(ctx, g2.ID, u.ID))

	caps, err := groups.CapabilitiesForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.CapManageUsers, domain.CapReadDirectory, domain.CapViewAudit}, caps)
}

func TestGroupRepo_GrantRevokeIdempotent(t *testing.T) {
	groups, _ := newGroupFixture(t)
	ctx := context.Background()

	g, err := groups.Create(ctx, &domain.Group{Name: "alpha"})
	require.NoError(t, err)

	require.NoError(t, groups.GrantCapability(ctx, g.ID, domain.CapViewAudit))
	require.NoError(t, groups.GrantCapability(ctx, g.ID, domain.CapViewAudit))

	caps, err := groups.ListCapabilities(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.CapViewAudit}, caps)

	require.NoError(t, groups.RevokeCapability(ctx, g.ID, domain.CapViewAudit))
	require.NoError(t, groups.RevokeCapability(ctx, g.ID, domain.CapViewAudit))

	caps, err = groups.ListCapabilities(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, caps)
}

func TestGroupRepo_DeleteCascadesMembership(t *testing.T) {
	groups, users := newGroupFixture(t)
	ctx := context.Background()

	g, err := groups.Create(ctx, &domain.Group{Name: "alpha", Capabilities: []string{domain.CapViewAudit}})
	require.NoError(t, err)
	u, err := users.Create(ctx, &domain.User{Username: "jdoe", Email: "jdoe@example.com", Role: domain.RoleUser, Active: true})
	require.NoError(t, err)
	require.NoError(t, groups.AddMember(ctx, g.ID, u.ID))

	require.NoError(t, groups.Delete(ctx, g.ID))

	memberOf, err := groups.GroupsForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, memberOf)

	caps, err := groups.CapabilitiesForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, caps)
}

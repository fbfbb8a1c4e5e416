package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirgate/internal/domain"
)

func TestAuthorize_AdminWildcard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.createUser(t, "root", "Sup3rSecret", domain.RoleAdmin)

	for _, c := range domain.KnownCapabilities {
		assert.NoError(t, f.authz.Authorize(ctx, admin.ID, c), "admin must hold %s", c)
	}
}

func TestAuthorize_UserBaseline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "alice", "Sup3rSecret", domain.RoleUser)

	require.NoError(t, f.authz.Authorize(ctx, u.ID, domain.CapReadDirectory))

	err := f.authz.Authorize(ctx, u.ID, domain.CapManageUsers)
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)
}

func TestAuthorize_GroupGrantAndRevokeAreImmediate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "alice", "Sup3rSecret", domain.RoleUser)

	g, err := f.groupSvc.Create(ctx, domain.CreateGroupRequest{Name: "helpdesk"})
	require.NoError(t, err)
	require.NoError(t, f.groupSvc.AddMember(ctx, g.ID, u.ID))

	var denied *domain.AccessDeniedError
	require.ErrorAs(t, f.authz.Authorize(ctx, u.ID, domain.CapManageComputers), &denied)

	require.NoError(t, f.groupSvc.GrantCapability(ctx, g.ID, domain.CapManageComputers))
	require.NoError(t, f.authz.Authorize(ctx, u.ID, domain.CapManageComputers),
		"grant takes effect on the next check")

	require.NoError(t, f.groupSvc.RevokeCapability(ctx, g.ID, domain.CapManageComputers))
	require.ErrorAs(t, f.authz.Authorize(ctx, u.ID, domain.CapManageComputers), &denied,
		"revoke takes effect on the next check")
}

func TestAuthorize_InactiveDeniedEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.createUser(t, "root", "Sup3rSecret", domain.RoleAdmin)

	off := false
	_, err := f.users.Update(ctx, admin.ID, domain.UpdateUserRequest{Active: &off})
	require.NoError(t, err)

	var denied *domain.AccessDeniedError
	require.ErrorAs(t, f.authz.Authorize(ctx, admin.ID, domain.CapReadDirectory), &denied)
}

func TestEffectivePermissions_Union(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "alice", "Sup3rSecret", domain.RoleUser)

	g1, err := f.groupSvc.Create(ctx, domain.CreateGroupRequest{Name: "alpha", Capabilities: []string{domain.CapManageGroups}})
	require.NoError(t, err)
	g2, err := f.groupSvc.Create(ctx, domain.CreateGroupRequest{Name: "beta", Capabilities: []string{domain.CapViewAudit}})
	require.NoError(t, err)
	require.NoError(t, f.groupSvc.AddMember(ctx, g1.ID, u.ID))
	require.NoError(t, f.groupSvc.AddMember(ctx, g2.ID, u.ID))

	set, err := f.authz.EffectivePermissions(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, set.Satisfies(domain.CapReadDirectory), "role baseline")
	assert.True(t, set.Satisfies(domain.CapManageGroups))
	assert.True(t, set.Satisfies(domain.CapViewAudit))
	assert.False(t, set.Satisfies(domain.CapManageUsers))
}

func TestGrantCapability_RejectsWildcardAndUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.groupSvc.Create(ctx, domain.CreateGroupRequest{Name: "alpha"})
	require.NoError(t, err)

	var validation *domain.ValidationError
	require.ErrorAs(t, f.groupSvc.GrantCapability(ctx, g.ID, domain.CapAll), &validation)
	require.ErrorAs(t, f.groupSvc.GrantCapability(ctx, g.ID, "made_up"), &validation)
}

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirgate/internal/db"
	"dirgate/internal/domain"
)

func TestOURepo_CreateAndChildren(t *testing.T) {
	writeDB, readDB := db.OpenTestSQLite(t)
	repo := NewOURepo(writeDB, readDB)
	ctx := context.Background()

	root, err := repo.Create(ctx, &domain.OrganizationalUnit{Name: "Corp"})
	require.NoError(t, err)
	child, err := repo.Create(ctx, &domain.OrganizationalUnit{Name: "Engineering", ParentID: &root.ID})
	require.NoError(t, err)

	children, err := repo.Children(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID)

	n, err := repo.CountChildren(ctx, root.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestOURepo_UpdateReparent(t *testing.T) {
	writeDB, readDB := db.OpenTestSQLite(t)
	repo := NewOURepo(writeDB, readDB)
	ctx := context.Background()

	a, err := repo.Create(ctx, &domain.OrganizationalUnit{Name: "A"})
	require.NoError(t, err)
	b, err := repo.Create(ctx, &domain.OrganizationalUnit{Name: "B"})
	require.NoError(t, err)

	moved, err := repo.Update(ctx, b.ID, domain.UpdateOURequest{ParentID: &a.ID})
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, a.ID, *moved.ParentID)

	top, err := repo.Update(ctx, b.ID, domain.UpdateOURequest{ClearParent: true})
	require.NoError(t, err)
	assert.Nil(t, top.ParentID)
}

func TestOURepo_DeleteCascade(t *testing.T) {
	writeDB, readDB := db.OpenTestSQLite(t)
	ous := NewOURepo(writeDB, readDB)
	computers := NewComputerRepo(writeDB, readDB)
	ctx := context.Background()

	root, err := ous.Create(ctx, &domain.OrganizationalUnit{Name: "Corp"})
	require.NoError(t, err)
	mid, err := ous.Create(ctx, &domain.OrganizationalUnit{Name: "Engineering", ParentID: &root.ID})
	require.NoError(t, err)
	leaf, err := ous.Create(ctx, &domain.OrganizationalUnit{Name: "Platform", ParentID: &mid.ID})
	require.NoError(t, err)
	c, err := computers.Create(ctx, &domain.Computer{Name: "ws-01", OUID: &mid.ID})
	require.NoError(t, err)

	require.NoError(t, ous.DeleteCascade(ctx, mid.ID))

	_, err = ous.GetByID(ctx, mid.ID)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)

	// Children are re-parented to the deleted OU's parent.
	got, err := ous.GetByID(ctx, leaf.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, root.ID, *got.ParentID)

	// Computers are detached to the root scope.
	gotC, err := computers.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, gotC.OUID)
}

func TestOURepo_DeleteCascadeTopLevel(t *testing.T) {
	writeDB, readDB := db.OpenTestSQLite(t)
	ous := NewOURepo(writeDB, readDB)
	ctx := context.Background()

	top, err := ous.Create(ctx, &domain.OrganizationalUnit{Name: "Corp"})
	require.NoError(t, err)
	child, err := ous.Create(ctx, &domain.OrganizationalUnit{Name: "Engineering", ParentID: &top.ID})
	require.NoError(t, err)

	require.NoError(t, ous.DeleteCascade(ctx, top.ID))

	got, err := ous.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID, "children of a top-level OU become top-level")
}

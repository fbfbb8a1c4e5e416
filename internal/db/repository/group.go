package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"dirgate/internal/domain"
)

// GroupRepo implements domain.GroupRepository backed by SQLite.
type GroupRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewGroupRepo creates a new group repository.
func NewGroupRepo(writeDB, readDB *sql.DB) *GroupRepo {
	return &GroupRepo{writeDB: writeDB, readDB: readDB}
}

func scanGroup(row interface{ Scan(...any) error }) (*domain.Group, error) {
	var (
		g         domain.Group
		createdAt string
	)
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepo) Create(ctx context.Context, g *domain.Group) (*domain.Group, error) {
	if g.ID == "" {
		g.ID = domain.NewID()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	tx, err := r.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapDBError("create group", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO groups (id, name, description, created_at)
		VALUES (?, ?, ?, ?)`,
		g.ID, g.Name, g.Description, formatTime(g.CreatedAt))
	if err != nil {
		return nil, mapDBError("create group", err)
	}
	for _, cap := range g.Capabilities {
		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO group_capabilities (group_id, capability)
			VALUES (?, ?)`, g.ID, cap)
		if err != nil {
			return nil, mapDBError("create group", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, mapDBError("create group", err)
	}
	return g, nil
}

func (r *GroupRepo) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	row := r.readDB.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM groups WHERE id = ?`, id)
	g, err := scanGroup(row)
	if err != nil {
		return nil, mapDBError("get group", err)
	}
	if g.Capabilities, err = r.ListCapabilities(ctx, id); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GroupRepo) GetByName(ctx context.Context, name string) (*domain.Group, error) {
	row := r.readDB.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM groups WHERE name = ?`, name)
	g, err := scanGroup(row)
	if err != nil {
		return nil, mapDBError("get group by name", err)
	}
	if g.Capabilities, err = r.ListCapabilities(ctx, g.ID); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GroupRepo) List(ctx context.Context, search string, page domain.PageRequest) ([]domain.Group, int64, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = ` WHERE name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'`
		p := likePattern(search)
		args = append(args, p, p)
	}

	var total int64
	if err := r.readDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapDBError("count groups", err)
	}

	args = append(args, page.Limit(), page.Offset())
	rows, err := r.readDB.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM groups`+where+` ORDER BY name LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, mapDBError("list groups", err)
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, 0, mapDBError("scan group", err)
		}
		groups = append(groups, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapDBError("list groups", err)
	}

	for i := range groups {
		caps, err := r.ListCapabilities(ctx, groups[i].ID)
		if err != nil {
			return nil, 0, err
		}
		groups[i].Capabilities = caps
	}
	return groups, total, nil
}

func (r *GroupRepo) Update(ctx context.Context, id string, req domain.UpdateGroupRequest) (*domain.Group, error) {
	sets := []string{}
	args := []any{}
	if req.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *req.Name)
	}
	if req.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *req.Description)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	res, err := r.writeDB.ExecContext(ctx,
		`UPDATE groups SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, mapDBError("update group", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound("group %s not found", id)
	}
	return r.GetByID(ctx, id)
}

func (r *GroupRepo) Delete(ctx context.Context, id string) error {
	res, err := r.writeDB.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return mapDBError("delete group", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("group %s not found", id)
	}
	return nil
}

// AddMember is idempotent: re-adding an existing member is a no-op.
func (r *GroupRepo) AddMember(ctx context.Context, groupID, userID string) error {
	_, err := r.writeDB.ExecContext(ctx, `
		INSERT OR IGNORE INTO group_members (group_id, user_id)
		VALUES (?, ?)`, groupID, userID)
	if err != nil {
		return mapDBError("add member", err)
	}
	return nil
}

// RemoveMember is idempotent: removing a non-member is a no-op.
func (r *GroupRepo) RemoveMember(ctx context.Context, groupID, userID string) error {
	_, err := r.writeDB.ExecContext(ctx,
		`DELETE FROM group_members WHERE group_id = ? AND user_id = ?`, groupID, userID)
	if err != nil {
		return mapDBError("remove member", err)
	}
	return nil
}

func (r *GroupRepo) ListMembers(ctx context.Context, groupID string, page domain.PageRequest) ([]domain.User, int64, error) {
	total, err := r.CountMembers(ctx, groupID)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.readDB.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		JOIN group_members gm ON gm.user_id = users.id
		WHERE gm.group_id = ?
		ORDER BY username LIMIT ? OFFSET ?`,
		groupID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, mapDBError("list members", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, mapDBError("scan member", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapDBError("list members", err)
	}
	return users, total, nil
}

func (r *GroupRepo) CountMembers(ctx context.Context, groupID string) (int64, error) {
	var n int64
	err := r.readDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM group_members WHERE group_id = ?`, groupID).Scan(&n)
	if err != nil {
		return 0, mapDBError("count members", err)
	}
	return n, nil
}

func (r *GroupRepo) GroupsForUser(ctx context.Context, userID string) ([]domain.Group, error) {
	rows, err := r.readDB.QueryContext(ctx, `
		SELECT g.id, g.name, g.description, g.created_at
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = ?
		ORDER BY g.name`, userID)
	if err != nil {
		return nil, mapDBError("groups for user", err)
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, mapDBError("scan group", err)
		}
		groups = append(groups, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError("groups for user", err)
	}
	return groups, nil
}

// GrantCapability is idempotent: re-granting an existing capability is a no-op.
func (r *GroupRepo) GrantCapability(ctx context.Context, groupID, capability string) error {
	_, err := r.writeDB.ExecContext(ctx, `
		INSERT OR IGNORE INTO group_capabilities (group_id, capability)
		VALUES (?, ?)`, groupID, capability)
	if err != nil {
		return mapDBError("grant capability", err)
	}
	return nil
}

// RevokeCapability is idempotent: revoking an absent capability is a no-op.
func (r *GroupRepo) RevokeCapability(ctx context.Context, groupID, capability string) error {
	_, err := r.writeDB.ExecContext(ctx,
		`DELETE FROM group_capabilities WHERE group_id = ? AND capability = ?`, groupID, capability)
	if err != nil {
		return mapDBError("revoke capability", err)
	}
	return nil
}

func (r *GroupRepo) ListCapabilities(ctx context.Context, groupID string) ([]string, error) {
	rows, err := r.readDB.QueryContext(ctx,
		`SELECT capability FROM group_capabilities WHERE group_id = ? ORDER BY capability`, groupID)
	if err != nil {
		return nil, mapDBError("list capabilities", err)
	}
	defer rows.Close()

	var caps []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, mapDBError("scan capability", err)
		}
		caps = append(caps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError("list capabilities", err)
	}
	return caps, nil
}

// CapabilitiesForUser returns the union of capabilities across every group the
// user belongs to, deduplicated in one query.
func (r *GroupRepo) CapabilitiesForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.readDB.QueryContext(ctx, `
		SELECT DISTINCT gc.capability
		FROM group_capabilities gc
		JOIN group_members gm ON gm.group_id = gc.group_id
		WHERE gm.user_id = ?
		ORDER BY gc.capability`, userID)
	if err != nil {
		return nil, mapDBError("capabilities for user", err)
	}
	defer rows.Close()

	var caps []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, mapDBError("scan capability", err)
		}
		caps = append(caps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError("capabilities for user", err)
	}
	return caps, nil
}

package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"dirgate/internal/domain"
)

// OURepo implements domain.OURepository backed by SQLite.
type OURepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewOURepo creates a new organizational unit repository.
func NewOURepo(writeDB, readDB *sql.DB) *OURepo {
	return &OURepo{writeDB: writeDB, readDB: readDB}
}

func scanOU(row interface{ Scan(...any) error }) (*domain.OrganizationalUnit, error) {
	var (
		ou        domain.OrganizationalUnit
		parentID  sql.NullString
		createdAt string
	)
	if err := row.Scan(&ou.ID, &ou.Name, &ou.Description, &parentID, &createdAt); err != nil {
		return nil, err
	}
	ou.ParentID = stringPtr(parentID)
	var err error
	if ou.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &ou, nil
}

func (r *OURepo) Create(ctx context.Context, ou *domain.OrganizationalUnit) (*domain.OrganizationalUnit, error) {
	if ou.ID == "" {
		ou.ID = domain.NewID()
	}
	if ou.CreatedAt.IsZero() {
		ou.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	_, err := r.writeDB.ExecContext(ctx, `
		INSERT INTO organizational_units (id, name, description, parent_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		ou.ID, ou.Name, ou.Description, nullString(ou.ParentID), formatTime(ou.CreatedAt))
	if err != nil {
		return nil, mapDBError("create ou", err)
	}
	return ou, nil
}

func (r *OURepo) GetByID(ctx context.Context, id string) (*domain.OrganizationalUnit, error) {
	row := r.readDB.QueryRowContext(ctx,
		`SELECT id, name, description, parent_id, created_at FROM organizational_units WHERE id = ?`, id)
	ou, err := scanOU(row)
	if err != nil {
		return nil, mapDBError("get ou", err)
	}
	return ou, nil
}

func (r *OURepo) List(ctx context.Context, page domain.PageRequest) ([]domain.OrganizationalUnit, int64, error) {
	var total int64
	if err := r.readDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM organizational_units`).Scan(&total); err != nil {
		return nil, 0, mapDBError("count ous", err)
	}

	rows, err := r.readDB.QueryContext(ctx,
		`SELECT id, name, description, parent_id, created_at FROM organizational_units ORDER BY name LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, mapDBError("list ous", err)
	}
	defer rows.Close()

	var ous []domain.OrganizationalUnit
	for rows.Next() {
		ou, err := scanOU(rows)
		if err != nil {
			return nil, 0, mapDBError("scan ou", err)
		}
		ous = append(ous, *ou)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapDBError("list ous", err)
	}
	return ous, total, nil
}

func (r *OURepo) Update(ctx context.Context, id string, req domain.UpdateOURequest) (*domain.OrganizationalUnit, error) {
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
	if req.ParentID != nil {
		sets = append(sets, "parent_id = ?")
		args = append(args, *req.ParentID)
	}
	if req.ClearParent {
		sets = append(sets, "parent_id = NULL")
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	res, err := r.writeDB.ExecContext(ctx,
		`UPDATE organizational_units SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, mapDBError("update ou", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound("ou %s not found", id)
	}
	return r.GetByID(ctx, id)
}

func (r *OURepo) Children(ctx context.Context, id string) ([]domain.OrganizationalUnit, error) {
	rows, err := r.readDB.QueryContext(ctx,
		`SELECT id, name, description, parent_id, created_at FROM organizational_units WHERE parent_id = ? ORDER BY name`, id)
	if err != nil {
		return nil, mapDBError("ou children", err)
	}
	defer rows.Close()

	var ous []domain.OrganizationalUnit
	for rows.Next() {
		ou, err := scanOU(rows)
		if err != nil {
			return nil, mapDBError("scan ou", err)
		}
		ous = append(ous, *ou)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError("ou children", err)
	}
	return ous, nil
}

func (r *OURepo) CountChildren(ctx context.Context, id string) (int64, error) {
	var n int64
	err := r.readDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM organizational_units WHERE parent_id = ?`, id).Scan(&n)
	if err != nil {
		return 0, mapDBError("count ou children", err)
	}
	return n, nil
}

func (r *OURepo) Delete(ctx context.Context, id string) error {
	res, err := r.writeDB.ExecContext(ctx, `DELETE FROM organizational_units WHERE id = ?`, id)
	if err != nil {
		return mapDBError("delete ou", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("ou %s not found", id)
	}
	return nil
}

// DeleteCascade re-parents child OUs to the deleted OU's parent, detaches the
// OU's computers, and removes the OU, all in one transaction.
func (r *OURepo) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return mapDBError("cascade delete ou", err)
	}
	defer tx.Rollback()

	var parentID sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT parent_id FROM organizational_units WHERE id = ?`, id).Scan(&parentID)
	if err != nil {
		return mapDBError("cascade delete ou", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE organizational_units SET parent_id = ? WHERE parent_id = ?`, parentID, id)
	if err != nil {
		return mapDBError("cascade delete ou", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE computers SET ou_id = NULL WHERE ou_id = ?`, id)
	if err != nil {
		return mapDBError("cascade delete ou", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM organizational_units WHERE id = ?`, id)
	if err != nil {
		return mapDBError("cascade delete ou", err)
	}

	if err := tx.Commit(); err != nil {
		return mapDBError("cascade delete ou", err)
	}
	return nil
}

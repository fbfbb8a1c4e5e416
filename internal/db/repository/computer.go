package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"dirgate/internal/domain"
)

// ComputerRepo implements domain.ComputerRepository backed by SQLite.
type ComputerRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewComputerRepo creates a new computer repository.
func NewComputerRepo(writeDB, readDB *sql.DB) *ComputerRepo {
	return &ComputerRepo{writeDB: writeDB, readDB: readDB}
}

const computerColumns = `id, name, description, operating_system, ip_address, status, ou_id, last_seen, created_at`

func scanComputer(row interface{ Scan(...any) error }) (*domain.Computer, error) {
	var (
		c         domain.Computer
		ouID      sql.NullString
		lastSeen  sql.NullString
		createdAt string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.OperatingSystem,
		&c.IPAddress, &c.Status, &ouID, &lastSeen, &createdAt)
	if err != nil {
		return nil, err
	}
	c.OUID = stringPtr(ouID)
	if c.LastSeen, err = timePtr(lastSeen); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ComputerRepo) Create(ctx context.Context, c *domain.Computer) (*domain.Computer, error) {
	if c.ID == "" {
		c.ID = domain.NewID()
	}
	if c.Status == "" {
		c.Status = domain.StatusOffline
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	_, err := r.writeDB.ExecContext(ctx, `
		INSERT INTO computers (id, name, description, operating_system, ip_address, status, ou_id, last_seen, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.OperatingSystem, c.IPAddress, c.Status,
		nullString(c.OUID), nullTimeString(c.LastSeen), formatTime(c.CreatedAt))
	if err != nil {
		return nil, mapDBError("create computer", err)
	}
	return c, nil
}

func (r *ComputerRepo) GetByID(ctx context.Context, id string) (*domain.Computer, error) {
	row := r.readDB.QueryRowContext(ctx,
		`SELECT `+computerColumns+` FROM computers WHERE id = ?`, id)
	c, err := scanComputer(row)
	if err != nil {
		return nil, mapDBError("get computer", err)
	}
	return c, nil
}

func (r *ComputerRepo) List(ctx context.Context, search string, page domain.PageRequest) ([]domain.Computer, int64, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = ` WHERE name LIKE ? ESCAPE '\' OR operating_system LIKE ? ESCAPE '\' OR ip_address LIKE ? ESCAPE '\'`
		p := likePattern(search)
		args = append(args, p, p, p)
	}

	var total int64
	if err := r.readDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM computers`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapDBError("count computers", err)
	}

	args = append(args, page.Limit(), page.Offset())
	rows, err := r.readDB.QueryContext(ctx,
		`SELECT `+computerColumns+` FROM computers`+where+` ORDER BY name LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, mapDBError("list computers", err)
	}
	defer rows.Close()

	var computers []domain.Computer
	for rows.Next() {
		c, err := scanComputer(rows)
		if err != nil {
			return nil, 0, mapDBError("scan computer", err)
		}
		computers = append(computers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapDBError("list computers", err)
	}
	return computers, total, nil
}

func (r *ComputerRepo) Update(ctx context.Context, id string, req domain.UpdateComputerRequest) (*domain.Computer, error) {
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
	if req.OperatingSystem != nil {
		sets = append(sets, "operating_system = ?")
		args = append(args, *req.OperatingSystem)
	}
	if req.IPAddress != nil {
		sets = append(sets, "ip_address = ?")
		args = append(args, *req.IPAddress)
	}
	if req.OUID != nil {
		sets = append(sets, "ou_id = ?")
		args = append(args, *req.OUID)
	}
	if req.ClearOU {
		sets = append(sets, "ou_id = NULL")
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	res, err := r.writeDB.ExecContext(ctx,
		`UPDATE computers SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, mapDBError("update computer", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound("computer %s not found", id)
	}
	return r.GetByID(ctx, id)
}

func (r *ComputerRepo) Delete(ctx context.Context, id string) error {
	res, err := r.writeDB.ExecContext(ctx, `DELETE FROM computers WHERE id = ?`, id)
	if err != nil {
		return mapDBError("delete computer", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("computer %s not found", id)
	}
	return nil
}

func (r *ComputerRepo) SetStatus(ctx context.Context, id string, status string, lastSeen *time.Time) error {
	res, err := r.writeDB.ExecContext(ctx,
		`UPDATE computers SET status = ?, last_seen = ? WHERE id = ?`,
		status, nullTimeString(lastSeen), id)
	if err != nil {
		return mapDBError("set computer status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("computer %s not found", id)
	}
	return nil
}

func (r *ComputerRepo) CountByOU(ctx context.Context, ouID string) (int64, error) {
	var n int64
	err := r.readDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM computers WHERE ou_id = ?`, ouID).Scan(&n)
	if err != nil {
		return 0, mapDBError("count computers by ou", err)
	}
	return n, nil
}

func (r *ComputerRepo) MarkStaleOffline(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.writeDB.ExecContext(ctx, `
		UPDATE computers SET status = ?
		WHERE status = ? AND last_seen IS NOT NULL AND last_seen < ?`,
		domain.StatusOffline, domain.StatusOnline, formatTime(cutoff))
	if err != nil {
		return 0, mapDBError("mark stale offline", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapDBError("mark stale offline", err)
	}
	return n, nil
}

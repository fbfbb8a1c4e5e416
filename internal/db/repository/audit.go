package repository

import (
	"context"
	"database/sql"
	"time"

	"dirgate/internal/domain"
)

// AuditRepo implements domain.AuditRepository backed by SQLite. Records are
// append-only: there is no update or delete path.
type AuditRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewAuditRepo creates a new audit repository.
func NewAuditRepo(writeDB, readDB *sql.DB) *AuditRepo {
	return &AuditRepo{writeDB: writeDB, readDB: readDB}
}

const auditColumns = `id, actor_id, actor_name, action, target, details, ip_address, created_at`

func scanAudit(row interface{ Scan(...any) error }) (*domain.AuditRecord, error) {
	var (
		rec       domain.AuditRecord
		actorID   sql.NullString
		createdAt string
	)
	err := row.Scan(&rec.ID, &actorID, &rec.ActorName, &rec.Action,
		&rec.Target, &rec.Details, &rec.IPAddress, &createdAt)
	if err != nil {
		return nil, err
	}
	rec.ActorID = stringPtr(actorID)
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *AuditRepo) Insert(ctx context.Context, rec *domain.AuditRecord) error {
	if rec.ID == "" {
		rec.ID = domain.NewID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	_, err := r.writeDB.ExecContext(ctx, `
		INSERT INTO audit_log (id, actor_id, actor_name, action, target, details, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, nullString(rec.ActorID), rec.ActorName, rec.Action,
		rec.Target, rec.Details, rec.IPAddress, formatTime(rec.CreatedAt))
	if err != nil {
		return mapDBError("insert audit record", err)
	}
	return nil
}

// List returns matching records oldest first. Record IDs are time-ordered, so
// the secondary sort keeps entries written within the same second stable.
func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, int64, error) {
	where := []string{}
	args := []any{}
	if filter.ActorName != nil {
		where = append(where, `actor_name = ?`)
		args = append(args, *filter.ActorName)
	}
	if filter.Action != nil {
		where = append(where, `action = ?`)
		args = append(args, *filter.Action)
	}
	if filter.Since != nil {
		where = append(where, `created_at >= ?`)
		args = append(args, formatTime(*filter.Since))
	}
	if filter.Search != nil && *filter.Search != "" {
		where = append(where, `(action LIKE ? ESCAPE '\' OR target LIKE ? ESCAPE '\' OR details LIKE ? ESCAPE '\')`)
		p := likePattern(*filter.Search)
		args = append(args, p, p, p)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + joinAnd(where)
	}

	var total int64
	if err := r.readDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`+clause, args...).Scan(&total); err != nil {
		return nil, 0, mapDBError("count audit records", err)
	}

	args = append(args, filter.Page.Limit(), filter.Page.Offset())
	rows, err := r.readDB.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audit_log`+clause+` ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, mapDBError("list audit records", err)
	}
	defer rows.Close()

	var records []domain.AuditRecord
	for rows.Next() {
		rec, err := scanAudit(rows)
		if err != nil {
			return nil, 0, mapDBError("scan audit record", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapDBError("list audit records", err)
	}
	return records, total, nil
}

func joinAnd(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += " AND " + p
	}
	return out
}

package repository

import (
	"context"
	"database/sql"

	"dirgate/internal/domain"
)

// recentAuditLimit bounds the dashboard's recent-activity slice.
const recentAuditLimit = 10

// StatsRepo implements domain.StatsRepository backed by SQLite.
type StatsRepo struct {
	readDB *sql.DB
}

// NewStatsRepo creates a new stats repository.
func NewStatsRepo(readDB *sql.DB) *StatsRepo {
	return &StatsRepo{readDB: readDB}
}

// Summary computes the dashboard counters and the most recent audit entries.
func (r *StatsRepo) Summary(ctx context.Context) (*domain.DirectoryStats, error) {
	var stats domain.DirectoryStats

	err := r.readDB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE active = 1),
			(SELECT COUNT(*) FROM groups),
			(SELECT COUNT(*) FROM computers),
			(SELECT COUNT(*) FROM computers WHERE status = ?),
			(SELECT COUNT(*) FROM organizational_units)`,
		domain.StatusOnline).
		Scan(&stats.TotalUsers, &stats.ActiveUsers, &stats.TotalGroups,
			&stats.TotalComputers, &stats.OnlineComputers, &stats.TotalOUs)
	if err != nil {
		return nil, mapDBError("stats summary", err)
	}

	rows, err := r.readDB.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audit_log ORDER BY created_at DESC, id DESC LIMIT ?`,
		recentAuditLimit)
	if err != nil {
		return nil, mapDBError("stats recent audit", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanAudit(rows)
		if err != nil {
			return nil, mapDBError("scan audit record", err)
		}
		stats.RecentAudit = append(stats.RecentAudit, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError("stats recent audit", err)
	}
	return &stats, nil
}

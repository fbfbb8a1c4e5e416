package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"dirgate/internal/domain"
)

// UserRepo implements domain.UserRepository backed by SQLite.
type UserRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewUserRepo creates a new user repository.
func NewUserRepo(writeDB, readDB *sql.DB) *UserRepo {
	return &UserRepo{writeDB: writeDB, readDB: readDB}
}

const userColumns = `id, username, email, first_name, last_name, role, active, failed_attempts, locked_until, last_login, created_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var (
		u           domain.User
		lockedUntil sql.NullString
		lastLogin   sql.NullString
		createdAt   string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.Role, &u.Active, &u.FailedAttempts, &lockedUntil, &lastLogin, &createdAt)
	if err != nil {
		return nil, err
	}
	if u.LockedUntil, err = timePtr(lockedUntil); err != nil {
		return nil, err
	}
	if u.LastLogin, err = timePtr(lastLogin); err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	if u.ID == "" {
		u.ID = domain.NewID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	_, err := r.writeDB.ExecContext(ctx, `
		INSERT INTO users (id, username, email, first_name, last_name, role, active, failed_attempts, locked_until, last_login, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.Role, u.Active,
		u.FailedAttempts, nullTimeString(u.LockedUntil), nullTimeString(u.LastLogin), formatTime(u.CreatedAt))
	if err != nil {
		return nil, mapDBError("create user", err)
	}
	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.readDB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapDBError("get user", err)
	}
	return u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.readDB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapDBError("get user by username", err)
	}
	return u, nil
}

func (r *UserRepo) List(ctx context.Context, search string, page domain.PageRequest) ([]domain.User, int64, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = ` WHERE username LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\' OR first_name LIKE ? ESCAPE '\' OR last_name LIKE ? ESCAPE '\'`
		p := likePattern(search)
		args = append(args, p, p, p, p)
	}

	var total int64
	if err := r.readDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapDBError("count users", err)
	}

	args = append(args, page.Limit(), page.Offset())
	rows, err := r.readDB.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users`+where+` ORDER BY username LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, mapDBError("list users", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, mapDBError("scan user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapDBError("list users", err)
	}
	return users, total, nil
}

func (r *UserRepo) Update(ctx context.Context, id string, req domain.UpdateUserRequest) (*domain.User, error) {
	sets := []string{}
	args := []any{}
	if req.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *req.Email)
	}
	if req.FirstName != nil {
		sets = append(sets, "first_name = ?")
		args = append(args, *req.FirstName)
	}
	if req.LastName != nil {
		sets = append(sets, "last_name = ?")
		args = append(args, *req.LastName)
	}
	if req.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, *req.Role)
	}
	if req.Active != nil {
		sets = append(sets, "active = ?")
		args = append(args, *req.Active)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	res, err := r.writeDB.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, mapDBError("update user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound("user %s not found", id)
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.writeDB.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return mapDBError("delete user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("user %s not found", id)
	}
	return nil
}

func (r *UserRepo) SetCredential(ctx context.Context, id string, hash string) error {
	res, err := r.writeDB.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return mapDBError("set credential", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("user %s not found", id)
	}
	return nil
}

func (r *UserRepo) GetCredential(ctx context.Context, id string) (string, error) {
	var hash string
	err := r.readDB.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE id = ?`, id).Scan(&hash)
	if err != nil {
		return "", mapDBError("get credential", err)
	}
	return hash, nil
}

func (r *UserRepo) SetLockout(ctx context.Context, id string, failedAttempts int, until *time.Time) error {
	res, err := r.writeDB.ExecContext(ctx,
		`UPDATE users SET failed_attempts = ?, locked_until = ? WHERE id = ?`,
		failedAttempts, nullTimeString(until), id)
	if err != nil {
		return mapDBError("set lockout", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("user %s not found", id)
	}
	return nil
}

func (r *UserRepo) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.writeDB.ExecContext(ctx,
		`UPDATE users SET last_login = ? WHERE id = ?`, formatTime(at), id)
	if err != nil {
		return mapDBError("set last login", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("user %s not found", id)
	}
	return nil
}

func (r *UserRepo) ClearExpiredLocks(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.writeDB.ExecContext(ctx,
		`UPDATE users SET failed_attempts = 0, locked_until = NULL
		 WHERE locked_until IS NOT NULL AND locked_until <= ?`, formatTime(now))
	if err != nil {
		return 0, mapDBError("clear expired locks", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapDBError("clear expired locks", err)
	}
	return n, nil
}

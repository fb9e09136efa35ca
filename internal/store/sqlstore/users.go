package sqlstore

import (
	"context"
	"strings"
	"time"

	"number-inventory/internal/apperr"
	"number-inventory/internal/rbac"
	"number-inventory/internal/users"
)

const userColumns = `id, username, email, password_hash, role, is_active, created_at, updated_at, last_login`

func (s *Store) GetUser(ctx context.Context, id string) (users.User, error) {
	var u users.User
	if err := s.db.GetContext(ctx, &u, s.db.Rebind("SELECT "+userColumns+" FROM users WHERE id = ?"), id); err != nil {
		return users.User{}, mapErr(err, "User")
	}
	return utcUser(u), nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (users.User, error) {
	var u users.User
	if err := s.db.GetContext(ctx, &u, s.db.Rebind("SELECT "+userColumns+" FROM users WHERE username = ?"), username); err != nil {
		return users.User{}, mapErr(err, "User")
	}
	return utcUser(u), nil
}

func (s *Store) UserTaken(ctx context.Context, username, email, excludeID string) (bool, error) {
	var match []string
	var args []any
	if username != "" {
		match = append(match, "username = ?")
		args = append(args, username)
	}
	if email != "" {
		match = append(match, "LOWER(email) = ?")
		args = append(args, strings.ToLower(email))
	}
	if len(match) == 0 {
		return false, nil
	}
	q := "SELECT COUNT(*) FROM users WHERE (" + strings.Join(match, " OR ") + ")"
	if excludeID != "" {
		q += " AND id <> ?"
		args = append(args, excludeID)
	}

	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(q), args...); err != nil {
		return false, mapErr(err, "User")
	}
	return n > 0, nil
}

func (s *Store) InsertUser(ctx context.Context, u users.User) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.Username, u.Email, u.PasswordHash, string(u.Role), u.IsActive,
		u.CreatedAt.UTC(), u.UpdatedAt.UTC(), utcPtr(u.LastLogin))
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("User with this username or email already exists")
		}
		return mapErr(err, "User")
	}
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, u users.User) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE users
		SET username = ?, email = ?, role = ?, is_active = ?, updated_at = ?, last_login = ?
		WHERE id = ?`),
		u.Username, u.Email, string(u.Role), u.IsActive, u.UpdatedAt.UTC(), utcPtr(u.LastLogin), u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("Username or email already exists")
		}
		return mapErr(err, "User")
	}
	return requireAffected(res, "User")
}

func (s *Store) ListUsers(ctx context.Context, q users.ListQuery) ([]users.User, int, error) {
	q.Normalize()
	w := where{}
	if q.Role != "" {
		w.add("role = ?", string(q.Role))
	}
	if q.IsActive != nil {
		w.add("is_active = ?", *q.IsActive)
	}
	if q.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		w.add(`(LOWER(username) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var total int
	if err := s.db.GetContext(ctx, &total, s.db.Rebind("SELECT COUNT(*) FROM users"+w.sql()), w.args...); err != nil {
		return nil, 0, mapErr(err, "User")
	}

	out := make([]users.User, 0)
	listQ := s.db.Rebind("SELECT " + userColumns + " FROM users" + w.sql() + " ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?")
	if err := s.db.SelectContext(ctx, &out, listQ, append(w.args, q.Limit, q.Offset())...); err != nil {
		return nil, 0, mapErr(err, "User")
	}
	for i := range out {
		out[i] = utcUser(out[i])
	}
	return out, total, nil
}

func (s *Store) UserStats(ctx context.Context, registeredSince time.Time) (users.Stats, error) {
	var row struct {
		Total    int `db:"total"`
		Active   int `db:"active"`
		Admins   int `db:"admins"`
		Planners int `db:"planners"`
		Recent   int `db:"recent"`
	}
	q := s.db.Rebind(`SELECT
		COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0) AS active,
		COALESCE(SUM(CASE WHEN role = ? THEN 1 ELSE 0 END), 0) AS admins,
		COALESCE(SUM(CASE WHEN role = ? THEN 1 ELSE 0 END), 0) AS planners,
		COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0) AS recent
		FROM users`)
	err := s.db.GetContext(ctx, &row, q, string(rbac.RoleAdmin), string(rbac.RolePlanner), registeredSince.UTC())
	if err != nil {
		return users.Stats{}, mapErr(err, "")
	}
	return users.Stats{
		TotalUsers:          row.Total,
		ActiveUsers:         row.Active,
		InactiveUsers:       row.Total - row.Active,
		AdminUsers:          row.Admins,
		PlannerUsers:        row.Planners,
		RecentRegistrations: row.Recent,
	}, nil
}

func utcUser(u users.User) users.User {
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	if u.LastLogin != nil {
		t := u.LastLogin.UTC()
		u.LastLogin = &t
	}
	return u
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

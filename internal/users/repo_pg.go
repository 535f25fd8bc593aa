package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"hirepath-backend/internal/rbac"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const userColumns = `id, email, username, password_hash, full_name, role, email_verified_at, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, username, password_hash, full_name, role, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		strings.ToLower(user.Email),
		nullableString(user.Username),
		nullableString(user.PasswordHash),
		nullableString(user.FullName),
		string(user.Role),
	)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrDuplicate
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, strings.ToLower(email)))
}

func (r *PGRepo) ExistsByIdentifier(ctx context.Context, identifier string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR username = $1)`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query, strings.ToLower(identifier)).Scan(&exists)
	return exists, err
}

func (r *PGRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID, passwordHash)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) MarkVerified(ctx context.Context, userID string) error {
	const query = `UPDATE users SET email_verified_at = now(), updated_at = now() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) UpdateRole(ctx context.Context, userID, role string) error {
	const query = `UPDATE users SET role = $2, updated_at = now() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID, role)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Upsert stabilizes OAuth identities across repeat sign-ins.
func (r *PGRepo) Upsert(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, username, full_name, role, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  full_name = EXCLUDED.full_name,
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		strings.ToLower(user.Email),
		nullableString(user.Username),
		nullableString(user.FullName),
		string(user.Role),
	)
	return err
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row *sql.Row) (User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func scanUser(row rowScanner) (User, error) {
	var user User
	var username sql.NullString
	var passwordHash sql.NullString
	var fullName sql.NullString
	var role sql.NullString
	var verifiedAt sql.NullTime
	var updatedAt sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.Email,
		&username,
		&passwordHash,
		&fullName,
		&role,
		&verifiedAt,
		&user.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return User{}, err
	}
	user.Username = username.String
	user.PasswordHash = passwordHash.String
	user.FullName = fullName.String
	user.Role = rbac.ParseRole(role.String)
	if verifiedAt.Valid {
		t := verifiedAt.Time
		user.EmailVerifiedAt = &t
	}
	if updatedAt.Valid {
		user.UpdatedAt = updatedAt.Time
	} else {
		user.UpdatedAt = time.Now().UTC()
	}
	return user, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

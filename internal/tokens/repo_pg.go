package tokens

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, token Token) error {
	const query = `
INSERT INTO auth_tokens (id, identifier, token, purpose, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, now())`
	_, err := r.DB.ExecContext(ctx, query,
		token.ID,
		strings.ToLower(token.Identifier),
		token.Token,
		string(token.Purpose),
		token.ExpiresAt,
	)
	return err
}

func (r *PGRepo) GetByValue(ctx context.Context, value string, purpose Purpose) (Token, error) {
	const query = `
SELECT id, identifier, token, purpose, expires_at, created_at
FROM auth_tokens
WHERE token = $1 AND purpose = $2
LIMIT 1`
	var t Token
	var p string
	err := r.DB.QueryRowContext(ctx, query, value, string(purpose)).Scan(
		&t.ID,
		&t.Identifier,
		&t.Token,
		&p,
		&t.ExpiresAt,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Token{}, ErrNotFound
		}
		return Token{}, err
	}
	t.Purpose = Purpose(p)
	return t, nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM auth_tokens WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, id)
	return err
}

func (r *PGRepo) DeleteByIdentifier(ctx context.Context, identifier string, purpose Purpose) error {
	const query = `DELETE FROM auth_tokens WHERE identifier = $1 AND purpose = $2`
	_, err := r.DB.ExecContext(ctx, query, strings.ToLower(identifier), string(purpose))
	return err
}

package payments

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const paymentColumns = `id, user_id, resume_id, service_id, provider, checkout_session_id, status, amount_cents, currency, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, payment Payment) error {
	const query = `
INSERT INTO payments (id, user_id, resume_id, service_id, provider, checkout_session_id, status, amount_cents, currency, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		payment.ID,
		payment.UserID,
		payment.ResumeID,
		payment.ServiceID,
		payment.Provider,
		payment.CheckoutSessionID,
		string(payment.Status),
		payment.AmountCents,
		payment.Currency,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *PGRepo) GetBySessionID(ctx context.Context, sessionID string) (Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments WHERE checkout_session_id = $1 LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, sessionID))
}

func (r *PGRepo) LatestByResume(ctx context.Context, userID, resumeID string) (Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments
WHERE user_id = $1 AND resume_id = $2
ORDER BY created_at DESC LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID, resumeID))
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	const query = `UPDATE payments SET status = $2, updated_at = now() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, string(status))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, payment)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row *sql.Row) (Payment, error) {
	payment, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Payment{}, ErrNotFound
	}
	return payment, err
}

func scanPayment(row rowScanner) (Payment, error) {
	var p Payment
	var status string
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.ResumeID,
		&p.ServiceID,
		&p.Provider,
		&p.CheckoutSessionID,
		&status,
		&p.AmountCents,
		&p.Currency,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return Payment{}, err
	}
	p.Status = Status(status)
	return p, nil
}

package applications

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

const applicationColumns = `id, job_id, user_id, resume_id, source, status, cover_note, score, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, app Application) error {
	const query = `
INSERT INTO applications (id, job_id, user_id, resume_id, source, status, cover_note, score, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		app.ID,
		app.JobID,
		app.UserID,
		nullableString(app.ResumeID),
		app.Source,
		app.Status,
		nullableString(app.CoverNote),
		app.Score,
	)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrDuplicate
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1 LIMIT 1`
	app, err := scanApplication(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	return app, err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications
WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.listQuery(ctx, query, userID, limit, offset)
}

func (r *PGRepo) ListByJob(ctx context.Context, jobID string, limit, offset int) ([]Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications
WHERE job_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.listQuery(ctx, query, jobID, limit, offset)
}

func (r *PGRepo) ExistsForJob(ctx context.Context, userID, jobID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM applications WHERE user_id = $1 AND job_id = $2)`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query, userID, jobID).Scan(&exists)
	return exists, err
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id, status string) (Application, error) {
	const query = `UPDATE applications SET status = $2, updated_at = now() WHERE id = $1
RETURNING ` + applicationColumns
	app, err := scanApplication(r.DB.QueryRowContext(ctx, query, id, status))
	if errors.Is(err, sql.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	return app, err
}

func (r *PGRepo) CreateBulkRun(ctx context.Context, run BulkRun) error {
	const query = `
INSERT INTO bulk_runs (id, user_id, resume_id, document_id, status, considered, applied, error, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		run.ID,
		run.UserID,
		nullableString(run.ResumeID),
		nullableString(run.DocumentID),
		run.Status,
		run.Considered,
		run.Applied,
		nullableString(run.Error),
	)
	return err
}

func (r *PGRepo) GetBulkRun(ctx context.Context, userID, runID string) (BulkRun, error) {
	const query = `
SELECT id, user_id, resume_id, document_id, status, considered, applied, error, created_at, updated_at
FROM bulk_runs WHERE id = $1 AND user_id = $2 LIMIT 1`
	var run BulkRun
	var resumeID, documentID, runErr sql.NullString
	err := r.DB.QueryRowContext(ctx, query, runID, userID).Scan(
		&run.ID,
		&run.UserID,
		&resumeID,
		&documentID,
		&run.Status,
		&run.Considered,
		&run.Applied,
		&runErr,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return BulkRun{}, ErrNotFound
	}
	if err != nil {
		return BulkRun{}, err
	}
	run.ResumeID = resumeID.String
	run.DocumentID = documentID.String
	run.Error = runErr.String
	return run, nil
}

func (r *PGRepo) UpdateBulkRun(ctx context.Context, run BulkRun) error {
	const query = `
UPDATE bulk_runs SET status = $2, considered = $3, applied = $4, error = $5, updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		run.ID,
		run.Status,
		run.Considered,
		run.Applied,
		nullableString(run.Error),
	)
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

func (r *PGRepo) listQuery(ctx context.Context, query string, key string, limit, offset int) ([]Application, error) {
	rows, err := r.DB.QueryContext(ctx, query, key, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (Application, error) {
	var a Application
	var resumeID, coverNote sql.NullString
	err := row.Scan(
		&a.ID,
		&a.JobID,
		&a.UserID,
		&resumeID,
		&a.Source,
		&a.Status,
		&coverNote,
		&a.Score,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return Application{}, err
	}
	a.ResumeID = resumeID.String
	a.CoverNote = coverNote.String
	return a, nil
}

func nullableString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

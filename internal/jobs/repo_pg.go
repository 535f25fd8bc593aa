package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PGRepo implements Repo using Postgres. Requirements and tags are
// stored as JSONB arrays.
type PGRepo struct {
	DB *sql.DB
}

const jobColumns = `id, title, company, location, type, salary_min, salary_max, currency, description, requirements, tags, status, posted_by, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO jobs (id, title, company, location, type, salary_min, salary_max, currency, description, requirements, tags, status, posted_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())`
	requirements, tags, err := marshalLists(job)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		job.ID,
		job.Title,
		job.Company,
		job.Location,
		job.Type,
		job.SalaryMin,
		job.SalaryMax,
		job.Currency,
		job.Description,
		requirements,
		tags,
		job.Status,
		nullableString(job.PostedBy),
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Job, error) {
	const query = `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1 LIMIT 1`
	job, err := scanJob(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return job, err
}

func (r *PGRepo) Update(ctx context.Context, job Job) error {
	const query = `
UPDATE jobs SET title = $2, company = $3, location = $4, type = $5, salary_min = $6, salary_max = $7,
currency = $8, description = $9, requirements = $10, tags = $11, status = $12, updated_at = now()
WHERE id = $1`
	requirements, tags, err := marshalLists(job)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query,
		job.ID,
		job.Title,
		job.Company,
		job.Location,
		job.Type,
		job.SalaryMin,
		job.SalaryMax,
		job.Currency,
		job.Description,
		requirements,
		tags,
		job.Status,
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

// Browse builds the WHERE clause incrementally from the populated
// filter fields.
func (r *PGRepo) Browse(ctx context.Context, filter BrowseFilter) ([]Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE status = 'published'`
	args := []any{}

	next := func() string { return fmt.Sprintf("$%d", len(args)+1) }
	if filter.Query != "" {
		args = append(args, "%"+strings.ToLower(filter.Query)+"%")
		placeholder := next()
		query += ` AND (lower(title) LIKE ` + placeholder + ` OR lower(company) LIKE ` + placeholder + ` OR lower(description) LIKE ` + placeholder + `)`
	}
	if filter.Location != "" {
		args = append(args, strings.ToLower(filter.Location))
		query += ` AND lower(location) = ` + next()
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += ` AND type = ` + next()
	}
	for _, tag := range filter.Tags {
		args = append(args, tag)
		query += ` AND tags ? ` + next()
	}

	query += ` ORDER BY created_at DESC`
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += ` LIMIT ` + fmt.Sprintf("$%d", len(args))
	args = append(args, filter.Offset)
	query += ` OFFSET ` + fmt.Sprintf("$%d", len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *PGRepo) ListPublished(ctx context.Context) ([]Job, error) {
	const query = `SELECT ` + jobColumns + ` FROM jobs WHERE status = 'published' ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJobs(rows *sql.Rows) ([]Job, error) {
	var out []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func scanJob(row rowScanner) (Job, error) {
	var j Job
	var requirements, tags []byte
	var postedBy sql.NullString
	err := row.Scan(
		&j.ID,
		&j.Title,
		&j.Company,
		&j.Location,
		&j.Type,
		&j.SalaryMin,
		&j.SalaryMax,
		&j.Currency,
		&j.Description,
		&requirements,
		&tags,
		&j.Status,
		&postedBy,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		return Job{}, err
	}
	j.PostedBy = postedBy.String
	if len(requirements) > 0 {
		if err := json.Unmarshal(requirements, &j.Requirements); err != nil {
			return Job{}, err
		}
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &j.Tags); err != nil {
			return Job{}, err
		}
	}
	return j, nil
}

func marshalLists(job Job) ([]byte, []byte, error) {
	requirements, err := json.Marshal(emptyIfNil(job.Requirements))
	if err != nil {
		return nil, nil, err
	}
	tags, err := json.Marshal(emptyIfNil(job.Tags))
	if err != nil {
		return nil, nil, err
	}
	return requirements, tags, nil
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func nullableString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

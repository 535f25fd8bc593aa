package jobs

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateMarshalsLists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	job := Job{
		ID:           "job-1",
		Title:        "Backend Engineer",
		Company:      "Acme",
		Location:     "Berlin",
		Type:         "full_time",
		SalaryMin:    60000,
		SalaryMax:    90000,
		Currency:     "EUR",
		Description:  "Build services",
		Requirements: []string{"Go", "Postgres"},
		Tags:         []string{"backend"},
		Status:       StatusDraft,
		PostedBy:     "recruiter-1",
	}

	mock.ExpectExec("INSERT INTO jobs").
		WithArgs(
			job.ID,
			job.Title,
			job.Company,
			job.Location,
			job.Type,
			job.SalaryMin,
			job.SalaryMax,
			job.Currency,
			job.Description,
			[]byte(`["Go","Postgres"]`),
			[]byte(`["backend"]`),
			job.Status,
			job.PostedBy,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func jobRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "title", "company", "location", "type", "salary_min", "salary_max",
		"currency", "description", "requirements", "tags", "status", "posted_by",
		"created_at", "updated_at",
	}).AddRow(
		"job-1", "Backend Engineer", "Acme", "Berlin", "full_time", int64(60000), int64(90000),
		"EUR", "Build services", []byte(`["Go"]`), []byte(`["backend"]`), StatusPublished, "recruiter-1",
		now, now,
	)
}

func TestPGRepoBrowseAppliesFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("FROM jobs WHERE status = 'published' AND .+lower\\(title\\) LIKE .+ AND lower\\(location\\) = .+ AND type = .+ AND tags").
		WithArgs("%go%", "berlin", "full_time", "backend", 50, 0).
		WillReturnRows(jobRows())

	jobs, err := repo.Browse(context.Background(), BrowseFilter{
		Query:    "Go",
		Location: "Berlin",
		Type:     "full_time",
		Tags:     []string{"backend"},
	})
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].Requirements[0] != "Go" || jobs[0].Tags[0] != "backend" {
		t.Fatalf("expected JSONB lists decoded, got %+v", jobs[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("FROM jobs WHERE id =").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

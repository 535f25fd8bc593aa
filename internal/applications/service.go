package applications

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"hirepath-backend/internal/jobs"
	"hirepath-backend/internal/queue"
	"hirepath-backend/internal/resumes"
	"hirepath-backend/internal/shared/metrics"
	"hirepath-backend/internal/shared/telemetry"
)

var (
	// ErrJobNotOpen is returned when applying to an unpublished job.
	ErrJobNotOpen = errors.New("job is not open for applications")
	// ErrInvalidInput flags malformed application data.
	ErrInvalidInput = errors.New("invalid application input")
	// ErrNoResumeText is returned when a bulk run has nothing to match
	// against.
	ErrNoResumeText = errors.New("no resume content to match against")
)

const (
	defaultMaxApplications = 10
	maxMaxApplications     = 25
	defaultMinScore        = 0.15
)

// DocumentText resolves extracted text for an uploaded document.
type DocumentText interface {
	ExtractedText(ctx context.Context, userID, documentID string) (string, error)
}

// Service owns manual applications and AI bulk apply.
type Service struct {
	Repo      Repo
	Jobs      jobs.Repo
	Resumes   resumes.Repo
	Queue     queue.Client
	Documents DocumentText
}

// ManualApply records one application to a published job.
func (s *Service) ManualApply(ctx context.Context, userID, jobID, resumeID, coverNote string) (Application, error) {
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return Application{}, err
	}
	if !job.Published() {
		return Application{}, ErrJobNotOpen
	}
	if resumeID != "" {
		if _, err := s.Resumes.GetByID(ctx, userID, resumeID); err != nil {
			return Application{}, err
		}
	}
	if exists, err := s.Repo.ExistsForJob(ctx, userID, jobID); err != nil {
		return Application{}, err
	} else if exists {
		return Application{}, ErrDuplicate
	}

	app := Application{
		ID:        uuid.NewString(),
		JobID:     jobID,
		UserID:    userID,
		ResumeID:  resumeID,
		Source:    SourceManual,
		Status:    StatusSubmitted,
		CoverNote: strings.TrimSpace(coverNote),
	}
	if err := s.Repo.Create(ctx, app); err != nil {
		return Application{}, err
	}
	metrics.IncApplicationsCreated()
	return app, nil
}

// ListMine returns the caller's applications.
func (s *Service) ListMine(ctx context.Context, userID string, limit, offset int) ([]Application, error) {
	return s.Repo.ListByUser(ctx, userID, clampLimit(limit), clampOffset(offset))
}

// ListForJob returns applications on one posting for review.
func (s *Service) ListForJob(ctx context.Context, jobID string, limit, offset int) ([]Application, error) {
	if _, err := s.Jobs.GetByID(ctx, jobID); err != nil {
		return nil, err
	}
	return s.Repo.ListByJob(ctx, jobID, clampLimit(limit), clampOffset(offset))
}

// Review moves an application through the recruiter workflow.
func (s *Service) Review(ctx context.Context, id, status string) (Application, error) {
	if !ValidStatus(status) {
		return Application{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.Repo.UpdateStatus(ctx, id, status)
}

// BulkInput describes an AI bulk apply request.
type BulkInput struct {
	ResumeID   string         `json:"resumeId"`
	DocumentID string         `json:"documentId"`
	Criteria   queue.Criteria `json:"criteria"`
}

// StartBulk validates the request, records a queued run, and enqueues
// the matching work for cmd/worker.
func (s *Service) StartBulk(ctx context.Context, userID, requestID string, in BulkInput) (BulkRun, error) {
	if in.ResumeID == "" && in.DocumentID == "" {
		return BulkRun{}, fmt.Errorf("%w: resumeId or documentId is required", ErrInvalidInput)
	}
	if in.ResumeID != "" {
		if _, err := s.Resumes.GetByID(ctx, userID, in.ResumeID); err != nil {
			return BulkRun{}, err
		}
	}

	run := BulkRun{
		ID:         uuid.NewString(),
		UserID:     userID,
		ResumeID:   in.ResumeID,
		DocumentID: in.DocumentID,
		Status:     BulkQueued,
	}
	if err := s.Repo.CreateBulkRun(ctx, run); err != nil {
		return BulkRun{}, err
	}

	msg := queue.Message{
		BulkRequestID: run.ID,
		UserID:        userID,
		ResumeID:      in.ResumeID,
		DocumentID:    in.DocumentID,
		Criteria:      in.Criteria,
		RequestID:     requestID,
		EnqueuedAt:    time.Now().UTC().Format(time.RFC3339),
		Version:       1,
	}
	if err := s.Queue.Send(ctx, msg); err != nil {
		run.Status = BulkFailed
		run.Error = "enqueue failed"
		if updateErr := s.Repo.UpdateBulkRun(ctx, run); updateErr != nil {
			telemetry.Error("applications.bulk_run_update_failed", map[string]any{
				"run_id": run.ID,
				"error":  updateErr.Error(),
			})
		}
		return BulkRun{}, err
	}
	return run, nil
}

// GetBulkRun returns one of the caller's runs.
func (s *Service) GetBulkRun(ctx context.Context, userID, runID string) (BulkRun, error) {
	return s.Repo.GetBulkRun(ctx, userID, runID)
}

// ProcessBulk executes one queued run: score published postings against
// the resume text and apply to the best matches.
func (s *Service) ProcessBulk(ctx context.Context, msg queue.Message) error {
	run, err := s.Repo.GetBulkRun(ctx, msg.UserID, msg.BulkRequestID)
	if err != nil {
		return err
	}
	if run.Status == BulkCompleted {
		// Redelivered message for a finished run.
		return nil
	}
	run.Status = BulkRunning
	if err := s.Repo.UpdateBulkRun(ctx, run); err != nil {
		return err
	}

	if err := s.runMatching(ctx, &run, msg); err != nil {
		run.Status = BulkFailed
		run.Error = err.Error()
		if updateErr := s.Repo.UpdateBulkRun(ctx, run); updateErr != nil {
			return updateErr
		}
		return err
	}

	run.Status = BulkCompleted
	run.Error = ""
	return s.Repo.UpdateBulkRun(ctx, run)
}

type scoredJob struct {
	job   jobs.Job
	score float64
}

func (s *Service) runMatching(ctx context.Context, run *BulkRun, msg queue.Message) error {
	text, err := s.resumeText(ctx, msg)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return ErrNoResumeText
	}
	resumeTokens := Tokenize(text)

	published, err := s.Jobs.Browse(ctx, jobs.BrowseFilter{
		Query:    msg.Criteria.Query,
		Location: msg.Criteria.Location,
		Tags:     msg.Criteria.Tags,
		Limit:    500,
	})
	if err != nil {
		return err
	}

	minScore := msg.Criteria.MinScore
	if minScore <= 0 {
		minScore = defaultMinScore
	}
	maxApplications := msg.Criteria.MaxApplications
	if maxApplications <= 0 {
		maxApplications = defaultMaxApplications
	}
	if maxApplications > maxMaxApplications {
		maxApplications = maxMaxApplications
	}

	var candidates []scoredJob
	for _, job := range published {
		if !typeAllowed(job.Type, msg.Criteria.Types) {
			continue
		}
		run.Considered++
		if score := MatchScore(resumeTokens, job); score >= minScore {
			candidates = append(candidates, scoredJob{job: job, score: score})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	for _, candidate := range candidates {
		if run.Applied >= maxApplications {
			break
		}
		app := Application{
			ID:       uuid.NewString(),
			JobID:    candidate.job.ID,
			UserID:   msg.UserID,
			ResumeID: msg.ResumeID,
			Source:   SourceBulk,
			Status:   StatusSubmitted,
			Score:    candidate.score,
		}
		if err := s.Repo.Create(ctx, app); err != nil {
			if errors.Is(err, ErrDuplicate) {
				continue
			}
			return err
		}
		metrics.IncApplicationsCreated()
		run.Applied++
	}
	return nil
}

// resumeText prefers the uploaded document's extracted text and falls
// back to the structured draft content.
func (s *Service) resumeText(ctx context.Context, msg queue.Message) (string, error) {
	if msg.DocumentID != "" && s.Documents != nil {
		text, err := s.Documents.ExtractedText(ctx, msg.UserID, msg.DocumentID)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err != nil {
			telemetry.Error("applications.document_text_failed", map[string]any{
				"document_id": msg.DocumentID,
				"error":       err.Error(),
			})
		}
	}
	if msg.ResumeID == "" {
		return "", nil
	}
	draft, err := s.Resumes.GetByID(ctx, msg.UserID, msg.ResumeID)
	if err != nil {
		return "", err
	}
	return draftText(draft), nil
}

func draftText(draft resumes.Draft) string {
	var b strings.Builder
	b.WriteString(draft.Title)
	b.WriteString("\n")
	b.WriteString(draft.Summary)
	if pd := draft.PersonalDetails; pd != nil {
		b.WriteString("\n" + pd.Headline)
	}
	for _, e := range draft.Employment {
		b.WriteString("\n" + e.JobTitle + " " + e.Employer + " " + e.Description)
	}
	for _, e := range draft.Education {
		b.WriteString("\n" + e.Degree + " " + e.Field + " " + e.School)
	}
	for _, sk := range draft.Skills {
		b.WriteString("\n" + sk.Name)
	}
	for _, l := range draft.Languages {
		b.WriteString("\n" + l.Name)
	}
	return b.String()
}

func typeAllowed(jobType string, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, t := range wanted {
		if strings.EqualFold(t, jobType) {
			return true
		}
	}
	return false
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

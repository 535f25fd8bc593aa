package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrIncomplete is returned when publish is attempted before every
// section of the posting is filled in.
var ErrIncomplete = errors.New("posting incomplete")

const minDescriptionLen = 30

// Service owns posting lifecycle and browse.
type Service struct {
	Repo Repo
}

// DetailsInput is the first section of the posting form.
type DetailsInput struct {
	Title     string `json:"title"`
	Company   string `json:"company"`
	Location  string `json:"location"`
	Type      string `json:"type"`
	SalaryMin int64  `json:"salaryMin"`
	SalaryMax int64  `json:"salaryMax"`
	Currency  string `json:"currency"`
}

func (in DetailsInput) validate() error {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Company) == "" {
		missing = append(missing, "company")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	if in.Type != "" && !validType(in.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidInput, in.Type)
	}
	if in.SalaryMin < 0 || in.SalaryMax < 0 {
		return fmt.Errorf("%w: negative salary", ErrInvalidInput)
	}
	if in.SalaryMin > 0 && in.SalaryMax > 0 && in.SalaryMax < in.SalaryMin {
		return fmt.Errorf("%w: salaryMax below salaryMin", ErrInvalidInput)
	}
	return nil
}

// CreateDraft starts a posting from the details section.
func (s *Service) CreateDraft(ctx context.Context, postedBy string, in DetailsInput) (Job, error) {
	if err := in.validate(); err != nil {
		return Job{}, err
	}
	job := Job{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(in.Title),
		Company:   strings.TrimSpace(in.Company),
		Location:  strings.TrimSpace(in.Location),
		Type:      in.Type,
		SalaryMin: in.SalaryMin,
		SalaryMax: in.SalaryMax,
		Currency:  strings.ToLower(in.Currency),
		Status:    StatusDraft,
		PostedBy:  postedBy,
	}
	if job.Type == "" {
		job.Type = "full_time"
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// UpdateDetails rewrites the details section of an existing posting.
func (s *Service) UpdateDetails(ctx context.Context, jobID string, in DetailsInput) (Job, error) {
	if err := in.validate(); err != nil {
		return Job{}, err
	}
	return s.mutate(ctx, jobID, func(job *Job) error {
		job.Title = strings.TrimSpace(in.Title)
		job.Company = strings.TrimSpace(in.Company)
		job.Location = strings.TrimSpace(in.Location)
		if in.Type != "" {
			job.Type = in.Type
		}
		job.SalaryMin = in.SalaryMin
		job.SalaryMax = in.SalaryMax
		job.Currency = strings.ToLower(in.Currency)
		return nil
	})
}

// UpdateDescription fills the description section.
func (s *Service) UpdateDescription(ctx context.Context, jobID, description string) (Job, error) {
	description = strings.TrimSpace(description)
	if len(description) < minDescriptionLen {
		return Job{}, fmt.Errorf("%w: description must be at least %d characters", ErrInvalidInput, minDescriptionLen)
	}
	return s.mutate(ctx, jobID, func(job *Job) error {
		job.Description = description
		return nil
	})
}

// UpdateRequirements fills the requirements section.
func (s *Service) UpdateRequirements(ctx context.Context, jobID string, requirements, tags []string) (Job, error) {
	cleaned := trimAll(requirements)
	if len(cleaned) == 0 {
		return Job{}, fmt.Errorf("%w: at least one requirement", ErrInvalidInput)
	}
	return s.mutate(ctx, jobID, func(job *Job) error {
		job.Requirements = cleaned
		job.Tags = trimAll(tags)
		return nil
	})
}

// Publish flips a complete draft to published.
func (s *Service) Publish(ctx context.Context, jobID string) (Job, error) {
	return s.mutate(ctx, jobID, func(job *Job) error {
		var missing []string
		if job.Description == "" {
			missing = append(missing, "description")
		}
		if len(job.Requirements) == 0 {
			missing = append(missing, "requirements")
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
		}
		job.Status = StatusPublished
		return nil
	})
}

// Close retires a posting from browse.
func (s *Service) Close(ctx context.Context, jobID string) (Job, error) {
	return s.mutate(ctx, jobID, func(job *Job) error {
		job.Status = StatusClosed
		return nil
	})
}

// Get returns one posting.
func (s *Service) Get(ctx context.Context, jobID string) (Job, error) {
	return s.Repo.GetByID(ctx, jobID)
}

// Browse lists published postings with filters.
func (s *Service) Browse(ctx context.Context, filter BrowseFilter) ([]Job, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.Repo.Browse(ctx, filter)
}

// ImportResult reports per-item outcomes of a feed import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// Import normalizes external feed items and publishes the valid ones.
// A bad item is recorded and skipped, never aborting the batch.
func (s *Service) Import(ctx context.Context, postedBy string, items []map[string]any) (ImportResult, error) {
	var result ImportResult
	for i, raw := range items {
		job, err := Normalize(raw)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", i, err))
			continue
		}
		job.ID = uuid.NewString()
		job.Status = StatusPublished
		job.PostedBy = postedBy
		if err := s.Repo.Create(ctx, job); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", i, err))
			continue
		}
		result.Imported++
	}
	return result, nil
}

func (s *Service) mutate(ctx context.Context, jobID string, fn func(*Job) error) (Job, error) {
	job, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return Job{}, err
	}
	if err := fn(&job); err != nil {
		return Job{}, err
	}
	if err := s.Repo.Update(ctx, job); err != nil {
		return Job{}, err
	}
	return job, nil
}

func trimAll(list []string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

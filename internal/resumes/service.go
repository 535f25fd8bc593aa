package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"hirepath-backend/internal/shared/telemetry"
	"hirepath-backend/internal/wizard"
)

// ErrGenerateNotReady is returned when a generate trigger fires before
// the required upstream fragments exist.
var ErrGenerateNotReady = errors.New("personal details and summary must be saved first")

// ErrGenerationFailed wraps failures from the document generator.
var ErrGenerationFailed = errors.New("document generation failed")

// Generator produces the downloadable artifact for a draft.
type Generator interface {
	Generate(ctx context.Context, userID, resumeID string) (ArtifactInfo, error)
}

// ArtifactInfo describes a generated artifact.
type ArtifactInfo struct {
	URL string `json:"artifactUrl"`
}

// Service contains business logic for resume drafts and the wizard.
type Service struct {
	Repo      Repo
	Wizard    wizard.Store
	Generator Generator
}

// DraftView is a draft plus its wizard progress.
type DraftView struct {
	Draft Draft        `json:"draft"`
	State wizard.State `json:"wizard"`
	Score int          `json:"score"`
}

// CreateDraft starts a new empty draft. Any wizard state left over from
// a prior draft with the same ID is reset.
func (s *Service) CreateDraft(ctx context.Context, userID, title string) (Draft, error) {
	if strings.TrimSpace(userID) == "" {
		return Draft{}, ErrInvalidInput
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled resume"
	}

	draft := Draft{
		ID:               uuid.NewString(),
		UserID:           userID,
		Title:            title,
		Status:           StatusDraft,
		GenerationStatus: GenerationNone,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, draft); err != nil {
		return Draft{}, err
	}
	if err := s.Wizard.Put(ctx, wizard.NewState(userID, draft.ID)); err != nil {
		return Draft{}, err
	}
	return draft, nil
}

// Get returns the draft with wizard state and score.
func (s *Service) Get(ctx context.Context, userID, resumeID string) (DraftView, error) {
	draft, err := s.Repo.GetByID(ctx, userID, resumeID)
	if err != nil {
		return DraftView{}, err
	}
	state, err := wizard.Load(ctx, s.Wizard, userID, resumeID)
	if err != nil {
		return DraftView{}, err
	}
	return DraftView{Draft: draft, State: state, Score: state.ComputeScore()}, nil
}

// List returns the user's drafts, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Draft, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// StepSaveResult reports the outcome of a step save.
type StepSaveResult struct {
	Step     wizard.Step   `json:"step"`
	NextStep wizard.Step   `json:"nextStep"`
	Score    int           `json:"score"`
	Artifact *ArtifactInfo `json:"artifact,omitempty"`
}

// SaveStep validates and persists one wizard fragment, marks the step
// complete, and optionally triggers generation for the two steps that
// expose a generate action.
func (s *Service) SaveStep(ctx context.Context, userID, resumeID string, step wizard.Step, payload json.RawMessage, generate bool) (StepSaveResult, error) {
	if !wizard.ValidStep(step) {
		return StepSaveResult{}, fmt.Errorf("%w: unknown step", ErrInvalidInput)
	}

	draft, err := s.Repo.GetByID(ctx, userID, resumeID)
	if err != nil {
		return StepSaveResult{}, err
	}

	if err := applyFragment(&draft, step, payload); err != nil {
		return StepSaveResult{}, err
	}

	// Persist before flipping completion; a persistence failure leaves
	// the step incomplete.
	if err := s.Repo.Update(ctx, draft); err != nil {
		return StepSaveResult{}, err
	}

	state, err := wizard.Load(ctx, s.Wizard, userID, resumeID)
	if err != nil {
		return StepSaveResult{}, err
	}
	state.SetStepCompleted(step)
	if err := s.Wizard.Put(ctx, state); err != nil {
		return StepSaveResult{}, err
	}

	result := StepSaveResult{
		Step:     step,
		NextStep: wizard.Next(step),
		Score:    state.ComputeScore(),
	}

	if generate {
		if step != wizard.StepProfessionalSummary && step != wizard.StepEducation {
			return StepSaveResult{}, fmt.Errorf("%w: step does not support generate", ErrInvalidInput)
		}
		if !state.IsStepCompleted(wizard.StepPersonalDetails) || !state.IsStepCompleted(wizard.StepProfessionalSummary) {
			return StepSaveResult{}, ErrGenerateNotReady
		}
		artifact, err := s.Generator.Generate(ctx, userID, resumeID)
		if err != nil {
			// Generation failure does not undo the successful save.
			telemetry.Error("resumes.generate_failed", map[string]any{
				"resume_id": resumeID,
				"user_id":   userID,
				"error":     err.Error(),
			})
			return StepSaveResult{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		result.Artifact = &artifact
		// Score changed when the generator flipped the flag.
		if refreshed, err := wizard.Load(ctx, s.Wizard, userID, resumeID); err == nil {
			result.Score = refreshed.ComputeScore()
		}
	}

	return result, nil
}

// ResetWizard clears progress for a draft, returning the score to zero.
func (s *Service) ResetWizard(ctx context.Context, userID, resumeID string) (wizard.State, error) {
	if _, err := s.Repo.GetByID(ctx, userID, resumeID); err != nil {
		return wizard.State{}, err
	}
	state, err := wizard.Load(ctx, s.Wizard, userID, resumeID)
	if err != nil {
		return wizard.State{}, err
	}
	state.ResetAll()
	if err := s.Wizard.Put(ctx, state); err != nil {
		return wizard.State{}, err
	}
	return state, nil
}

// SetSidebar persists the sidebar visibility preference.
func (s *Service) SetSidebar(ctx context.Context, userID, resumeID string, visible bool) error {
	state, err := wizard.Load(ctx, s.Wizard, userID, resumeID)
	if err != nil {
		return err
	}
	state.SidebarVisible = visible
	return s.Wizard.Put(ctx, state)
}

// Delete removes a draft and its wizard state.
func (s *Service) Delete(ctx context.Context, userID, resumeID string) error {
	if err := s.Repo.Delete(ctx, userID, resumeID); err != nil {
		return err
	}
	return s.Wizard.Delete(ctx, userID, resumeID)
}

func applyFragment(draft *Draft, step wizard.Step, payload json.RawMessage) error {
	switch step {
	case wizard.StepPersonalDetails:
		var pd PersonalDetails
		if err := json.Unmarshal(payload, &pd); err != nil {
			return fmt.Errorf("%w: malformed personal details", ErrInvalidInput)
		}
		if err := validatePersonalDetails(pd); err != nil {
			return err
		}
		draft.PersonalDetails = &pd
	case wizard.StepProfessionalSummary:
		var body struct {
			Summary string `json:"summary"`
		}
		if err := json.Unmarshal(payload, &body); err != nil {
			return fmt.Errorf("%w: malformed summary", ErrInvalidInput)
		}
		if err := validateSummary(body.Summary); err != nil {
			return err
		}
		draft.Summary = strings.TrimSpace(body.Summary)
	case wizard.StepEmploymentHistory:
		var entries []EmploymentEntry
		if err := json.Unmarshal(payload, &entries); err != nil {
			return fmt.Errorf("%w: malformed employment entries", ErrInvalidInput)
		}
		if err := validateEmployment(entries); err != nil {
			return err
		}
		draft.Employment = entries
	case wizard.StepEducation:
		var entries []EducationEntry
		if err := json.Unmarshal(payload, &entries); err != nil {
			return fmt.Errorf("%w: malformed education entries", ErrInvalidInput)
		}
		if err := validateEducation(entries); err != nil {
			return err
		}
		draft.Education = entries
	case wizard.StepSkills:
		var entries []SkillEntry
		if err := json.Unmarshal(payload, &entries); err != nil {
			return fmt.Errorf("%w: malformed skill entries", ErrInvalidInput)
		}
		if err := validateSkills(entries); err != nil {
			return err
		}
		draft.Skills = entries
	case wizard.StepLanguages:
		var entries []LanguageEntry
		if err := json.Unmarshal(payload, &entries); err != nil {
			return fmt.Errorf("%w: malformed language entries", ErrInvalidInput)
		}
		if err := validateLanguages(entries); err != nil {
			return err
		}
		draft.Languages = entries
	default:
		return fmt.Errorf("%w: unknown step", ErrInvalidInput)
	}
	return nil
}

package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"hirepath-backend/internal/wizard"
)

type stubGenerator struct {
	calls int
	err   error
	store wizard.Store
}

func (g *stubGenerator) Generate(ctx context.Context, userID, resumeID string) (ArtifactInfo, error) {
	g.calls++
	if g.err != nil {
		return ArtifactInfo{}, g.err
	}
	if g.store != nil {
		state, _ := wizard.Load(ctx, g.store, userID, resumeID)
		state.DocumentGenerated = true
		_ = g.store.Put(ctx, state)
	}
	return ArtifactInfo{URL: "/api/v1/resumes/" + resumeID + "/artifact"}, nil
}

func newTestService(t *testing.T) (*Service, *stubGenerator) {
	t.Helper()
	store := wizard.NewMemoryStore()
	gen := &stubGenerator{store: store}
	return &Service{Repo: NewMemoryRepo(), Wizard: store, Generator: gen}, gen
}

func mustCreate(t *testing.T, svc *Service, userID string) Draft {
	t.Helper()
	draft, err := svc.CreateDraft(context.Background(), userID, "Backend roles")
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	return draft
}

func saveStep(t *testing.T, svc *Service, userID, resumeID string, step wizard.Step, payload string, generate bool) (StepSaveResult, error) {
	t.Helper()
	return svc.SaveStep(context.Background(), userID, resumeID, step, json.RawMessage(payload), generate)
}

const validSummary = `{"summary":"Seasoned backend engineer with a decade of experience building resilient services."}`

const validPersonal = `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}`

func TestSaveStepMarksCompletionAndScore(t *testing.T) {
	svc, _ := newTestService(t)
	draft := mustCreate(t, svc, "u1")

	res, err := saveStep(t, svc, "u1", draft.ID, wizard.StepPersonalDetails, validPersonal, false)
	if err != nil {
		t.Fatalf("SaveStep: %v", err)
	}
	if res.NextStep != wizard.StepProfessionalSummary {
		t.Errorf("next step = %s", res.NextStep)
	}
	if res.Score != 10 {
		t.Errorf("score after one step = %d, want 10", res.Score)
	}

	// Saving the same step again does not change the score.
	res, err = saveStep(t, svc, "u1", draft.ID, wizard.StepPersonalDetails, validPersonal, false)
	if err != nil {
		t.Fatalf("SaveStep repeat: %v", err)
	}
	if res.Score != 10 {
		t.Errorf("score after repeat save = %d, want 10", res.Score)
	}
}

func TestSaveStepValidationFailureLeavesStateUntouched(t *testing.T) {
	svc, _ := newTestService(t)
	draft := mustCreate(t, svc, "u1")

	_, err := saveStep(t, svc, "u1", draft.ID, wizard.StepProfessionalSummary, `{"summary":"too short"}`, false)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	view, err := svc.Get(context.Background(), "u1", draft.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.State.IsStepCompleted(wizard.StepProfessionalSummary) {
		t.Error("step marked complete after failed validation")
	}
	if view.Draft.Summary != "" {
		t.Error("summary persisted despite failed validation")
	}
}

func TestSaveStepGenerateRequiresUpstreamSteps(t *testing.T) {
	svc, gen := newTestService(t)
	draft := mustCreate(t, svc, "u1")

	// Education with a generate trigger before personal details exist.
	education := `[{"school":"MIT","degree":"BSc","startDate":"2015-09","endDate":"2019-06"}]`
	_, err := saveStep(t, svc, "u1", draft.ID, wizard.StepEducation, education, true)
	if !errors.Is(err, ErrGenerateNotReady) {
		t.Fatalf("expected ErrGenerateNotReady, got %v", err)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times before prerequisites met", gen.calls)
	}
}

func TestSaveStepGenerateOnlyOnSupportedSteps(t *testing.T) {
	svc, _ := newTestService(t)
	draft := mustCreate(t, svc, "u1")

	skills := `[{"name":"Go","level":4}]`
	_, err := saveStep(t, svc, "u1", draft.ID, wizard.StepSkills, skills, true)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSaveStepGenerateHappyPath(t *testing.T) {
	svc, gen := newTestService(t)
	draft := mustCreate(t, svc, "u1")

	if _, err := saveStep(t, svc, "u1", draft.ID, wizard.StepPersonalDetails, validPersonal, false); err != nil {
		t.Fatalf("personal details: %v", err)
	}
	res, err := saveStep(t, svc, "u1", draft.ID, wizard.StepProfessionalSummary, validSummary, true)
	if err != nil {
		t.Fatalf("summary with generate: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("generator calls = %d, want 1", gen.calls)
	}
	if res.Artifact == nil || !strings.Contains(res.Artifact.URL, draft.ID) {
		t.Fatalf("artifact = %+v", res.Artifact)
	}
	// Two steps (20) plus the generated bonus (20).
	if res.Score != 40 {
		t.Errorf("score = %d, want 40", res.Score)
	}
}

func TestSaveStepGenerationFailureKeepsSavedContent(t *testing.T) {
	svc, gen := newTestService(t)
	draft := mustCreate(t, svc, "u1")

	if _, err := saveStep(t, svc, "u1", draft.ID, wizard.StepPersonalDetails, validPersonal, false); err != nil {
		t.Fatalf("personal details: %v", err)
	}
	gen.err = errors.New("formatter unavailable")
	_, err := saveStep(t, svc, "u1", draft.ID, wizard.StepProfessionalSummary, validSummary, true)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}

	view, err := svc.Get(context.Background(), "u1", draft.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.Draft.Summary == "" {
		t.Error("summary lost after generation failure")
	}
	if !view.State.IsStepCompleted(wizard.StepProfessionalSummary) {
		t.Error("step completion lost after generation failure")
	}
	if view.State.DocumentGenerated {
		t.Error("generated flag set despite failure")
	}
}

func TestResetWizardClearsProgress(t *testing.T) {
	svc, _ := newTestService(t)
	draft := mustCreate(t, svc, "u1")

	if _, err := saveStep(t, svc, "u1", draft.ID, wizard.StepPersonalDetails, validPersonal, false); err != nil {
		t.Fatalf("personal details: %v", err)
	}
	state, err := svc.ResetWizard(context.Background(), "u1", draft.ID)
	if err != nil {
		t.Fatalf("ResetWizard: %v", err)
	}
	if state.ComputeScore() != 0 {
		t.Errorf("score after reset = %d", state.ComputeScore())
	}
}

func TestDraftOwnershipEnforced(t *testing.T) {
	svc, _ := newTestService(t)
	draft := mustCreate(t, svc, "owner")

	_, err := saveStep(t, svc, "intruder", draft.ID, wizard.StepPersonalDetails, validPersonal, false)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign draft, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "intruder", draft.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get for foreign draft: %v", err)
	}
}

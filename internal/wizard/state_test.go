package wizard

import (
	"context"
	"testing"
)

func TestComputeScoreWeights(t *testing.T) {
	cases := []struct {
		name      string
		steps     []Step
		generated bool
		paid      bool
		want      int
	}{
		{"empty", nil, false, false, 0},
		{"three steps", []Step{StepPersonalDetails, StepProfessionalSummary, StepEmploymentHistory}, false, false, 30},
		{"one step", []Step{StepSkills}, false, false, 10},
		{"all steps only", Steps, false, false, 60},
		{"all steps generated", Steps, true, false, 80},
		{"all steps generated paid", Steps, true, true, 100},
		{"generated only", nil, true, false, 20},
		{"paid only", nil, false, true, 20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := NewState("u", "r")
			for _, step := range tc.steps {
				state.SetStepCompleted(step)
			}
			state.SetDocumentGenerated(tc.generated)
			state.SetPaymentCompleted(tc.paid)
			if got := state.ComputeScore(); got != tc.want {
				t.Errorf("score = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSetStepCompletedIdempotent(t *testing.T) {
	state := NewState("u", "r")
	state.SetStepCompleted(StepEducation)
	state.SetStepCompleted(StepEducation)
	if got := state.CompletedCount(); got != 1 {
		t.Fatalf("completed count = %d, want 1", got)
	}
	if got := state.ComputeScore(); got != 10 {
		t.Fatalf("score = %d, want 10", got)
	}
}

func TestSetStepCompletedIgnoresUnknownStep(t *testing.T) {
	state := NewState("u", "r")
	state.SetStepCompleted(Step("references"))
	if got := state.CompletedCount(); got != 0 {
		t.Fatalf("completed count = %d, want 0", got)
	}
}

func TestResetAll(t *testing.T) {
	state := NewState("u", "r")
	for _, step := range Steps {
		state.SetStepCompleted(step)
	}
	state.SetDocumentGenerated(true)
	state.SetPaymentCompleted(true)
	if got := state.ComputeScore(); got != 100 {
		t.Fatalf("score before reset = %d, want 100", got)
	}

	state.ResetAll()
	if got := state.ComputeScore(); got != 0 {
		t.Fatalf("score after reset = %d, want 0", got)
	}
	if state.DocumentGenerated || state.PaymentCompleted {
		t.Fatal("flags should be cleared by reset")
	}
}

func TestNextStepOrder(t *testing.T) {
	if got := Next(StepPersonalDetails); got != StepProfessionalSummary {
		t.Fatalf("Next(personal) = %s", got)
	}
	if got := Next(StepLanguages); got != StepLanguages {
		t.Fatalf("Next(last) = %s, want last", got)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	state, err := Load(ctx, store, "u", "r")
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	state.SetStepCompleted(StepSkills)
	if err := store.Put(ctx, state); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := Load(ctx, store, "u", "r")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.IsStepCompleted(StepSkills) {
		t.Fatal("expected skills step persisted")
	}

	// Mutating the loaded copy must not leak into the store.
	got.SetStepCompleted(StepEducation)
	again, err := Load(ctx, store, "u", "r")
	if err != nil {
		t.Fatalf("Load again: %v", err)
	}
	if again.IsStepCompleted(StepEducation) {
		t.Fatal("store state mutated through loaded copy")
	}

	if err := store.Delete(ctx, "u", "r"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	fresh, err := Load(ctx, store, "u", "r")
	if err != nil {
		t.Fatalf("Load after delete: %v", err)
	}
	if fresh.CompletedCount() != 0 {
		t.Fatal("expected fresh state after delete")
	}
}

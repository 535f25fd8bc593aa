package wizard

import "math"

// Step is one section of the resume builder. The declaration order is
// the navigation order.
type Step string

const (
	StepPersonalDetails     Step = "personal_details"
	StepProfessionalSummary Step = "professional_summary"
	StepEmploymentHistory   Step = "employment_history"
	StepEducation           Step = "education"
	StepSkills              Step = "skills"
	StepLanguages           Step = "languages"
)

// Steps lists all wizard steps in navigation order.
var Steps = []Step{
	StepPersonalDetails,
	StepProfessionalSummary,
	StepEmploymentHistory,
	StepEducation,
	StepSkills,
	StepLanguages,
}

// ValidStep reports whether s names a known step.
func ValidStep(s Step) bool {
	for _, step := range Steps {
		if step == s {
			return true
		}
	}
	return false
}

// Next returns the step after s, or s itself when s is last or unknown.
func Next(s Step) Step {
	for i, step := range Steps {
		if step == s && i+1 < len(Steps) {
			return Steps[i+1]
		}
	}
	return s
}

// State tracks wizard progress for one resume draft. It is owned by the
// draft's user and persisted through a Store so it survives reloads.
type State struct {
	ResumeID          string        `json:"resumeId"`
	UserID            string        `json:"-"`
	CompletedSteps    map[Step]bool `json:"completedSteps"`
	DocumentGenerated bool          `json:"documentGenerated"`
	PaymentCompleted  bool          `json:"paymentCompleted"`
	SidebarVisible    bool          `json:"sidebarVisible"`
}

// NewState returns an empty state for a draft.
func NewState(userID, resumeID string) State {
	return State{
		ResumeID:       resumeID,
		UserID:         userID,
		CompletedSteps: make(map[Step]bool),
		SidebarVisible: true,
	}
}

// SetStepCompleted marks a step done. Repeat calls are idempotent.
func (s *State) SetStepCompleted(step Step) {
	if !ValidStep(step) {
		return
	}
	if s.CompletedSteps == nil {
		s.CompletedSteps = make(map[Step]bool)
	}
	s.CompletedSteps[step] = true
}

// IsStepCompleted reports whether a step is done.
func (s *State) IsStepCompleted(step Step) bool {
	return s.CompletedSteps[step]
}

// ResetAll clears progress, generation, and payment flags.
func (s *State) ResetAll() {
	s.CompletedSteps = make(map[Step]bool)
	s.DocumentGenerated = false
	s.PaymentCompleted = false
}

// SetDocumentGenerated records document generation.
func (s *State) SetDocumentGenerated(v bool) {
	s.DocumentGenerated = v
}

// SetPaymentCompleted records payment clearance.
func (s *State) SetPaymentCompleted(v bool) {
	s.PaymentCompleted = v
}

// CompletedCount returns the number of completed steps.
func (s *State) CompletedCount() int {
	n := 0
	for _, step := range Steps {
		if s.CompletedSteps[step] {
			n++
		}
	}
	return n
}

// ComputeScore derives the 0..100 progress score: completed steps weigh
// 60 points, generation 20, payment 20. The score is informational only;
// gating is explicit per-step validation.
func (s *State) ComputeScore() int {
	total := len(Steps)
	fraction := 0.0
	if total > 0 {
		fraction = float64(s.CompletedCount()) / float64(total)
	}
	score := math.Round(fraction * 60)
	if s.DocumentGenerated {
		score += 20
	}
	if s.PaymentCompleted {
		score += 20
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(score)
}

package resumes

import "time"

// Draft statuses.
const (
	StatusDraft     = "draft"
	StatusCompleted = "completed"
)

// Generation statuses recorded on the draft.
const (
	GenerationNone      = "none"
	GenerationCompleted = "completed"
)

// PersonalDetails is the first wizard fragment.
type PersonalDetails struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Headline  string `json:"headline"`
}

// EmploymentEntry is one work-history item. EndDate must be empty while
// Current is set.
type EmploymentEntry struct {
	Employer    string `json:"employer"`
	JobTitle    string `json:"jobTitle"`
	StartDate   string `json:"startDate"` // YYYY-MM
	EndDate     string `json:"endDate,omitempty"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// EducationEntry is one education item.
type EducationEntry struct {
	School    string `json:"school"`
	Degree    string `json:"degree"`
	Field     string `json:"field"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate,omitempty"`
	Current   bool   `json:"current"`
}

// SkillEntry is a skill with a category and a 1..5 level.
type SkillEntry struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Level    int    `json:"level"`
}

// Language proficiency values.
var Proficiencies = []string{"basic", "conversational", "fluent", "native"}

// LanguageEntry is a language with proficiency.
type LanguageEntry struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
}

// Draft is the accumulated structured resume content, persisted
// server-side keyed by ID and owning user.
type Draft struct {
	ID              string            `json:"id"`
	UserID          string            `json:"-"`
	Title           string            `json:"title"`
	Status          string            `json:"status"`
	PersonalDetails *PersonalDetails  `json:"personalDetails,omitempty"`
	Summary         string            `json:"summary,omitempty"`
	Employment      []EmploymentEntry `json:"employment,omitempty"`
	Education       []EducationEntry  `json:"education,omitempty"`
	Skills          []SkillEntry      `json:"skills,omitempty"`
	Languages       []LanguageEntry   `json:"languages,omitempty"`

	// StructuredKey points at the cached structured-content object used
	// to skip the format-from-raw path on regeneration.
	StructuredKey    string    `json:"-"`
	ArtifactKey      string    `json:"-"`
	ArtifactURL      string    `json:"artifactUrl,omitempty"`
	GenerationStatus string    `json:"generationStatus"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

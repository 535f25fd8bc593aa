package formatting

import (
	"context"
	"encoding/json"
	"errors"

	"hirepath-backend/internal/resumes"
)

// Formatter turns draft content into a finished .docx artifact. RenderRaw
// and Structure work from the full draft; RenderStructured works from a
// previously produced structured document and is the cheap path.
type Formatter interface {
	RenderRaw(ctx context.Context, draft resumes.Draft) ([]byte, error)
	RenderStructured(ctx context.Context, structured json.RawMessage) ([]byte, error)
	Structure(ctx context.Context, draft resumes.Draft) (json.RawMessage, error)
}

// ErrUnavailable is returned when the formatting backend cannot serve
// the request.
var ErrUnavailable = errors.New("formatting service unavailable")

// StructuredDocument is the canonical intermediate representation cached
// between generations.
type StructuredDocument struct {
	FullName   string                    `json:"fullName"`
	Headline   string                    `json:"headline,omitempty"`
	Contact    string                    `json:"contact,omitempty"`
	Summary    string                    `json:"summary"`
	Employment []resumes.EmploymentEntry `json:"employment,omitempty"`
	Education  []resumes.EducationEntry  `json:"education,omitempty"`
	Skills     []resumes.SkillEntry      `json:"skills,omitempty"`
	Languages  []resumes.LanguageEntry   `json:"languages,omitempty"`
}

// BuildStructured flattens a draft into the canonical representation.
func BuildStructured(draft resumes.Draft) StructuredDocument {
	doc := StructuredDocument{
		Summary:    draft.Summary,
		Employment: draft.Employment,
		Education:  draft.Education,
		Skills:     draft.Skills,
		Languages:  draft.Languages,
	}
	if pd := draft.PersonalDetails; pd != nil {
		doc.FullName = pd.FirstName + " " + pd.LastName
		doc.Headline = pd.Headline
		doc.Contact = joinNonEmpty(pd.Email, pd.Phone, pd.City, pd.Country)
	}
	return doc
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " | "
		}
		out += p
	}
	return out
}

package formatting

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"hirepath-backend/internal/resumes"
)

//go:embed template/resume.docx
var templateDocx []byte

// LocalRenderer renders documents from the bundled template without an
// external formatting service. Intended for development and as a
// degraded-mode fallback.
type LocalRenderer struct{}

// NewLocalRenderer returns a template-backed renderer.
func NewLocalRenderer() *LocalRenderer {
	return &LocalRenderer{}
}

func (r *LocalRenderer) RenderRaw(ctx context.Context, draft resumes.Draft) ([]byte, error) {
	return r.render(ctx, BuildStructured(draft))
}

func (r *LocalRenderer) RenderStructured(ctx context.Context, structured json.RawMessage) ([]byte, error) {
	var doc StructuredDocument
	if err := json.Unmarshal(structured, &doc); err != nil {
		return nil, fmt.Errorf("malformed structured document: %w", err)
	}
	return r.render(ctx, doc)
}

func (r *LocalRenderer) Structure(ctx context.Context, draft resumes.Draft) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return json.Marshal(BuildStructured(draft))
}

func (r *LocalRenderer) render(ctx context.Context, doc StructuredDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tpl, err := docx.ReadDocxFromMemory(bytes.NewReader(templateDocx), int64(len(templateDocx)))
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer tpl.Close()

	editable := tpl.Editable()
	replacements := map[string]string{
		"{{fullName}}":   doc.FullName,
		"{{headline}}":   doc.Headline,
		"{{contact}}":    doc.Contact,
		"{{summary}}":    doc.Summary,
		"{{employment}}": formatEmployment(doc.Employment),
		"{{education}}":  formatEducation(doc.Education),
		"{{skills}}":     formatSkills(doc.Skills),
		"{{languages}}":  formatLanguages(doc.Languages),
	}
	for placeholder, value := range replacements {
		if err := editable.Replace(placeholder, value, -1); err != nil {
			return nil, fmt.Errorf("fill template: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := editable.Write(&buf); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	return buf.Bytes(), nil
}

func formatEmployment(entries []resumes.EmploymentEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		end := e.EndDate
		if e.Current {
			end = "present"
		}
		line := fmt.Sprintf("%s, %s (%s to %s)", e.JobTitle, e.Employer, e.StartDate, end)
		if e.Description != "" {
			line += "\n" + e.Description
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatEducation(entries []resumes.EducationEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		end := e.EndDate
		if e.Current {
			end = "present"
		}
		line := fmt.Sprintf("%s, %s (%s to %s)", e.Degree, e.School, e.StartDate, end)
		if e.Field != "" {
			line = fmt.Sprintf("%s in %s, %s (%s to %s)", e.Degree, e.Field, e.School, e.StartDate, end)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatSkills(entries []resumes.SkillEntry) string {
	parts := make([]string, 0, len(entries))
	for _, s := range entries {
		parts = append(parts, fmt.Sprintf("%s (%d/5)", s.Name, s.Level))
	}
	return strings.Join(parts, ", ")
}

func formatLanguages(entries []resumes.LanguageEntry) string {
	parts := make([]string, 0, len(entries))
	for _, l := range entries {
		parts = append(parts, fmt.Sprintf("%s (%s)", l.Name, l.Proficiency))
	}
	return strings.Join(parts, ", ")
}

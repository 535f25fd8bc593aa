package resumes

import (
	"fmt"
	"strings"
	"time"
)

// FieldIssue is a single field-level validation failure.
type FieldIssue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ValidationError carries field issues back to the form.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+": "+issue.Issue)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type issues []FieldIssue

func (is *issues) add(field, issue string) {
	*is = append(*is, FieldIssue{Field: field, Issue: issue})
}

func (is issues) err() error {
	if len(is) == 0 {
		return nil
	}
	return &ValidationError{Issues: is}
}

const minSummaryLen = 50

func validatePersonalDetails(pd PersonalDetails) error {
	var is issues
	if len(strings.TrimSpace(pd.FirstName)) < 2 {
		is.add("firstName", "at least 2 characters")
	}
	if len(strings.TrimSpace(pd.LastName)) < 2 {
		is.add("lastName", "at least 2 characters")
	}
	if !strings.Contains(pd.Email, "@") {
		is.add("email", "valid email required")
	}
	return is.err()
}

func validateSummary(summary string) error {
	var is issues
	if len(strings.TrimSpace(summary)) < minSummaryLen {
		is.add("summary", fmt.Sprintf("at least %d characters", minSummaryLen))
	}
	return is.err()
}

func validateEmployment(entries []EmploymentEntry) error {
	var is issues
	if len(entries) == 0 {
		is.add("employment", "at least one entry required")
	}
	for i, e := range entries {
		prefix := fmt.Sprintf("employment[%d].", i)
		if strings.TrimSpace(e.Employer) == "" {
			is.add(prefix+"employer", "required")
		}
		if strings.TrimSpace(e.JobTitle) == "" {
			is.add(prefix+"jobTitle", "required")
		}
		validateDateRange(&is, prefix, e.StartDate, e.EndDate, e.Current)
	}
	return is.err()
}

func validateEducation(entries []EducationEntry) error {
	var is issues
	if len(entries) == 0 {
		is.add("education", "at least one entry required")
	}
	for i, e := range entries {
		prefix := fmt.Sprintf("education[%d].", i)
		if strings.TrimSpace(e.School) == "" {
			is.add(prefix+"school", "required")
		}
		if strings.TrimSpace(e.Degree) == "" {
			is.add(prefix+"degree", "required")
		}
		validateDateRange(&is, prefix, e.StartDate, e.EndDate, e.Current)
	}
	return is.err()
}

func validateSkills(entries []SkillEntry) error {
	var is issues
	if len(entries) == 0 {
		is.add("skills", "at least one entry required")
	}
	for i, s := range entries {
		prefix := fmt.Sprintf("skills[%d].", i)
		if strings.TrimSpace(s.Name) == "" {
			is.add(prefix+"name", "required")
		}
		if s.Level < 1 || s.Level > 5 {
			is.add(prefix+"level", "must be between 1 and 5")
		}
	}
	return is.err()
}

func validateLanguages(entries []LanguageEntry) error {
	var is issues
	if len(entries) == 0 {
		is.add("languages", "at least one entry required")
	}
	for i, l := range entries {
		prefix := fmt.Sprintf("languages[%d].", i)
		if strings.TrimSpace(l.Name) == "" {
			is.add(prefix+"name", "required")
		}
		if !validProficiency(l.Proficiency) {
			is.add(prefix+"proficiency", "must be one of "+strings.Join(Proficiencies, ", "))
		}
	}
	return is.err()
}

func validProficiency(p string) bool {
	for _, known := range Proficiencies {
		if p == known {
			return true
		}
	}
	return false
}

// validateDateRange enforces YYYY-MM dates, start <= end, and end absent
// while the entry is marked current.
func validateDateRange(is *issues, prefix, start, end string, current bool) {
	startAt, err := parseMonth(start)
	if err != nil {
		is.add(prefix+"startDate", "must be YYYY-MM")
		return
	}
	if current {
		if end != "" {
			is.add(prefix+"endDate", "must be empty while current")
		}
		return
	}
	if end == "" {
		is.add(prefix+"endDate", "required unless current")
		return
	}
	endAt, err := parseMonth(end)
	if err != nil {
		is.add(prefix+"endDate", "must be YYYY-MM")
		return
	}
	if endAt.Before(startAt) {
		is.add(prefix+"endDate", "must not precede startDate")
	}
}

func parseMonth(raw string) (time.Time, error) {
	return time.Parse("2006-01", strings.TrimSpace(raw))
}

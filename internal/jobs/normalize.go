package jobs

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Normalize maps one untyped external feed item into the strict Job
// shape. Feeds disagree on key names and scalar types, so every lookup
// goes through an alias list here and nowhere else.
func Normalize(raw map[string]any) (Job, error) {
	job := Job{
		Title:        firstString(raw, "jobTitle", "job_title", "title", "position"),
		Company:      firstString(raw, "company", "companyName", "company_name", "employer"),
		Location:     firstString(raw, "location", "city", "jobLocation", "job_location"),
		Description:  firstString(raw, "description", "jobDescription", "job_description", "summary"),
		Requirements: stringList(raw, "requirements", "qualifications", "must_have"),
		Tags:         stringList(raw, "tags", "keywords", "categories"),
		Currency:     strings.ToLower(firstString(raw, "currency", "salaryCurrency", "salary_currency")),
		Status:       StatusDraft,
	}

	job.Type = normalizeType(firstString(raw, "type", "jobType", "job_type", "employmentType", "employment_type"))
	job.SalaryMin = firstNumber(raw, "salaryMin", "salary_min", "minSalary", "min_salary")
	job.SalaryMax = firstNumber(raw, "salaryMax", "salary_max", "maxSalary", "max_salary")

	var missing []string
	if job.Title == "" {
		missing = append(missing, "title")
	}
	if job.Company == "" {
		missing = append(missing, "company")
	}
	if len(missing) > 0 {
		return Job{}, fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	if job.SalaryMin > 0 && job.SalaryMax > 0 && job.SalaryMax < job.SalaryMin {
		job.SalaryMin, job.SalaryMax = job.SalaryMax, job.SalaryMin
	}
	return job, nil
}

func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		val, ok := raw[key]
		if !ok {
			continue
		}
		switch v := val.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func firstNumber(raw map[string]any, keys ...string) int64 {
	for _, key := range keys {
		val, ok := raw[key]
		if !ok {
			continue
		}
		switch v := val.(type) {
		case float64:
			return int64(math.Round(v))
		case int:
			return int64(v)
		case int64:
			return v
		case string:
			cleaned := strings.Map(func(r rune) rune {
				if r >= '0' && r <= '9' {
					return r
				}
				return -1
			}, v)
			if cleaned == "" {
				continue
			}
			if parsed, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
				return parsed
			}
		}
	}
	return 0
}

func stringList(raw map[string]any, keys ...string) []string {
	for _, key := range keys {
		val, ok := raw[key]
		if !ok {
			continue
		}
		switch v := val.(type) {
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
				}
			}
			if len(out) > 0 {
				return out
			}
		case []string:
			if len(v) > 0 {
				return v
			}
		case string:
			parts := strings.Split(v, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if trimmed := strings.TrimSpace(p); trimmed != "" {
					out = append(out, trimmed)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

// normalizeType collapses feed spellings onto the closed type list.
func normalizeType(raw string) string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.NewReplacer("-", "_", " ", "_").Replace(cleaned)
	switch cleaned {
	case "fulltime", "full_time", "permanent":
		return "full_time"
	case "parttime", "part_time":
		return "part_time"
	case "contract", "contractor", "freelance":
		return "contract"
	case "internship", "intern":
		return "internship"
	case "temporary", "temp":
		return "temporary"
	}
	if validType(cleaned) {
		return cleaned
	}
	return "full_time"
}

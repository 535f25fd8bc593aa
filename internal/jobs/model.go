package jobs

import "time"

// Posting statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusClosed    = "closed"
)

// Employment types accepted on a posting.
var Types = []string{"full_time", "part_time", "contract", "internship", "temporary"}

// Job is a posting in its strict internal shape. External feed payloads
// only enter through Normalize.
type Job struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Type         string    `json:"type"`
	SalaryMin    int64     `json:"salaryMin,omitempty"`
	SalaryMax    int64     `json:"salaryMax,omitempty"`
	Currency     string    `json:"currency,omitempty"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	Tags         []string  `json:"tags"`
	Status       string    `json:"status"`
	PostedBy     string    `json:"postedBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Published reports whether the posting is visible to candidates.
func (j Job) Published() bool {
	return j.Status == StatusPublished
}

func validType(t string) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

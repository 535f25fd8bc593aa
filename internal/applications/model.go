package applications

import "time"

// Application sources.
const (
	SourceManual = "manual"
	SourceBulk   = "bulk"
)

// Application statuses as moved by recruiters.
const (
	StatusSubmitted = "submitted"
	StatusReviewed  = "reviewed"
	StatusRejected  = "rejected"
	StatusAccepted  = "accepted"
)

// Application is one candidate application to one job.
type Application struct {
	ID        string    `json:"id"`
	JobID     string    `json:"jobId"`
	UserID    string    `json:"userId"`
	ResumeID  string    `json:"resumeId,omitempty"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	CoverNote string    `json:"coverNote,omitempty"`
	Score     float64   `json:"score,omitempty"` // match score from bulk apply, zero for manual
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var validStatuses = map[string]bool{
	StatusSubmitted: true,
	StatusReviewed:  true,
	StatusRejected:  true,
	StatusAccepted:  true,
}

// ValidStatus reports whether s is a known application status.
func ValidStatus(s string) bool {
	return validStatuses[s]
}

// BulkRun records the outcome of one AI bulk apply request.
type BulkRun struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ResumeID   string    `json:"resumeId,omitempty"`
	DocumentID string    `json:"documentId,omitempty"`
	Status     string    `json:"status"`
	Considered int       `json:"considered"`
	Applied    int       `json:"applied"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Bulk run statuses.
const (
	BulkQueued    = "queued"
	BulkRunning   = "running"
	BulkCompleted = "completed"
	BulkFailed    = "failed"
)

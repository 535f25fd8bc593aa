package documents

import "time"

// Document is an uploaded resume file owned by a candidate. ExtractedTextKey
// points at the derived plain-text object once extraction has run.
type Document struct {
	ID               string
	UserID           string
	FileName         string
	MimeType         string
	SizeBytes        int64
	StorageKey       string
	ExtractedTextKey string
	ExtractedAt      *time.Time
	CreatedAt        time.Time
}

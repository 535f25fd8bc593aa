package queue

import (
	"reflect"
	"testing"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{
		BulkRequestID: "bulk-123",
		UserID:        "user-456",
		ResumeID:      "resume-789",
		DocumentID:    "doc-012",
		Criteria: Criteria{
			Query:           "golang",
			Location:        "Berlin",
			Tags:            []string{"backend"},
			MaxApplications: 10,
			MinScore:        0.2,
		},
		RequestID:  "request-345",
		EnqueuedAt: "2026-08-30T22:00:00Z",
		Version:    1,
	}

	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	got, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}

	if !reflect.DeepEqual(got, msg) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, msg)
	}
}

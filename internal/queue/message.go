package queue

import "encoding/json"

// Criteria narrows which published jobs a bulk apply run considers.
type Criteria struct {
	Query           string   `json:"query,omitempty"`
	Location        string   `json:"location,omitempty"`
	Types           []string `json:"types,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	MaxApplications int      `json:"maxApplications,omitempty"`
	MinScore        float64  `json:"minScore,omitempty"`
}

// Message is the bulk apply payload sent to queue consumers.
type Message struct {
	BulkRequestID string   `json:"bulkRequestId"`
	UserID        string   `json:"userId"`
	ResumeID      string   `json:"resumeId,omitempty"`
	DocumentID    string   `json:"documentId,omitempty"`
	Criteria      Criteria `json:"criteria"`
	RequestID     string   `json:"requestId"`
	EnqueuedAt    string   `json:"enqueuedAt"`
	Version       int      `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

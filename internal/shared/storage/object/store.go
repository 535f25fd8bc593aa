package object

import (
	"context"
	"io"
)

// ObjectStore saves and retrieves binary objects such as uploaded resumes
// and generated artifacts. Save derives the storage key from the owner and
// file name; implementations that support caller-chosen keys additionally
// expose SaveWithKey, which callers discover by type assertion.
type ObjectStore interface {
	Save(ctx context.Context, userId string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

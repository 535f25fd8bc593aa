package documents

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"hirepath-backend/internal/extract"
	"hirepath-backend/internal/shared/storage/object"
	"hirepath-backend/internal/shared/telemetry"
)

// Service contains business logic for uploaded resume documents.
type Service struct {
	Store object.ObjectStore
	Repo  DocumentsRepo
}

func allowedExtension(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf", ".docx":
		return true
	default:
		return false
	}
}

// Upload saves the file to object storage, records the document, and runs
// text extraction. Extraction failures are logged and do not fail the upload.
func (s *Service) Upload(ctx context.Context, userID, fileName string, r io.Reader) (Document, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Document{}, fmt.Errorf("%w: file name required", ErrInvalidInput)
	}
	if !allowedExtension(fileName) {
		return Document{}, fmt.Errorf("%w: only pdf and docx files are supported", ErrInvalidInput)
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, fileName, r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:         uuid.NewString(),
		UserID:     userID,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  size,
		StorageKey: storageKey,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	if _, err := extract.ExtractText(ctx, s.Store, storageKey, mimeType, fileName); err != nil {
		telemetry.Error("documents.extract_failed", map[string]any{
			"document_id": doc.ID,
			"error":       err.Error(),
		})
		return doc, nil
	}
	extractedKey := storageKey + ".extracted.txt"
	now := time.Now().UTC()
	if err := s.Repo.UpdateExtraction(ctx, userID, doc.ID, extractedKey, now); err != nil {
		telemetry.Error("documents.extraction_persist_failed", map[string]any{
			"document_id": doc.ID,
			"error":       err.Error(),
		})
		return doc, nil
	}
	doc.ExtractedTextKey = extractedKey
	doc.ExtractedAt = &now
	return doc, nil
}

// Current returns the most recently uploaded document for a user.
func (s *Service) Current(ctx context.Context, userID string) (Document, error) {
	if userID == "" {
		return Document{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	return s.Repo.GetCurrentByUser(ctx, userID)
}

// Get returns a document owned by the user.
func (s *Service) Get(ctx context.Context, userID, documentID string) (Document, error) {
	if userID == "" || documentID == "" {
		return Document{}, fmt.Errorf("%w: user id and document id required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID, documentID)
}

// List returns documents for a user, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// ExtractedText returns the plain text of a document, reading the cached
// derived object when present and extracting on demand otherwise.
func (s *Service) ExtractedText(ctx context.Context, userID, documentID string) (string, error) {
	doc, err := s.Repo.GetByID(ctx, userID, documentID)
	if err != nil {
		return "", err
	}

	if doc.ExtractedTextKey != "" {
		body, err := s.Store.Open(ctx, doc.ExtractedTextKey)
		if err == nil {
			defer body.Close()
			raw, readErr := io.ReadAll(body)
			if readErr == nil {
				return string(raw), nil
			}
			err = readErr
		}
		telemetry.Error("documents.extracted_text_read_failed", map[string]any{
			"document_id": doc.ID,
			"error":       err.Error(),
		})
	}

	text, err := extract.ExtractText(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName)
	if err != nil {
		return "", err
	}
	if err := s.Repo.UpdateExtraction(ctx, userID, doc.ID, doc.StorageKey+".extracted.txt", time.Now().UTC()); err != nil {
		telemetry.Error("documents.extraction_persist_failed", map[string]any{
			"document_id": doc.ID,
			"error":       err.Error(),
		})
	}
	return text, nil
}

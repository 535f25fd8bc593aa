package documents_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"hirepath-backend/internal/documents"
	"hirepath-backend/internal/formatting"
	"hirepath-backend/internal/resumes"
	localstore "hirepath-backend/internal/shared/storage/object/local"
)

func docxPayload(t *testing.T) []byte {
	t.Helper()
	draft := resumes.Draft{
		Title:   "Backend Engineer",
		Summary: "Seasoned Go engineer focused on distributed systems.",
		PersonalDetails: &resumes.PersonalDetails{
			FirstName: "Grace",
			LastName:  "Hopper",
			Email:     "grace@example.com",
		},
	}
	data, err := formatting.NewLocalRenderer().RenderRaw(context.Background(), draft)
	if err != nil {
		t.Fatalf("render docx: %v", err)
	}
	return data
}

func newTestService(t *testing.T) *documents.Service {
	t.Helper()
	return &documents.Service{
		Store: localstore.New(t.TempDir()),
		Repo:  documents.NewMemoryRepo(),
	}
}

func TestUploadExtractsText(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "u1", "resume.docx", bytes.NewReader(docxPayload(t)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.ID == "" || doc.StorageKey == "" {
		t.Fatalf("expected stored document, got %+v", doc)
	}
	if doc.ExtractedTextKey == "" {
		t.Fatalf("expected extraction to run on upload")
	}

	text, err := svc.ExtractedText(ctx, "u1", doc.ID)
	if err != nil {
		t.Fatalf("extracted text: %v", err)
	}
	if !strings.Contains(text, "Grace Hopper") {
		t.Fatalf("expected extracted text to contain the candidate name, got %q", text)
	}
	if !strings.Contains(text, "distributed systems") {
		t.Fatalf("expected extracted text to contain the summary, got %q", text)
	}
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Upload(context.Background(), "u1", "resume.txt", strings.NewReader("plain text"))
	if err == nil {
		t.Fatalf("expected unsupported extension to be rejected")
	}
}

func TestCurrentReturnsLatestUpload(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	payload := docxPayload(t)

	if _, err := svc.Upload(ctx, "u1", "first.docx", bytes.NewReader(payload)); err != nil {
		t.Fatalf("upload first: %v", err)
	}
	second, err := svc.Upload(ctx, "u1", "second.docx", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("upload second: %v", err)
	}

	current, err := svc.Current(ctx, "u1")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.ID != second.ID {
		t.Fatalf("expected latest upload %s, got %s", second.ID, current.ID)
	}

	docs, err := svc.List(ctx, "u1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
}

func TestExtractedTextRequiresOwnership(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "u1", "resume.docx", bytes.NewReader(docxPayload(t)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if _, err := svc.ExtractedText(ctx, "intruder", doc.ID); err == nil {
		t.Fatalf("expected foreign user lookup to fail")
	}
}

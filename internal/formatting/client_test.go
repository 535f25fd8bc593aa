package formatting

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hirepath-backend/internal/resumes"
)

func testDraft() resumes.Draft {
	return resumes.Draft{
		ID: "r1",
		PersonalDetails: &resumes.PersonalDetails{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Headline:  "Backend Engineer",
		},
		Summary: "Seasoned backend engineer with a decade of experience building resilient services.",
		Skills:  []resumes.SkillEntry{{Name: "Go", Level: 5}},
	}
}

func TestClientRenderPaths(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		w.Write([]byte("PK-docx-bytes"))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	body, err := client.RenderRaw(context.Background(), testDraft())
	if err != nil {
		t.Fatalf("RenderRaw: %v", err)
	}
	if gotPath != "/format/raw" {
		t.Errorf("RenderRaw path = %s", gotPath)
	}
	if len(body) == 0 {
		t.Error("RenderRaw returned empty body")
	}

	if _, err := client.RenderStructured(context.Background(), json.RawMessage(`{"fullName":"Ada Lovelace"}`)); err != nil {
		t.Fatalf("RenderStructured: %v", err)
	}
	if gotPath != "/format/json" {
		t.Errorf("RenderStructured path = %s", gotPath)
	}
}

func TestClientStructureValidatesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/structure" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL)
	if _, err := client.Structure(context.Background(), testDraft()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for non-JSON body, got %v", err)
	}
}

func TestClientErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "renderer down"}})
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL)
	_, err := client.RenderRaw(context.Background(), testDraft())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "renderer down") {
		t.Errorf("error missing upstream message: %v", err)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("empty base URL accepted")
	}
}

func TestBuildStructured(t *testing.T) {
	doc := BuildStructured(testDraft())
	if doc.FullName != "Ada Lovelace" {
		t.Errorf("fullName = %q", doc.FullName)
	}
	if !strings.Contains(doc.Contact, "ada@example.com") {
		t.Errorf("contact = %q", doc.Contact)
	}
	if doc.Summary == "" {
		t.Error("summary dropped")
	}
}

package formatting

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/nguyenthenguyen/docx"
)

func documentXML(t *testing.T, data []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("rendered output is not a zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				t.Fatalf("open document.xml: %v", err)
			}
			defer rc.Close()
			raw, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read document.xml: %v", err)
			}
			return string(raw)
		}
	}
	t.Fatal("document.xml missing from rendered output")
	return ""
}

func TestLocalRendererFillsTemplate(t *testing.T) {
	renderer := NewLocalRenderer()
	data, err := renderer.RenderRaw(context.Background(), testDraft())
	if err != nil {
		t.Fatalf("RenderRaw: %v", err)
	}

	xml := documentXML(t, data)
	if !strings.Contains(xml, "Ada Lovelace") {
		t.Error("full name missing from rendered document")
	}
	if !strings.Contains(xml, "Go (5/5)") {
		t.Error("skills missing from rendered document")
	}
	if strings.Contains(xml, "{{") {
		t.Error("unfilled placeholders remain")
	}
}

func TestLocalRendererStructuredRoundTrip(t *testing.T) {
	renderer := NewLocalRenderer()
	structured, err := renderer.Structure(context.Background(), testDraft())
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	data, err := renderer.RenderStructured(context.Background(), structured)
	if err != nil {
		t.Fatalf("RenderStructured: %v", err)
	}
	if !strings.Contains(documentXML(t, data), "Backend Engineer") {
		t.Error("headline missing from structured render")
	}
}

func TestLocalRendererOutputReopens(t *testing.T) {
	renderer := NewLocalRenderer()
	data, err := renderer.RenderRaw(context.Background(), testDraft())
	if err != nil {
		t.Fatalf("RenderRaw: %v", err)
	}

	// The output must remain a complete docx package, relationships
	// included, so downstream editors can load it.
	reopened, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("reopen rendered document: %v", err)
	}
	reopened.Close()
}

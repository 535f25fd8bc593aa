package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"hirepath-backend/internal/formatting"
	"hirepath-backend/internal/resumes"
	"hirepath-backend/internal/shared/metrics"
	"hirepath-backend/internal/shared/storage/object"
	"hirepath-backend/internal/shared/telemetry"
	"hirepath-backend/internal/wizard"
)

const docxMime = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Service produces downloadable resume documents. Rendering goes
// through the formatting collaborator; on the first generation the
// structured intermediate is cached in object storage so later
// regenerations skip the expensive from-raw path.
type Service struct {
	Resumes   resumes.Repo
	Wizard    wizard.Store
	Formatter formatting.Formatter
	Store     object.ObjectStore
}

type keySaver interface {
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
}

// Generate renders the draft into a .docx artifact, records it on the
// draft, and flips the wizard's generated flag. A rendering or storage
// failure aborts before any state is mutated.
func (s *Service) Generate(ctx context.Context, userID, resumeID string) (resumes.ArtifactInfo, error) {
	draft, err := s.Resumes.GetByID(ctx, userID, resumeID)
	if err != nil {
		return resumes.ArtifactInfo{}, err
	}
	if draft.PersonalDetails == nil || strings.TrimSpace(draft.Summary) == "" {
		return resumes.ArtifactInfo{}, resumes.ErrGenerateNotReady
	}

	document, err := s.render(ctx, draft)
	if err != nil {
		return resumes.ArtifactInfo{}, err
	}

	artifactKey := artifactKeyFor(userID, resumeID)
	if err := s.saveObject(ctx, artifactKey, docxMime, document); err != nil {
		return resumes.ArtifactInfo{}, fmt.Errorf("store artifact: %w", err)
	}

	artifactURL := "/api/v1/resumes/" + resumeID + "/artifact"
	if err := s.Resumes.SetArtifact(ctx, userID, resumeID, artifactKey, artifactURL, resumes.GenerationCompleted); err != nil {
		return resumes.ArtifactInfo{}, err
	}

	state, err := wizard.Load(ctx, s.Wizard, userID, resumeID)
	if err != nil {
		return resumes.ArtifactInfo{}, err
	}
	state.DocumentGenerated = true
	if err := s.Wizard.Put(ctx, state); err != nil {
		return resumes.ArtifactInfo{}, err
	}

	metrics.IncDocumentsGenerated()
	return resumes.ArtifactInfo{URL: artifactURL}, nil
}

// render picks the cached structured path when available, otherwise
// renders from raw and produces the structured cache in parallel.
func (s *Service) render(ctx context.Context, draft resumes.Draft) ([]byte, error) {
	if draft.StructuredKey != "" {
		structured, err := s.readObject(ctx, draft.StructuredKey)
		if err == nil {
			return s.Formatter.RenderStructured(ctx, structured)
		}
		telemetry.Error("generator.structured_cache_read_failed", map[string]any{
			"resume_id": draft.ID,
			"key":       draft.StructuredKey,
			"error":     err.Error(),
		})
	}

	type renderOut struct {
		data []byte
		err  error
	}
	type structureOut struct {
		data []byte
		err  error
	}
	renderCh := make(chan renderOut, 1)
	structureCh := make(chan structureOut, 1)

	go func() {
		data, err := s.Formatter.RenderRaw(ctx, draft)
		renderCh <- renderOut{data: data, err: err}
	}()
	go func() {
		data, err := s.Formatter.Structure(ctx, draft)
		structureCh <- structureOut{data: data, err: err}
	}()

	rendered := <-renderCh
	structured := <-structureCh
	if rendered.err != nil {
		return nil, rendered.err
	}

	// The cache is an optimization; failing to build or store it does
	// not fail the generation.
	switch {
	case structured.err != nil:
		telemetry.Error("generator.structure_failed", map[string]any{
			"resume_id": draft.ID,
			"error":     structured.err.Error(),
		})
	default:
		key := structuredKeyFor(draft.UserID, draft.ID)
		if err := s.saveObject(ctx, key, "application/json", structured.data); err != nil {
			telemetry.Error("generator.structured_cache_write_failed", map[string]any{
				"resume_id": draft.ID,
				"error":     err.Error(),
			})
		} else if err := s.Resumes.SetStructuredKey(ctx, draft.UserID, draft.ID, key); err != nil {
			telemetry.Error("generator.structured_key_persist_failed", map[string]any{
				"resume_id": draft.ID,
				"error":     err.Error(),
			})
		}
	}

	return rendered.data, nil
}

// OpenArtifact streams a previously generated document.
func (s *Service) OpenArtifact(ctx context.Context, userID, resumeID string) (io.ReadCloser, error) {
	draft, err := s.Resumes.GetByID(ctx, userID, resumeID)
	if err != nil {
		return nil, err
	}
	if draft.ArtifactKey == "" {
		return nil, resumes.ErrNotFound
	}
	return s.Store.Open(ctx, draft.ArtifactKey)
}

func (s *Service) saveObject(ctx context.Context, key, contentType string, data []byte) error {
	saver, ok := s.Store.(keySaver)
	if !ok {
		return errors.New("object store does not support SaveWithKey")
	}
	_, err := saver.SaveWithKey(ctx, key, contentType, bytes.NewReader(data))
	return err
}

func (s *Service) readObject(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func artifactKeyFor(userID, resumeID string) string {
	return "resumes/" + userID + "/" + resumeID + "/resume.docx"
}

func structuredKeyFor(userID, resumeID string) string {
	return "resumes/" + userID + "/" + resumeID + "/structured.json"
}

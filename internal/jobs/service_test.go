package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newTestService() *Service {
	return &Service{Repo: NewMemoryRepo()}
}

func seedDraft(t *testing.T, svc *Service) Job {
	t.Helper()
	job, err := svc.CreateDraft(context.Background(), "recruiter-1", DetailsInput{
		Title:    "Go Developer",
		Company:  "Acme",
		Location: "Berlin",
		Type:     "full_time",
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	return job
}

func completeSections(t *testing.T, svc *Service, jobID string) {
	t.Helper()
	if _, err := svc.UpdateDescription(context.Background(), jobID, strings.Repeat("Build Go services. ", 3)); err != nil {
		t.Fatalf("UpdateDescription: %v", err)
	}
	if _, err := svc.UpdateRequirements(context.Background(), jobID, []string{"3+ years Go"}, []string{"go", "backend"}); err != nil {
		t.Fatalf("UpdateRequirements: %v", err)
	}
}

func TestPublishRequiresAllSections(t *testing.T) {
	svc := newTestService()
	job := seedDraft(t, svc)

	_, err := svc.Publish(context.Background(), job.ID)
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	if !strings.Contains(err.Error(), "description") || !strings.Contains(err.Error(), "requirements") {
		t.Errorf("error should name missing sections: %v", err)
	}

	completeSections(t, svc, job.ID)
	published, err := svc.Publish(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if published.Status != StatusPublished {
		t.Errorf("status = %s", published.Status)
	}
}

func TestDraftsHiddenFromBrowse(t *testing.T) {
	svc := newTestService()
	job := seedDraft(t, svc)

	items, err := svc.Browse(context.Background(), BrowseFilter{})
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("draft visible in browse: %v", items)
	}

	completeSections(t, svc, job.ID)
	if _, err := svc.Publish(context.Background(), job.ID); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	items, _ = svc.Browse(context.Background(), BrowseFilter{})
	if len(items) != 1 {
		t.Fatalf("published posting missing from browse")
	}

	if _, err := svc.Close(context.Background(), job.ID); err != nil {
		t.Fatalf("Close: %v", err)
	}
	items, _ = svc.Browse(context.Background(), BrowseFilter{})
	if len(items) != 0 {
		t.Fatal("closed posting still in browse")
	}
}

func TestBrowseFilters(t *testing.T) {
	svc := newTestService()
	seed := func(title, location, jobType string, tags []string) {
		job, err := svc.CreateDraft(context.Background(), "recruiter-1", DetailsInput{
			Title: title, Company: "Acme", Location: location, Type: jobType,
		})
		if err != nil {
			t.Fatalf("CreateDraft: %v", err)
		}
		completeSections(t, svc, job.ID)
		if len(tags) > 0 {
			if _, err := svc.UpdateRequirements(context.Background(), job.ID, []string{"req"}, tags); err != nil {
				t.Fatalf("UpdateRequirements: %v", err)
			}
		}
		if _, err := svc.Publish(context.Background(), job.ID); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	seed("Go Developer", "Berlin", "full_time", []string{"go"})
	seed("Frontend Developer", "Paris", "contract", []string{"react"})

	cases := []struct {
		name   string
		filter BrowseFilter
		want   int
	}{
		{name: "by query", filter: BrowseFilter{Query: "go dev"}, want: 1},
		{name: "by location", filter: BrowseFilter{Location: "berlin"}, want: 1},
		{name: "by type", filter: BrowseFilter{Type: "contract"}, want: 1},
		{name: "by tag", filter: BrowseFilter{Tags: []string{"go"}}, want: 1},
		{name: "no match", filter: BrowseFilter{Query: "rust"}, want: 0},
		{name: "all", filter: BrowseFilter{}, want: 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := svc.Browse(context.Background(), tc.filter)
			if err != nil {
				t.Fatalf("Browse: %v", err)
			}
			if len(items) != tc.want {
				t.Errorf("got %d postings, want %d", len(items), tc.want)
			}
		})
	}
}

func TestImportSkipsBadItems(t *testing.T) {
	svc := newTestService()
	items := []map[string]any{
		{"jobTitle": "Go Developer", "companyName": "Acme"},
		{"location": "Nowhere"},
		{"job_title": "SRE", "employer": "Globex", "employment_type": "Full-Time"},
	}
	result, err := svc.Import(context.Background(), "admin-1", items)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Imported != 2 || result.Failed != 1 {
		t.Fatalf("result = %+v", result)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "item 1") {
		t.Errorf("errors = %v", result.Errors)
	}

	// Imported postings go straight to browse.
	listed, _ := svc.Browse(context.Background(), BrowseFilter{})
	if len(listed) != 2 {
		t.Errorf("browse after import = %d postings", len(listed))
	}
}

func TestCreateDraftValidation(t *testing.T) {
	svc := newTestService()
	_, err := svc.CreateDraft(context.Background(), "r1", DetailsInput{Title: " ", Company: ""})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	_, err = svc.CreateDraft(context.Background(), "r1", DetailsInput{Title: "T", Company: "C", Type: "gig"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown type accepted: %v", err)
	}
	_, err = svc.CreateDraft(context.Background(), "r1", DetailsInput{Title: "T", Company: "C", SalaryMin: 100, SalaryMax: 50})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("inverted salary accepted: %v", err)
	}
}

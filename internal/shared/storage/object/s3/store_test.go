package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "a1b2/resume.pdf", want: "a1b2/resume.pdf"},
		{name: "simple prefix", prefix: "uploads", key: "a1b2/resume.pdf", want: "uploads/a1b2/resume.pdf"},
		{name: "prefix trailing slash", prefix: "uploads/", key: "a1b2/resume.pdf", want: "uploads/a1b2/resume.pdf"},
		{name: "leading slashes stripped", prefix: "/uploads/", key: "/a1b2/resume.pdf", want: "uploads/a1b2/resume.pdf"},
		{name: "nested prefix", prefix: "env/prod", key: "a1b2/artifact.docx", want: "env/prod/a1b2/artifact.docx"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestNormalizePrefix(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"":          "",
		"uploads":   "uploads",
		"/uploads/": "uploads",
		"  a/b  ":   "a/b",
	} {
		if got := normalizePrefix(in); got != want {
			t.Fatalf("normalizePrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

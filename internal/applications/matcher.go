package applications

import (
	"strings"

	"hirepath-backend/internal/jobs"
)

var stopwords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "our": true, "will": true, "have": true, "this": true,
	"that": true, "your": true, "from": true, "not": true, "all": true,
}

// Tokenize lowercases text and keeps distinct word tokens of three or
// more letters, dropping stopwords.
func Tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	var current strings.Builder
	flush := func() {
		if current.Len() >= 3 {
			word := current.String()
			if !stopwords[word] {
				tokens[word] = true
			}
		}
		current.Reset()
	}
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '+' || r == '#' {
			current.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// MatchScore scores a resume against one posting as the fraction of the
// posting's distinct tokens present in the resume text. Requirements
// and tags carry double weight over the description.
func MatchScore(resumeTokens map[string]bool, job jobs.Job) float64 {
	base := Tokenize(job.Title + " " + job.Description)
	emphasized := Tokenize(strings.Join(job.Requirements, " ") + " " + strings.Join(job.Tags, " "))

	var total, hit float64
	for token := range base {
		if emphasized[token] {
			continue // counted below at the higher weight
		}
		total++
		if resumeTokens[token] {
			hit++
		}
	}
	for token := range emphasized {
		total += 2
		if resumeTokens[token] {
			hit += 2
		}
	}
	if total == 0 {
		return 0
	}
	return hit / total
}

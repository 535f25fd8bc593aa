package util

import (
	"errors"
	"strings"
)

var errInvalidFileName = errors.New("invalid file name")

// SanitizeFileName flattens path separators out of an uploaded file name and
// rejects traversal patterns so the result is safe to embed in a storage key.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if s == "" || strings.Contains(s, "..") {
		return "", errInvalidFileName
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\':
			return '_'
		default:
			return r
		}
	}, s)
	return s, nil
}

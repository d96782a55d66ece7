package errors

import (
	"path/filepath"
	"slices"
	"strings"
)

// GraphExtensions lists the file extensions a graph document may have.
var GraphExtensions = []string{".json", ".yaml", ".yml"}

// ValidateFormat rejects format unless it is one of allowed.
func ValidateFormat(format string, allowed []string) error {
	switch {
	case format == "":
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	case !slices.Contains(allowed, format):
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateGraphFile rejects paths without one of [GraphExtensions].
func ValidateGraphFile(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "graph file cannot be empty")
	}
	if !slices.Contains(GraphExtensions, strings.ToLower(filepath.Ext(path))) {
		return New(ErrCodeInvalidFormat, "graph file %s must be one of %s", filepath.Base(path), strings.Join(GraphExtensions, ", "))
	}
	return nil
}

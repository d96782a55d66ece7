package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	old := Version
	defer func() { Version = old }()
	Version = "v9.9.9"

	if got := String(); !strings.HasPrefix(got, "swimlane v9.9.9\n") {
		t.Errorf("String() = %q, want prefix %q", got, "swimlane v9.9.9\n")
	}
	if got := Template(); !strings.Contains(got, "v9.9.9") || !strings.HasPrefix(got, "{{.Name}}") {
		t.Errorf("Template() = %q", got)
	}
}

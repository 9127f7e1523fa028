package version

import (
	"runtime/debug"
	"testing"

	"github.com/fatih/color"
)

func TestCurrentPrefersLinkTimeValues(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate })

	Version = " 1.2.3 "
	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"

	info := Current()
	if info.Version != "1.2.3" || info.GitCommit != "abc123def456" || info.BuildDate != "2024-01-15T10:30:00Z" {
		t.Fatalf("Current() = %+v", info)
	}

	Version = ""
	if got := Current().Version; got != "dev" {
		t.Errorf("empty version = %q, want dev", got)
	}
}

func TestFillFromSettings(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "deadbeef"},
		{Key: "vcs.time", Value: "2025-01-01T00:00:00Z"},
		{Key: "vcs.modified", Value: "true"},
	}

	var info Info
	fillFromSettings(&info, settings)
	if info.GitCommit != "deadbeef" || info.BuildDate != "2025-01-01T00:00:00Z" || !info.Modified {
		t.Errorf("from vcs: %+v", info)
	}

	info = Info{GitCommit: "linked"}
	fillFromSettings(&info, settings)
	if info.GitCommit != "linked" {
		t.Errorf("link-time commit overwritten: %q", info.GitCommit)
	}
}

func TestColored(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	tests := []struct{ in, want string }{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"weird", "weird"},
	}
	for _, tt := range tests {
		if got := Colored(tt.in); got != tt.want {
			t.Errorf("Colored(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

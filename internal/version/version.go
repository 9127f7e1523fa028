// Package version holds build metadata of the kiln binary.
// The variables are overridden at link time:
//
//	go build -ldflags "-X kiln/internal/version.GitCommit=$(git rev-parse HEAD)"
package version

import (
	"runtime/debug"
	"strings"

	"github.com/fatih/color"
)

var (
	Version    = "0.1.0-dev"
	GitCommit  = ""
	GitMessage = ""
	BuildDate  = "" // ISO-8601
)

// Info is the resolved metadata; empty fields were not recorded.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	Message   string `json:"git_message,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
}

// Current merges the link-time variables with VCS stamps the Go toolchain
// embeds, preferring the former.
func Current() Info {
	info := Info{
		Version:   strings.TrimSpace(Version),
		GitCommit: strings.TrimSpace(GitCommit),
		Message:   strings.TrimSpace(GitMessage),
		BuildDate: strings.TrimSpace(BuildDate),
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromSettings(&info, bi.Settings)
	}
	return info
}

func fillFromSettings(info *Info, settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
}

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored раскрашивает major.minor.patch; суффикс (-dev) остаётся как есть.
func Colored(v string) string {
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return v
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

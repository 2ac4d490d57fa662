// Package version exposes build metadata for the suipic client.
package version

import (
	"fmt"
	"strings"
)

// Overridden at build time with -ldflags "-X ...".
var (
	Name      = "suipic"
	Version   = "0.3.0"
	GitCommit = ""
	BuildTime = ""
)

// String renders a one-line banner, e.g.
// "suipic v0.3.0 (abc1234, built 2026-08-31T10:00:00Z)".
func String() string {
	banner := fmt.Sprintf("%s v%s", Name, Version)

	var extra []string
	if GitCommit != "" {
		extra = append(extra, GitCommit[:min(7, len(GitCommit))])
	}
	if BuildTime != "" {
		extra = append(extra, "built "+BuildTime)
	}
	if len(extra) > 0 {
		banner += " (" + strings.Join(extra, ", ") + ")"
	}
	return banner
}

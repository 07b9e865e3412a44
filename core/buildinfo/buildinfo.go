// Package buildinfo reports the identity of the running binary.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Set via -ldflags, e.g.
//
//	-X 'github.com/m3rciful/mealbot/core/buildinfo.Version=v1.2.3'
//
// Commit and Date fall back to the VCS stamp embedded by the go tool.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

var resolveOnce sync.Once

func resolve() {
	resolveOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && Commit == "":
				Commit = s.Value
				if len(Commit) > 12 {
					Commit = Commit[:12]
				}
			case s.Key == "vcs.time" && Date == "":
				Date = s.Value
			}
		}
	})
}

// Fields returns version, commit and date for structured logs.
func Fields() (version, commit, date string) {
	resolve()
	if Commit == "" {
		return Version, "local", Date
	}
	return Version, Commit, Date
}

// String renders the build identity for operator-facing messages.
func String() string {
	v, c, d := Fields()
	if d == "" {
		return fmt.Sprintf("%s (%s)", v, c)
	}
	return fmt.Sprintf("%s (%s, %s)", v, c, d)
}

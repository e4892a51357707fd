// Package version reports the build information of the tradebot binaries.
package version

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// set with -ldflags "-X github.com/tradebot/dashboard/internal/version.version=..."
var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

// Info is returned by the ui server's /version endpoint and printed by --version
type Info struct {
	Version   string `json:"version" yaml:"version" example:"v1.0.0"`
	BuildDate string `json:"build_date" yaml:"build_date" example:"2025-01-01T12:00:00Z"`
	GitCommit string `json:"git_commit" yaml:"git_commit" example:"abc123"`
}

var (
	once sync.Once
	info Info
)

// Get returns the build information.
// Binaries built without ldflags fall back to the vcs settings recorded by the go toolchain.
func Get() Info {
	once.Do(func() {
		info = Info{Version: version, BuildDate: buildDate, GitCommit: gitCommit}

		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "unknown" {
					info.GitCommit = s.Value
				}
			case "vcs.time":
				if info.BuildDate == "unknown" {
					info.BuildDate = s.Value
				}
			}
		}
	})
	return info
}

func (i Info) String() string {
	return fmt.Sprintf("%s (built %s, commit %s)", i.Version, i.BuildDate, i.GitCommit)
}

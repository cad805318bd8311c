// Package version описывает сборку. Значения задаются через -ldflags:
//
//	-X github.com/vladislavdragonenkov/scm/internal/version.version=v1.2.0
//
// без них коммит и дата берутся из VCS-меток go build.
package version

import (
	"fmt"
	"runtime/debug"
	"sync"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

// Build: сведения о бинарнике.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

var current = sync.OnceValue(func() Build {
	info, _ := debug.ReadBuildInfo()
	return resolve(info)
})

// Get возвращает сведения о текущей сборке.
func Get() Build { return current() }

func resolve(info *debug.BuildInfo) Build {
	b := Build{Version: version, Commit: commit, Date: date, GoVersion: "unknown"}
	if info != nil {
		b.GoVersion = info.GoVersion
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && b.Commit == "":
				b.Commit = s.Value
			case s.Key == "vcs.time" && b.Date == "":
				b.Date = s.Value
			}
		}
	}
	if b.Commit == "" {
		b.Commit = "unknown"
	}
	if b.Date == "" {
		b.Date = "unknown"
	}
	return b
}

func (b Build) String() string {
	return fmt.Sprintf("scm %s (commit %s, built %s, %s)", b.Version, b.Commit, b.Date, b.GoVersion)
}

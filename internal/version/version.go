package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via ldflags at release time; Commit falls back to the VCS revision
// embedded in the build info for plain `go build` binaries.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return fmt.Sprintf("parla %s (commit=%s, date=%s, go=%s)", Version, commit(), Date, runtime.Version())
}

func commit() string {
	if Commit != "none" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}
	return Commit
}

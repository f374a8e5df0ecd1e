// Package version reports which build of tonedelay is running.
package version

import "runtime/debug"

// Version can be set at build time, which takes precedence over the build info:
// go build -ldflags "-X github.com/buzzerlab/tonedelay/version.Version=$(git describe --dirty)"
var Version string

// String returns Version if set, otherwise the module version of a
// `go install`ed binary, otherwise the short VCS revision.
func String() string {
	if Version != "" {
		return Version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	return fromBuildInfo(info)
}

func fromBuildInfo(info *debug.BuildInfo) string {
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	var revision string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if revision == "" {
		return "devel"
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if dirty {
		revision += "-dirty"
	}
	return revision
}

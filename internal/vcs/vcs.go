// Package vcs reports the version the binary was built from.
package vcs

import (
	"runtime/debug"
)

// Version returns the main module version, falling back to the VCS revision
// for development builds.
func Version() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}

	if v := bi.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	var revision string
	var modified bool
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}

	if revision == "" {
		return "devel"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if modified {
		revision += "-dirty"
	}
	return revision
}

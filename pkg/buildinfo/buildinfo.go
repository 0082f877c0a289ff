package buildinfo

import "runtime"

// These vars are set at build time via ldflags:
// -X github.com/Valtora/nojoin/pkg/buildinfo.Version=v0.3.0
// -X github.com/Valtora/nojoin/pkg/buildinfo.Commit=a1b2c3d
// -X github.com/Valtora/nojoin/pkg/buildinfo.BuildTime=2026-08-31T10:30:00Z
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info holds build information for the binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the build info baked into this binary.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String returns a human-readable one-liner like "v0.3.0 (a1b2c3d, 2026-08-31T10:30:00Z)"
func String() string {
	return Version + " (" + Commit + ", " + BuildTime + ")"
}

package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// Ces variables sont injectées à la compilation via -ldflags.
// Exemple :
//
//	-X github.com/salam-labs/adzan/internal/buildinfo.Version=v0.3.0
//	-X github.com/salam-labs/adzan/internal/buildinfo.Commit=abcdef
//	-X github.com/salam-labs/adzan/internal/buildinfo.Date=2026-02-06
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Date      string `json:"date,omitempty"`
	GoVersion string `json:"goVersion"`
}

// Current complète les valeurs absentes avec les métadonnées VCS du binaire (go build >= 1.18).
func Current() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date, GoVersion: runtime.Version()}
	if info.Commit != "" && info.Date != "" {
		return info
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "" {
				info.Date = s.Value
			}
		}
	}
	return info
}

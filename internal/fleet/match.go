package fleet

import (
	"path"
	"strings"

	"profleet/internal/catalog"
)

// profilePath is a normalized profile directory used for process matching.
type profilePath struct {
	dir  string
	name string
}

func newProfilePath(dir string) profilePath {
	norm := catalog.NormalizePath(dir)
	return profilePath{dir: norm, name: path.Base(norm)}
}

// owns reports whether a normalized executable path belongs to the profile.
// The name check requires separators on both sides so "tg 1" never
// matches inside "tg 15".
func (p profilePath) owns(exe string) bool {
	if exe == "" || p.dir == "" {
		return false
	}
	if exe == p.dir || strings.HasPrefix(exe, p.dir+"/") {
		return true
	}
	return p.name != "" && strings.Contains(exe, "/"+p.name+"/")
}

func profilePaths(dirs []string) []profilePath {
	out := make([]profilePath, 0, len(dirs))
	for _, dir := range dirs {
		out = append(out, newProfilePath(dir))
	}
	return out
}

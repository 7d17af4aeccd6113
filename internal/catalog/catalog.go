// Package catalog discovers profile directories under a fleet root and
// builds the canonical directory paths for profile ids.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrRootNotFound is returned when the fleet root is missing or is not a directory.
	ErrRootNotFound = errors.New("root directory not found")
	// ErrDirectoryRead is returned when a directory cannot be enumerated.
	ErrDirectoryRead = errors.New("directory read failed")
)

const (
	DefaultPrefix    = "TG"
	DefaultMarkerDir = "tdata"
)

// Layout describes how profiles are laid out on disk: "<Prefix> <id>"
// directories directly under the root, each holding a MarkerDir.
type Layout struct {
	Prefix    string
	MarkerDir string
}

// DefaultLayout returns the conventional profile layout.
func DefaultLayout() Layout {
	return Layout{Prefix: DefaultPrefix, MarkerDir: DefaultMarkerDir}
}

// DirName returns the directory name for profile id.
func (l Layout) DirName(id int) string {
	return fmt.Sprintf("%s %d", l.Prefix, id)
}

// Dir returns the profile directory for id under root, in OS form.
func (l Layout) Dir(root string, id int) string {
	return filepath.Join(root, l.DirName(id))
}

// ParseID extracts the numeric id from a profile directory name.
func (l Layout) ParseID(name string) (int, bool) {
	rest, ok := cutPrefixFold(strings.TrimSpace(name), l.Prefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Profile is a qualifying profile directory found under the root.
type Profile struct {
	// ID is the number following the prefix, 0 when the name does not parse.
	ID int
	// Label is the directory name as found on disk.
	Label     string
	Dir       string
	Marker    string
	HasMarker bool
}

// List returns the profiles found directly under root. Subdirectories
// without a marker directory are skipped.
func List(root string, layout Layout) ([]Profile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDirectoryRead, root, err)
	}

	profiles := make([]Profile, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		marker, ok := findMarker(dir, layout.MarkerDir)
		if !ok {
			continue
		}
		id, _ := layout.ParseID(entry.Name())
		profiles = append(profiles, Profile{
			ID:        id,
			Label:     entry.Name(),
			Dir:       dir,
			Marker:    marker,
			HasMarker: true,
		})
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		a, b := profiles[i], profiles[j]
		if a.ID != 0 && b.ID != 0 {
			return a.ID < b.ID
		}
		if (a.ID != 0) != (b.ID != 0) {
			return a.ID != 0
		}
		return a.Label < b.Label
	})
	return profiles, nil
}

// findMarker looks for the marker directory inside dir, ignoring case.
func findMarker(dir, marker string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.EqualFold(entry.Name(), marker) {
			return filepath.Join(dir, entry.Name()), true
		}
	}
	return "", false
}

// BuildDirs returns the normalized profile directories for ids. Results
// that do not resolve inside the normalized root are dropped.
func BuildDirs(ids []int, root string, layout Layout) []string {
	normRoot := NormalizePath(root)
	if normRoot == "" {
		return nil
	}
	dirs := make([]string, 0, len(ids))
	for _, id := range ids {
		dir := NormalizePath(root + "/" + layout.DirName(id))
		if dir == normRoot || !WithinRoot(dir, normRoot) {
			continue
		}
		dirs = append(dirs, dir)
	}
	return dirs
}

// NormalizePath lowercases p, converts separators to forward slashes and
// cleans it. The result has no trailing separator except for "/".
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = strings.ToLower(strings.ReplaceAll(p, `\`, "/"))
	p = path.Clean(p)
	if p == "." {
		return ""
	}
	return p
}

// WithinRoot reports whether the normalized path p equals root or lies below it.
func WithinRoot(p, root string) bool {
	if p == "" || root == "" {
		return false
	}
	if p == root {
		return true
	}
	if strings.HasSuffix(root, "/") {
		return strings.HasPrefix(p, root)
	}
	return strings.HasPrefix(p, root+"/")
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return s[len(prefix):], true
}

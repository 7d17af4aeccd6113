// Package health guesses whether a profile is disabled from the contents
// of its marker directory. The result is a heuristic, not ground truth.
package health

import (
	"os"
	"strings"
)

var banIndicators = []string{
	"deleted",
	"banned",
	"suspended",
	"restricted",
	"unauthorized",
	"logout",
	"blocked",
}

var coreArtifacts = []string{
	"session",
	"user",
	"key",
	"map",
	"setting",
}

// minEntries is the smallest entry count a logged-in profile is expected to exceed.
const minEntries = 2

// Verdict is the classifier outcome with a short reason for logging.
type Verdict struct {
	Disabled bool
	Reason   string
}

// Classify applies the disabled-profile policy to markerDir.
func Classify(markerDir string) Verdict {
	entries, err := os.ReadDir(markerDir)
	if err != nil {
		return Verdict{Disabled: true, Reason: "unreadable"}
	}
	if len(entries) == 0 {
		return Verdict{Disabled: true, Reason: "empty"}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.ToLower(entry.Name()))
	}

	for _, name := range names {
		if indicator, ok := containsAny(name, banIndicators); ok {
			return Verdict{Disabled: true, Reason: "ban indicator " + indicator}
		}
	}

	hasCore := false
	for _, name := range names {
		if _, ok := containsAny(name, coreArtifacts); ok {
			hasCore = true
			break
		}
	}
	if !hasCore {
		return Verdict{Disabled: true, Reason: "no session artifacts"}
	}

	if len(names) <= minEntries {
		return Verdict{Disabled: true, Reason: "too few entries"}
	}
	return Verdict{Disabled: false, Reason: "looks usable"}
}

// IsLikelyDisabled reports whether the profile owning markerDir looks disabled.
func IsLikelyDisabled(markerDir string) bool {
	return Classify(markerDir).Disabled
}

func containsAny(name string, needles []string) (string, bool) {
	for _, needle := range needles {
		if strings.Contains(name, needle) {
			return needle, true
		}
	}
	return "", false
}

// Package procscan enumerates OS processes and filters them down to the
// managed application family.
package procscan

import (
	"context"
	"runtime"
	"strings"
)

//go:generate mockgen -destination=mocks/mock_system.go -package=mocks profleet/internal/procscan System

// Process is one entry of a process snapshot. ExePath is empty when the
// executable path could not be read.
type Process struct {
	PID     uint32 `json:"pid"`
	Name    string `json:"name"`
	ExePath string `json:"path"`
}

// System is the OS capability the fleet core depends on.
type System interface {
	ListProcesses(ctx context.Context) ([]Process, error)
	Kill(ctx context.Context, pid uint32) error
}

// Target identifies the application family to keep from a snapshot.
type Target struct {
	NameToken     string
	Executable    string
	VendorSegment string
}

// DefaultTarget returns the target for Telegram Desktop portable installs.
func DefaultTarget() Target {
	return Target{
		NameToken:     "telegram",
		Executable:    DefaultExecutable(),
		VendorSegment: "/telegram desktop/",
	}
}

// DefaultExecutable returns the executable file name for the current OS.
func DefaultExecutable() string {
	if runtime.GOOS == "windows" {
		return "Telegram.exe"
	}
	return "Telegram"
}

// Matches reports whether p belongs to the target family.
func (t Target) Matches(p Process) bool {
	name := strings.ToLower(p.Name)
	exe := strings.ToLower(strings.ReplaceAll(p.ExePath, `\`, "/"))

	if token := strings.ToLower(t.NameToken); token != "" && strings.Contains(name, token) {
		return true
	}
	if exe == "" {
		return false
	}
	if bin := strings.ToLower(t.Executable); bin != "" && strings.HasSuffix(exe, bin) {
		return true
	}
	if vendor := strings.ToLower(t.VendorSegment); vendor != "" && strings.Contains(exe, vendor) {
		return true
	}
	return false
}

// Scanner takes filtered snapshots of the target processes.
type Scanner struct {
	sys    System
	target Target
}

// NewScanner builds a scanner over sys.
func NewScanner(sys System, target Target) *Scanner {
	return &Scanner{sys: sys, target: target}
}

// Scan enumerates all processes once and returns those matching the target.
func (s *Scanner) Scan(ctx context.Context) ([]Process, error) {
	all, err := s.sys.ListProcesses(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Process, 0, len(all))
	for _, p := range all {
		if s.target.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

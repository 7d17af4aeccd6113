package launchstate

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Snapshot schema versioning for forward-compatibility.
const snapshotVersion = 1

type snapshot struct {
	Version int      `json:"version"`
	Session *Session `json:"session,omitempty"`
	Created int64    `json:"created_unix"`
}

func (s *Store) loadSnapshot(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var snap snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Session == nil {
		s.current = nil
		return nil
	}
	sess := clone(*snap.Session)
	s.current = &sess
	return nil
}

func (s *Store) saveSnapshot(path string) error {
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	s.mu.RLock()
	snap := snapshot{
		Version: snapshotVersion,
		Created: now().Unix(),
	}
	if s.current != nil {
		sess := clone(*s.current)
		snap.Session = &sess
	}
	s.mu.RUnlock()

	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

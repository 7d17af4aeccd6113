// Package launchstate persists the pending part of a batch-capped launch so
// a later call can resume where the batch cutoff stopped.
package launchstate

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoSession is returned when there is nothing to resume.
var ErrNoSession = errors.New("no launch session")

// Store is a threadsafe holder of at most one launch session, mirrored to
// a JSON snapshot on every change.
type Store struct {
	mu      sync.RWMutex
	current *Session

	// Where to snapshot. If empty, snapshotting is disabled.
	SnapshotPath string
}

// Open loads the snapshot at path if present and returns a ready store.
func Open(path string) (*Store, error) {
	s := &Store{SnapshotPath: path}
	if path != "" {
		if err := s.loadSnapshot(path); err != nil {
			return nil, fmt.Errorf("load launch state %s: %w", path, err)
		}
	}
	return s, nil
}

// Current returns a copy of the stored session.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return clone(*s.current), true
}

// Begin replaces any stored session with sess, whose Pending lists every
// id of the launch. Nothing is persisted until Advance is called.
func (s *Store) Begin(sess Session) Session {
	sess = clone(sess)
	sess.LaunchedPIDs = nil
	sess.TotalProfiles = len(sess.Pending)
	sess.StartedAt = now()
	sess.UpdatedAt = sess.StartedAt
	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	return clone(sess)
}

// Advance appends launched pids and replaces the pending ids with
// remaining, then persists the session.
func (s *Store) Advance(pids, remaining []int) (Session, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return Session{}, ErrNoSession
	}
	s.current.LaunchedPIDs = append(s.current.LaunchedPIDs, pids...)
	s.current.Pending = append([]int(nil), remaining...)
	s.current.UpdatedAt = now()
	out := clone(*s.current)
	s.mu.Unlock()

	return out, s.persist()
}

// Clear drops the stored session and its snapshot.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	return s.persist()
}

func (s *Store) persist() error {
	if s.SnapshotPath == "" {
		return nil
	}
	if err := s.saveSnapshot(s.SnapshotPath); err != nil {
		return fmt.Errorf("save launch state: %w", err)
	}
	return nil
}

func clone(s Session) Session {
	s.Pending = append([]int(nil), s.Pending...)
	s.LaunchedPIDs = append([]int(nil), s.LaunchedPIDs...)
	return s
}

// Package restore implements the Edit Session and the Signal Guard
// (SPEC_FULL.md §4.6/§4.8): a process-wide record of on-disk manifest
// mutations that must be reverted on every exit path, including signals.
//
// This is a repurposing of the teacher codebase's session-store pattern
// (register/expire/cleanup over a mutex-guarded slice) onto a different
// domain: there is no user, no TTL, and no network backend. What survives
// is the shape — a small struct guarding a slice with a mutex, offering
// Get/Set/Delete-like verbs — now named for what they actually do here.
package restore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// ErrNotRegistered is returned by Restore for a path that was never
// registered, which is always a caller error.
var ErrNotRegistered = fmt.Errorf("restore: path not registered")

// file is one tracked manifest mutation.
type file struct {
	path     string
	original []byte
}

// Manager is the Edit Session: it remembers the pre-edit bytes of every
// manifest this run has rewritten, and can restore some or all of them.
// It is safe for concurrent use by the run loop and the Signal Guard.
type Manager struct {
	mu      sync.Mutex
	files   []file
	enabled bool
}

// New creates a Manager. When enabled is false, Register and RestoreAll
// are no-ops: this is how --remove-dev-deps deliberately disables
// restoration (SPEC_FULL.md §4.6), mirroring original_source's
// restore::Manager::new(!args.remove_dev_deps).
func New(enabled bool) *Manager {
	return &Manager{enabled: enabled}
}

// Register records original so a later Restore/RestoreAll can revert path.
// Calling Register twice for the same path keeps only the first (oldest)
// original content, since that's the byte sequence restoration must
// reproduce.
func (m *Manager) Register(path string, original []byte) {
	if !m.enabled {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.files {
		if f.path == path {
			return
		}
	}
	m.files = append(m.files, file{path: path, original: original})
}

// RestoreLast restores and forgets the most recently registered file. It
// is used to unwind a partially-applied edit when a later edit in the same
// batch fails.
func (m *Manager) RestoreLast() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.files) == 0 {
		return nil
	}
	last := m.files[len(m.files)-1]
	m.files = m.files[:len(m.files)-1]
	return writeAtomic(last.path, last.original)
}

// RestoreAll restores every registered file and clears the session. It is
// idempotent: calling it again after all files are restored is a no-op.
// A failure on one file doesn't prevent restoring the rest; the first
// error encountered is returned.
func (m *Manager) RestoreAll() error {
	m.mu.Lock()
	files := m.files
	m.files = nil
	m.mu.Unlock()

	var firstErr error
	for _, f := range files {
		if err := writeAtomic(f.path, f.original); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("restoring %s: %w", f.path, err)
		}
	}
	return firstErr
}

// Pending reports how many files currently have unrestored edits.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

// writeAtomic writes data to path via a temporary sibling file that is then
// renamed into place, so a crash mid-write never leaves path truncated.
// The sibling's name carries a uuid suffix (rather than a fixed extension
// like ".orig") so that a leftover sibling from a killed prior run can
// never collide with one from a fresh run.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))

	info, statErr := os.Stat(path)
	mode := os.FileMode(0o644)
	if statErr == nil {
		mode = info.Mode()
	}

	if err := os.WriteFile(tmp, data, mode); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

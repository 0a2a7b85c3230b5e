// Package lock implements the best-effort workspace lock advisory
// (SPEC_FULL.md §5/§14): detecting, not preventing, a second concurrent
// invocation of the tool against the same workspace root.
//
// No library in the example pack wraps OS file locking (flock(2)/LockFileEx),
// so this one check is written directly against os.OpenFile's O_EXCL
// semantics rather than reaching for an out-of-pack dependency. See
// DESIGN.md for the stdlib-only justification.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const lockName = ".cargo-matrix.lock"

// Advisory is a held (or merely checked) lock file under a workspace root.
type Advisory struct {
	path string
	held bool
}

// Acquire creates the lock file under root, writing the current pid.
// An existing lock file is not an error: Acquire then returns an Advisory
// with held=false and the prior pid it found, so the caller can log a
// warning and proceed anyway (detection only). Any other failure to create
// the lock file is returned as err.
func Acquire(root string) (adv *Advisory, staleOwnerPID int, err error) {
	path := filepath.Join(root, lockName)
	adv = &Advisory{path: path}

	f, openErr := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if openErr == nil {
		defer f.Close()
		fmt.Fprintf(f, "%d\n", os.Getpid())
		adv.held = true
		return adv, 0, nil
	}
	if !os.IsExist(openErr) {
		return adv, 0, openErr
	}

	data, readErr := os.ReadFile(path)
	if readErr == nil {
		if pid, convErr := strconv.Atoi(trimNewline(data)); convErr == nil {
			staleOwnerPID = pid
		}
	}
	return adv, staleOwnerPID, nil
}

// Release removes the lock file, if this Advisory is the one holding it.
// It is a no-op (and returns nil) when the lock was never acquired by this
// process, so a detection-only caller can defer Release unconditionally.
func (a *Advisory) Release() error {
	if a == nil || !a.held {
		return nil
	}
	err := os.Remove(a.path)
	a.held = false
	return err
}

func trimNewline(b []byte) string {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return string(b)
}

package runner

import (
	"context"
	"os/exec"

	cmerrors "github.com/crateforge/cargo-matrix/pkg/errors"
)

// wrapExecError classifies a command's failure per SPEC_FULL.md §7:
// a context cancellation (from the Signal Guard) becomes CodeCancelled,
// everything else becomes CodeChildNonZero carrying the offending command
// line as the message.
func wrapExecError(p *ProcessBuilder, err error) error {
	if _, ok := err.(*exec.ExitError); !ok && (err == context.Canceled || err == context.DeadlineExceeded) {
		return cmerrors.Wrap(cmerrors.CodeCancelled, err, "cancelled while running %s", p)
	}
	return cmerrors.Wrap(cmerrors.CodeChildNonZero, err, "process didn't exit successfully: %s", p)
}

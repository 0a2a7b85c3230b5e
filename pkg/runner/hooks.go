package runner

import (
	"context"
	"sync"
	"time"

	"github.com/crateforge/cargo-matrix/pkg/features"
)

// Hooks receives lifecycle events from the Runner. This is a repurposing
// of the teacher codebase's observability hooks pattern (no-op default,
// global setter, avoids an import-cycle on any specific metrics backend)
// applied to the Runner's own lifecycle instead of a rendering pipeline's.
type Hooks interface {
	OnRunStart(ctx context.Context, pkg, toolchain string, combo features.Combination, index, total int)
	OnRunComplete(ctx context.Context, pkg, toolchain string, combo features.Combination, duration time.Duration, err error)
	OnRestore(ctx context.Context, path string, err error)
}

// NoopHooks is the default Hooks implementation.
type NoopHooks struct{}

func (NoopHooks) OnRunStart(context.Context, string, string, features.Combination, int, int) {}
func (NoopHooks) OnRunComplete(context.Context, string, string, features.Combination, time.Duration, error) {
}
func (NoopHooks) OnRestore(context.Context, string, error) {}

var (
	hooks   Hooks = NoopHooks{}
	hooksMu sync.RWMutex
)

// SetHooks registers custom Runner hooks. Call once at startup, before
// Execute runs.
func SetHooks(h Hooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		hooks = h
	}
}

func currentHooks() Hooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return hooks
}

// ResetHooks restores the no-op default. Primarily for tests.
func ResetHooks() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	hooks = NoopHooks{}
}

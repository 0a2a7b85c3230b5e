package lock

import (
	"os"
	"testing"
)

func TestAcquireAndRelease(t *testing.T) {
	root := t.TempDir()

	adv, stalePID, err := Acquire(root)
	if err != nil {
		t.Fatal(err)
	}
	if stalePID != 0 {
		t.Errorf("staleOwnerPID = %d, want 0 on first acquire", stalePID)
	}
	if !adv.held {
		t.Error("Advisory.held = false, want true after fresh acquire")
	}

	if err := adv.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}
	if _, err := os.Stat(adv.path); !os.IsNotExist(err) {
		t.Errorf("lock file still exists after Release()")
	}
}

func TestAcquireDetectsExistingLock(t *testing.T) {
	root := t.TempDir()

	first, _, err := Acquire(root)
	if err != nil {
		t.Fatal(err)
	}
	defer first.Release()

	second, stalePID, err := second(root)
	if err != nil {
		t.Fatal(err)
	}
	if second.held {
		t.Error("second Advisory.held = true, want false since first holds the lock")
	}
	if stalePID != os.Getpid() {
		t.Errorf("staleOwnerPID = %d, want %d", stalePID, os.Getpid())
	}
}

func second(root string) (*Advisory, int, error) {
	return Acquire(root)
}

func TestReleaseOnUnheldAdvisoryIsNoop(t *testing.T) {
	adv := &Advisory{path: "/does/not/matter", held: false}
	if err := adv.Release(); err != nil {
		t.Errorf("Release() on unheld advisory: %v", err)
	}
}

package cli

import (
	"strings"
	"testing"

	"github.com/crateforge/cargo-matrix/pkg/features"
)

func TestDescribeRun(t *testing.T) {
	tests := []struct {
		name string
		e    runEvent
		want string
	}{
		{
			name: "package only",
			e:    runEvent{pkg: "demo"},
			want: "demo",
		},
		{
			name: "package and toolchain",
			e:    runEvent{pkg: "demo", toolchain: "1.70"},
			want: "demo @ 1.70",
		},
		{
			name: "package, toolchain, and features",
			e: runEvent{
				pkg:       "demo",
				toolchain: "1.70",
				combo:     features.Combination{Features: []string{"a", "b"}},
			},
			want: "demo @ 1.70 [a,b]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeRun(tt.e); got != tt.want {
				t.Errorf("describeRun(%+v) = %q, want %q", tt.e, got, tt.want)
			}
		})
	}
}

func TestProgressModelUpdateTick(t *testing.T) {
	m := progressModel{}
	next, cmd := m.Update(tickMsg{})
	pm := next.(progressModel)
	if pm.frame != 1 {
		t.Errorf("frame = %d, want 1", pm.frame)
	}
	if cmd == nil {
		t.Error("tick should schedule another tick command")
	}
}

func TestProgressModelUpdateRunEvent(t *testing.T) {
	m := progressModel{}

	next, _ := m.Update(runEvent{pkg: "demo", toolchain: "1.70", index: 1, total: 4})
	pm := next.(progressModel)
	if pm.total != 4 {
		t.Errorf("total = %d, want 4", pm.total)
	}
	if !strings.Contains(pm.current, "demo") {
		t.Errorf("current = %q, want it to mention the in-flight package", pm.current)
	}

	next, _ = pm.Update(runEvent{done: true, index: 1, total: 4})
	pm = next.(progressModel)
	if pm.completed != 1 {
		t.Errorf("completed = %d, want 1", pm.completed)
	}
	if pm.failed != 0 {
		t.Errorf("failed = %d, want 0 for a successful run", pm.failed)
	}

	next, _ = pm.Update(runEvent{done: true, index: 2, total: 4, err: errTest})
	pm = next.(progressModel)
	if pm.failed != 1 {
		t.Errorf("failed = %d, want 1 after a failing run", pm.failed)
	}
}

func TestProgressModelView(t *testing.T) {
	m := progressModel{total: 4, completed: 2, failed: 1, current: "demo @ 1.70"}
	view := m.View()
	if !strings.Contains(view, "2/4") {
		t.Errorf("View() = %q, want it to contain the completed/total count", view)
	}
	if !strings.Contains(view, "demo @ 1.70") {
		t.Errorf("View() = %q, want it to contain the in-flight description", view)
	}
}

var errTest = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }

package cli

import (
	"reflect"
	"testing"

	"github.com/crateforge/cargo-matrix/pkg/runner"
)

func TestSplitBuilderArgs(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		wantSubcommand string
		wantLeading    []string
		wantTrailing   []string
	}{
		{
			name: "empty",
			args: nil,
		},
		{
			name:           "subcommand only",
			args:           []string{"check"},
			wantSubcommand: "check",
		},
		{
			name:           "subcommand with leading flags",
			args:           []string{"check", "--release"},
			wantSubcommand: "check",
			wantLeading:    []string{"--release"},
		},
		{
			name:           "leading and trailing split on --",
			args:           []string{"test", "--release", "--", "--nocapture"},
			wantSubcommand: "test",
			wantLeading:    []string{"--release"},
			wantTrailing:   []string{"--nocapture"},
		},
		{
			name:           "bare separator with nothing after",
			args:           []string{"build", "--"},
			wantSubcommand: "build",
			wantLeading:    nil,
			wantTrailing:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, leading, trailing := splitBuilderArgs(tt.args)
			if sub != tt.wantSubcommand {
				t.Errorf("subcommand = %q, want %q", sub, tt.wantSubcommand)
			}
			if !reflect.DeepEqual(leading, tt.wantLeading) && len(leading) != 0 {
				t.Errorf("leading = %v, want %v", leading, tt.wantLeading)
			}
			if !reflect.DeepEqual(trailing, tt.wantTrailing) && len(trailing) != 0 {
				t.Errorf("trailing = %v, want %v", trailing, tt.wantTrailing)
			}
		})
	}
}

func TestSplitGroups(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want [][]string
	}{
		{name: "nil", raw: nil, want: nil},
		{
			name: "single group",
			raw:  []string{"a,b,c"},
			want: [][]string{{"a", "b", "c"}},
		},
		{
			name: "repeated flag, multiple groups",
			raw:  []string{"a,b", "c,d"},
			want: [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name: "single-member group",
			raw:  []string{"solo"},
			want: [][]string{{"solo"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitGroups(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitGroups(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTargetFlag(t *testing.T) {
	if got := targetFlag(""); got != nil {
		t.Errorf("targetFlag(\"\") = %v, want nil", got)
	}
	want := []string{"--target", "x86_64-unknown-linux-musl"}
	if got := targetFlag("x86_64-unknown-linux-musl"); !reflect.DeepEqual(got, want) {
		t.Errorf("targetFlag(...) = %v, want %v", got, want)
	}
}

func TestWorkspaceRoot(t *testing.T) {
	got, err := workspaceRoot("/workspace/crates/foo/Cargo.toml")
	if err != nil {
		t.Fatalf("workspaceRoot returned error: %v", err)
	}
	want := "/workspace/crates/foo"
	if got != want {
		t.Errorf("workspaceRoot = %q, want %q", got, want)
	}
}

func TestWorkspaceRootDefaultsToCwd(t *testing.T) {
	got, err := workspaceRoot("")
	if err != nil {
		t.Fatalf("workspaceRoot returned error: %v", err)
	}
	if got == "" {
		t.Error("workspaceRoot(\"\") should resolve to the current directory, not empty")
	}
}

func TestToRunnerOptions(t *testing.T) {
	f := &hackFlags{
		packages:      []string{"alpha"},
		groupFeatures: []string{"a,b"},
		logGroup:      "github-actions",
		target:        "wasm32-unknown-unknown",
	}

	opts := f.toRunnerOptions("check", []string{"--release"}, []string{"--nocapture"})

	if opts.Builder != "cargo" {
		t.Errorf("Builder = %q, want cargo", opts.Builder)
	}
	if opts.Subcommand != "check" {
		t.Errorf("Subcommand = %q, want check", opts.Subcommand)
	}
	wantLeading := []string{"--release", "--target", "wasm32-unknown-unknown"}
	if !reflect.DeepEqual(opts.LeadingFlags, wantLeading) {
		t.Errorf("LeadingFlags = %v, want %v", opts.LeadingFlags, wantLeading)
	}
	if !reflect.DeepEqual(opts.TrailingArgs, []string{"--nocapture"}) {
		t.Errorf("TrailingArgs = %v, want [--nocapture]", opts.TrailingArgs)
	}
	wantGroups := [][]string{{"a", "b"}}
	if !reflect.DeepEqual(opts.GroupFeatures, wantGroups) {
		t.Errorf("GroupFeatures = %v, want %v", opts.GroupFeatures, wantGroups)
	}
	if opts.LogGroup != runner.LogGroupGitHubActions {
		t.Errorf("LogGroup = %v, want github-actions", opts.LogGroup)
	}
}

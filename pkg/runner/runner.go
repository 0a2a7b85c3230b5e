package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	cmerrors "github.com/crateforge/cargo-matrix/pkg/errors"
	"github.com/crateforge/cargo-matrix/pkg/features"
	"github.com/crateforge/cargo-matrix/pkg/manifest"
	"github.com/crateforge/cargo-matrix/pkg/restore"
	"github.com/crateforge/cargo-matrix/pkg/workspace"
)

// Run is one (package, toolchain, combination) triple the Runner will
// turn into a child-process invocation.
type Run struct {
	Member      workspace.Member
	Toolchain   string // "" means the default toolchain
	Combination features.Combination
}

// Stats summarizes a completed (or aborted) Execute call.
type Stats struct {
	Total     int
	Completed int
	Failed    int
}

// Runner is the Run Plan driver (SPEC_FULL.md §4.7).
type Runner struct {
	Opts    *Options
	Restore *restore.Manager
	Guard   *restore.Guard
	Logger  *log.Logger

	// LatestMinor is the latest stable minor version known to the
	// toolchain manager, resolved by the CLI layer (an external
	// collaborator) before BuildPlan runs. It substitutes for an
	// open-ended --version-range end.
	LatestMinor int

	// groups is the synthetic group-name -> member-atom map BuildPlan
	// derived from Opts, cached so buildCommand can expand a
	// Combination's group atoms back to real feature names.
	groups map[string][]string
}

// New creates a Runner. If opts.NoDevDeps/RemoveDevDeps is set, the
// returned Edit Session is enabled for automatic restoration unless
// RemoveDevDeps is set, per the Edit Session's own constructor contract.
func New(opts *Options, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	mgr := restore.New(!opts.RemoveDevDeps)
	return &Runner{Opts: opts, Restore: mgr, Logger: logger}
}

// BuildPlan enumerates every Run for members, in §4.4 order per package,
// skipping private packages when IgnorePrivate is set, and applies
// --partition. When no Subcommand is configured, no package contributes
// any Run and the plan is empty.
func (r *Runner) BuildPlan(members []workspace.Member) ([]Run, error) {
	r.groups = r.Opts.EnumeratorOptions().Groups

	var plan []Run
	for _, mem := range members {
		if r.Opts.IgnorePrivate && !mem.Package.Publish {
			r.Logger.Infof("skipped running on private crate %s", mem.Package.Name)
			continue
		}
		if r.Opts.Subcommand == "" {
			continue
		}

		model := features.NewModel(mem.Package)
		combos := features.Enumerate(model, r.Opts.EnumeratorOptions())

		toolchains, err := versionPlan(r.Opts, mem.Package.RustVersion, r.LatestMinor)
		if err != nil {
			return nil, err
		}
		if len(toolchains) == 0 {
			toolchains = []string{""}
		}

		for _, tc := range toolchains {
			for _, combo := range combos {
				plan = append(plan, Run{Member: mem, Toolchain: tc, Combination: combo})
			}
		}
	}

	return r.partition(plan)
}

func (r *Runner) partition(plan []Run) ([]Run, error) {
	if r.Opts.Partition == "" {
		return plan, nil
	}
	m, n, err := ParsePartition(r.Opts.Partition)
	if err != nil {
		return nil, err
	}
	var out []Run
	for i, run := range plan {
		if i%n == m-1 {
			out = append(out, run)
		}
	}
	return out, nil
}

// Execute runs plan to completion (or to the first failure, when
// KeepGoing is off), per SPEC_FULL.md §4.7/§5.
func (r *Runner) Execute(ctx context.Context, plan []Run) (Stats, error) {
	stats := Stats{Total: len(plan)}
	lastVersion := ""
	lastManifest := ""

	finishPackage := func() {
		if r.Opts.NoDevDeps && !r.Opts.RemoveDevDeps && lastManifest != "" {
			err := r.Restore.RestoreLast()
			currentHooks().OnRestore(ctx, lastManifest, err)
			lastManifest = ""
		}
	}

	for _, run := range plan {
		if r.Guard != nil && r.Guard.Cancelled() {
			finishPackage()
			return stats, cmerrors.New(cmerrors.CodeCancelled, "run plan cancelled by signal")
		}

		if r.Opts.CleanPerVersion && run.Toolchain != lastVersion {
			if err := r.clean(ctx, "", run.Toolchain); err != nil {
				return stats, err
			}
			lastVersion = run.Toolchain
		}

		path := run.Member.Package.ManifestPath
		if path != lastManifest {
			finishPackage()
			if r.Opts.NoDevDeps || r.Opts.RemoveDevDeps {
				if err := r.removeDevDeps(path); err != nil {
					return stats, err
				}
				lastManifest = path
			}
		}

		line := r.buildCommand(run)

		if r.Opts.PrintCommandList {
			fmt.Fprintln(os.Stdout, line.String())
			continue
		}

		if r.Opts.CleanPerRun {
			if err := r.clean(ctx, run.Member.Package.Name, run.Toolchain); err != nil {
				return stats, err
			}
		}

		stats.Completed++
		r.logProgress(run, line, stats.Completed, stats.Total)
		r.groupStart(run, line)

		start := time.Now()
		currentHooks().OnRunStart(ctx, run.Member.Package.Name, run.Toolchain, run.Combination, stats.Completed, stats.Total)
		err := line.Exec(ctx)
		currentHooks().OnRunComplete(ctx, run.Member.Package.Name, run.Toolchain, run.Combination, time.Since(start), err)
		r.groupEnd()

		if err != nil {
			stats.Failed++
			if !r.Opts.KeepGoing {
				finishPackage()
				r.restoreAll(ctx)
				return stats, err
			}
			r.Logger.Errorf("%s", cmerrors.UserMessage(err))
		}
	}

	finishPackage()
	r.restoreAll(ctx)
	if stats.Failed > 0 {
		return stats, cmerrors.New(cmerrors.CodeChildNonZero, "%d of %d runs failed", stats.Failed, stats.Total)
	}
	return stats, nil
}

// removeDevDeps clears every dev-dependency table of the manifest at path
// on disk, registering an Edit Session entry so it is restored once this
// package's runs are done (or, for --remove-dev-deps, never, since that
// Manager was constructed disabled).
func (r *Runner) removeDevDeps(path string) error {
	original, err := os.ReadFile(path)
	if err != nil {
		return cmerrors.Wrap(cmerrors.CodeIO, err, "reading manifest %s", path)
	}
	eb := manifest.NewEditBuffer(original)
	eb.RemoveDevDependencies()
	r.Restore.Register(path, original)
	if err := os.WriteFile(path, eb.Bytes(), 0o644); err != nil {
		return cmerrors.Wrap(cmerrors.CodeIO, err, "writing manifest %s", path)
	}
	return nil
}

// buildCommand materializes the invocation for one Run. Dev-dependency
// removal is handled once per package by Execute, not here.
func (r *Runner) buildCommand(run Run) *ProcessBuilder {
	leading := append([]string{r.Opts.Subcommand}, r.Opts.LeadingFlags...)
	line := NewProcessBuilder(r.Opts.Builder, leading, r.Opts.TrailingArgs, r.Opts.Verbose)

	if !r.Opts.NoManifestPath {
		line.Arg("--manifest-path")
		line.Arg(run.Member.Package.ManifestPath)
	}
	if r.Opts.Locked {
		line.Arg("--locked")
	}
	if run.Toolchain != "" {
		// `cargo +1.70 <subcommand> ...`: cargo's own toolchain-override
		// syntax, not `rustup run`, per original_source's rustup::version_range.
		line.LeadingArgs = append([]string{"+" + run.Toolchain}, line.LeadingArgs...)
	}

	switch run.Combination.Kind {
	case features.KindNoDefault:
		line.Arg("--no-default-features")
	case features.KindDefault:
		// default features, nothing to add
	case features.KindAllFeatures:
		line.Arg("--all-features")
	case features.KindExplicit:
		if run.Combination.NoDefault {
			line.Arg("--no-default-features")
		}
		line.AppendFeatures(features.Expand(run.Combination.Features, r.groups))
	}
	// -F/--features are added to every run's --features value.
	line.AppendFeatures(r.Opts.Features)

	return line
}

func (r *Runner) clean(ctx context.Context, pkg, toolchain string) error {
	line := NewProcessBuilder(r.Opts.Builder, []string{"clean"}, nil, r.Opts.Verbose)
	if pkg != "" {
		line.Arg("--package")
		line.Arg(pkg)
	}
	if r.Opts.Verbose {
		r.Logger.Infof("running %s", line)
	}
	return line.Exec(ctx)
}

func (r *Runner) logProgress(run Run, line *ProcessBuilder, count, total int) {
	if r.Opts.Verbose {
		r.Logger.Infof("running %s (%d/%d)", line, count, total)
		return
	}
	r.Logger.Infof("running %s on %s (%d/%d)", line, run.Member.Package.Name, count, total)
}

// groupStart/groupEnd fold one run's child-process output behind a
// collapsible GitHub Actions log group when --log-group=github-actions is
// set, so a long matrix doesn't drown the workflow log. No-op otherwise.
func (r *Runner) groupStart(run Run, line *ProcessBuilder) {
	if r.Opts.LogGroup != LogGroupGitHubActions {
		return
	}
	label := run.Member.Package.Name
	if run.Toolchain != "" {
		label = fmt.Sprintf("%s (%s)", label, run.Toolchain)
	}
	fmt.Printf("::group::%s: %s\n", label, line)
}

func (r *Runner) groupEnd() {
	if r.Opts.LogGroup != LogGroupGitHubActions {
		return
	}
	fmt.Println("::endgroup::")
}

func (r *Runner) restoreAll(ctx context.Context) {
	if err := r.Restore.RestoreAll(); err != nil {
		currentHooks().OnRestore(ctx, "", err)
	}
}


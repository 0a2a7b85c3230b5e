package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	cmerrors "github.com/crateforge/cargo-matrix/pkg/errors"
	"github.com/crateforge/cargo-matrix/pkg/features"
	"github.com/crateforge/cargo-matrix/pkg/lock"
	"github.com/crateforge/cargo-matrix/pkg/manifest"
	"github.com/crateforge/cargo-matrix/pkg/restore"
	"github.com/crateforge/cargo-matrix/pkg/runner"
	"github.com/crateforge/cargo-matrix/pkg/workspace"
)

// hackFlags mirrors runner.Options one field at a time so cobra can bind
// directly into simple Go values before a single toRunnerOptions pass
// assembles the validated record the core consumes.
type hackFlags struct {
	manifestPath   string
	noManifestPath bool
	locked         bool

	packages      []string
	exclude       []string
	workspaceAll  bool
	ignorePrivate bool
	noPrivate     bool

	featureList               []string
	eachFeature               bool
	featurePowerset           bool
	optionalDeps              []string
	optionalDepsSet           bool
	excludeFeatures           []string
	excludeNoDefaultFeatures  bool
	excludeAllFeatures        bool
	includeFeatures           []string
	groupFeatures             []string
	mutuallyExclusiveFeatures []string
	atLeastOneOf              []string
	depth                     int
	ignoreUnknownFeatures     bool

	noDevDeps     bool
	removeDevDeps bool

	rustVersion  bool
	versionRange string
	versionStep  int
	latestMinor  int // stand-in for a toolchain-manager query, an external collaborator (Non-goal)

	cleanPerRun      bool
	cleanPerVersion  bool
	keepGoing        bool
	partition        string
	target           string
	printCommandList bool

	logGroup string
	explain  string
	progress string
}

func (c *CLI) hackCommand() *cobra.Command {
	f := &hackFlags{}

	cmd := &cobra.Command{
		Use:   "matrix [OPTIONS] [SUBCOMMAND]",
		Short: "Run SUBCOMMAND across package/feature/toolchain combinations",
		Long: `matrix runs cargo (or another builder) once per combination of workspace
package, feature selection, and Rust toolchain, restoring any manifest it
temporarily rewrites along the way.

cargo invokes this as "cargo matrix [OPTIONS] [SUBCOMMAND]", dispatching to
the cargo-matrix binary with "matrix" as the leading argument; this command
is named to match that convention.`,
		DisableFlagParsing: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHack(cmd, f, args)
		},
	}

	cmd.Flags().StringVar(&f.manifestPath, "manifest-path", "", "path to the workspace or package manifest")
	cmd.Flags().BoolVar(&f.noManifestPath, "no-manifest-path", false, "omit --manifest-path from the builder invocation")
	cmd.Flags().BoolVar(&f.locked, "locked", false, "pass --locked to the builder")

	cmd.Flags().StringSliceVarP(&f.packages, "package", "p", nil, "package(s) to operate on")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "package(s) to exclude")
	cmd.Flags().BoolVar(&f.workspaceAll, "workspace", false, "operate on every workspace member")
	cmd.Flags().BoolVar(&f.workspaceAll, "all", false, "alias for --workspace")
	cmd.Flags().BoolVar(&f.ignorePrivate, "ignore-private", false, "skip unpublished (private) packages")
	cmd.Flags().BoolVar(&f.noPrivate, "no-private", false, "alias for --ignore-private, requires --workspace")

	cmd.Flags().StringSliceVarP(&f.featureList, "features", "F", nil, "feature(s) to enable")
	cmd.Flags().BoolVar(&f.eachFeature, "each-feature", false, "run once per feature, plus the no-default and default runs")
	cmd.Flags().BoolVar(&f.featurePowerset, "feature-powerset", false, "run once per subset of the feature powerset")
	cmd.Flags().StringSliceVar(&f.optionalDeps, "optional-deps", nil, "restrict implicit-feature runs to these optional dependencies (bare flag means all)")
	cmd.Flags().StringSliceVar(&f.excludeFeatures, "exclude-features", nil, "feature(s) never selected")
	cmd.Flags().StringSliceVar(&f.excludeFeatures, "skip", nil, "alias for --exclude-features")
	cmd.Flags().BoolVar(&f.excludeNoDefaultFeatures, "exclude-no-default-features", false, "skip the --no-default-features run")
	cmd.Flags().BoolVar(&f.excludeAllFeatures, "exclude-all-features", false, "skip the --all-features run")
	cmd.Flags().StringSliceVar(&f.includeFeatures, "include-features", nil, "restrict the atom set to exactly these features")
	cmd.Flags().StringArrayVar(&f.groupFeatures, "group-features", nil, "comma-separated feature group, bundled as one atom (repeatable)")
	cmd.Flags().StringArrayVar(&f.mutuallyExclusiveFeatures, "mutually-exclusive-features", nil, "comma-separated feature family of which at most one may be selected (repeatable)")
	cmd.Flags().StringArrayVar(&f.atLeastOneOf, "at-least-one-of", nil, "comma-separated feature family of which at least one must be selected (repeatable)")
	cmd.Flags().IntVar(&f.depth, "depth", 0, "bound feature-powerset subset size, requires --feature-powerset")
	cmd.Flags().BoolVar(&f.ignoreUnknownFeatures, "ignore-unknown-features", false, "ignore --features naming an unknown feature instead of failing")

	cmd.Flags().BoolVar(&f.noDevDeps, "no-dev-deps", false, "temporarily remove dev-dependencies, restoring them afterward")
	cmd.Flags().BoolVar(&f.removeDevDeps, "remove-dev-deps", false, "permanently remove dev-dependencies")

	cmd.Flags().BoolVar(&f.rustVersion, "rust-version", false, "run once against each package's declared rust-version")
	cmd.Flags().StringVar(&f.versionRange, "version-range", "", "toolchain minor-version range, e.g. 1.60..1.75 or 1.60..=1.75")
	cmd.Flags().IntVar(&f.versionStep, "version-step", 1, "step between --version-range minors")
	cmd.Flags().IntVar(&f.latestMinor, "latest-minor", 0, "latest stable minor version, used to resolve an open-ended --version-range")

	cmd.Flags().BoolVar(&f.cleanPerRun, "clean-per-run", false, "run a package-scoped clean before every run")
	cmd.Flags().BoolVar(&f.cleanPerVersion, "clean-per-version", false, "clean when the toolchain changes, requires --version-range or --rust-version")
	cmd.Flags().BoolVar(&f.keepGoing, "keep-going", false, "continue past a failing run instead of stopping")
	cmd.Flags().StringVar(&f.partition, "partition", "", "run only the M/N-th slice of the plan, e.g. 1/3")
	cmd.Flags().StringVar(&f.target, "target", "", "builder --target triple")
	cmd.Flags().BoolVar(&f.printCommandList, "print-command-list", false, "print the run plan's command lines instead of executing them")

	cmd.Flags().StringVar(&f.logGroup, "log-group", "none", "progress-output grouping: none or github-actions")
	cmd.Flags().StringVar(&f.explain, "explain-features", "", "print the feature atom set and closures for a package and exit")
	cmd.Flags().StringVar(&f.progress, "progress", "plain", "progress display: plain, tui, or quiet")

	cmd.Flags().SetInterspersed(false)

	return cmd
}

func (c *CLI) runHack(cmd *cobra.Command, f *hackFlags, args []string) error {
	subcommand, leading, trailing := splitBuilderArgs(args)

	root, err := workspaceRoot(f.manifestPath)
	if err != nil {
		return err
	}

	adv, stalePID, err := lock.Acquire(root)
	if err != nil {
		return cmerrors.Wrap(cmerrors.CodeIO, err, "acquiring workspace lock")
	}
	defer adv.Release()
	if stalePID != 0 {
		c.Logger.Warnf("workspace lock already held (pid %d): a concurrent invocation may corrupt manifest restoration", stalePID)
	}

	_, ws, err := manifest.Parse(filepath.Join(root, "Cargo.toml"))
	if err != nil {
		return err
	}

	members, err := workspace.Discover(root, ws)
	if err != nil {
		return err
	}
	members, err = workspace.Resolve(members, workspace.Options{
		Packages:      f.packages,
		Exclude:       f.exclude,
		All:           f.workspaceAll,
		IgnorePrivate: f.ignorePrivate || f.noPrivate,
	})
	if err != nil {
		return err
	}

	if f.explain != "" {
		return c.explainFeatures(members, f)
	}

	f.optionalDepsSet = cmd.Flags().Changed("optional-deps")
	opts := f.toRunnerOptions(subcommand, leading, trailing)
	if err := opts.Validate(); err != nil {
		return err
	}

	r := runner.New(opts, c.Logger)
	r.LatestMinor = f.latestMinor

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	r.Guard = restore.NewGuard(r.Restore, cancel)

	switch f.progress {
	case "tui":
		stop := startTUI()
		defer stop()
	case "quiet":
		c.Logger.SetLevel(log.WarnLevel)
	case "plain", "":
		// default: Runner logs one line per run via c.Logger
	default:
		return cmerrors.New(cmerrors.CodeConfig, "unknown --progress %q", f.progress).
			WithHint("use one of plain, tui, quiet")
	}

	plan, err := r.BuildPlan(members)
	if err != nil {
		return err
	}

	stats, err := r.Execute(ctx, plan)
	if err != nil {
		return err
	}
	c.Logger.Infof("%d/%d runs completed", stats.Completed, stats.Total)
	return nil
}

func (f *hackFlags) toRunnerOptions(subcommand string, leading, trailing []string) *runner.Options {
	groups := splitGroups(f.groupFeatures)
	mutex := splitGroups(f.mutuallyExclusiveFeatures)
	atLeastOne := splitGroups(f.atLeastOneOf)

	logGroup := runner.LogGroupNone
	if f.logGroup == "github-actions" {
		logGroup = runner.LogGroupGitHubActions
	}

	return &runner.Options{
		Builder:        "cargo",
		Subcommand:     subcommand,
		LeadingFlags:   append(leading, targetFlag(f.target)...),
		TrailingArgs:   trailing,
		NoManifestPath: f.noManifestPath,
		Locked:         f.locked,

		Packages:      f.packages,
		Exclude:       f.exclude,
		Workspace:     f.workspaceAll,
		IgnorePrivate: f.ignorePrivate || f.noPrivate,
		NoPrivate:     f.noPrivate,

		Features:                  f.featureList,
		EachFeature:               f.eachFeature,
		FeaturePowerset:           f.featurePowerset,
		OptionalDeps:              f.optionalDeps,
		OptionalDepsSet:           f.optionalDepsSet,
		ExcludeFeatures:           f.excludeFeatures,
		ExcludeNoDefaultFeatures:  f.excludeNoDefaultFeatures,
		ExcludeAllFeatures:        f.excludeAllFeatures,
		IncludeFeatures:           f.includeFeatures,
		GroupFeatures:             groups,
		MutuallyExclusiveFeatures: mutex,
		AtLeastOneOfFeatures:      atLeastOne,
		Depth:                     f.depth,
		IgnoreUnknownFeatures:     f.ignoreUnknownFeatures,

		NoDevDeps:     f.noDevDeps,
		RemoveDevDeps: f.removeDevDeps,

		RustVersion:  f.rustVersion,
		VersionRange: f.versionRange,
		VersionStep:  f.versionStep,

		CleanPerRun:      f.cleanPerRun,
		CleanPerVersion:  f.cleanPerVersion,
		KeepGoing:        f.keepGoing,
		Partition:        f.partition,
		Target:           f.target,
		PrintCommandList: f.printCommandList,

		LogGroup: logGroup,
	}
}

func (c *CLI) explainFeatures(members []workspace.Member, f *hackFlags) error {
	var mem *workspace.Member
	for i := range members {
		if members[i].Package.Name == f.explain {
			mem = &members[i]
			break
		}
	}
	if mem == nil {
		return cmerrors.New(cmerrors.CodeNoMatchingPackage, "package %q not found for --explain-features", f.explain)
	}

	model := features.NewModel(mem.Package)
	fmt.Fprintf(os.Stdout, "explicit features: %s\n", strings.Join(model.ExplicitFeatures(), ", "))
	fmt.Fprintf(os.Stdout, "implicit features (optional deps): %s\n", strings.Join(model.ImplicitFeatures(), ", "))

	for _, name := range model.ExplicitFeatures() {
		cl := model.Close([]string{name})
		fmt.Fprintf(os.Stdout, "%s -> features: %s; deps: %s; dep/features: %s\n",
			name, joinKeys(cl.Features), joinKeys(cl.Deps), joinKeys(cl.DepFeatures))
	}
	return nil
}

func joinKeys(m map[string]bool) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return strings.Join(keys, ", ")
}

// splitBuilderArgs separates the leading subcommand (e.g. "check") from
// the flags that precede a "--" separator (forwarded to the builder
// verbatim before --manifest-path/--features etc.) and the args that
// follow it (forwarded after, as the builder's own "--" trailing args).
func splitBuilderArgs(args []string) (subcommand string, leading, trailing []string) {
	if len(args) == 0 {
		return "", nil, nil
	}
	subcommand = args[0]
	rest := args[1:]
	for i, a := range rest {
		if a == "--" {
			return subcommand, rest[:i], rest[i+1:]
		}
	}
	return subcommand, rest, nil
}

func splitGroups(raw []string) [][]string {
	var out [][]string
	for _, g := range raw {
		members := strings.Split(g, ",")
		out = append(out, members)
	}
	return out
}

func targetFlag(target string) []string {
	if target == "" {
		return nil
	}
	return []string{"--target", target}
}

// workspaceRoot resolves the directory containing the manifest to operate
// on: an explicit --manifest-path's directory, or the current directory.
func workspaceRoot(manifestPath string) (string, error) {
	if manifestPath == "" {
		dir, err := os.Getwd()
		if err != nil {
			return "", cmerrors.Wrap(cmerrors.CodeIO, err, "resolving working directory")
		}
		return dir, nil
	}
	return filepath.Dir(manifestPath), nil
}

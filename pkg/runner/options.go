package runner

import (
	"strings"

	cmerrors "github.com/crateforge/cargo-matrix/pkg/errors"
	"github.com/crateforge/cargo-matrix/pkg/features"
	"github.com/crateforge/cargo-matrix/pkg/version"
)

// LogGroup selects the progress-output grouping style (SPEC_FULL.md §4.7).
type LogGroup int

const (
	LogGroupNone LogGroup = iota
	LogGroupGitHubActions
)

// Options is the validated, defaulted configuration record the Runner
// consumes (SPEC_FULL.md §12). Flag parsing itself is an external
// collaborator; this struct is what a CLI layer builds and validates
// before handing it to the core.
type Options struct {
	// Builder invocation
	Builder      string // e.g. "cargo"
	Subcommand   string // "" means no subcommand: package-selection dry run
	LeadingFlags []string
	TrailingArgs []string
	NoManifestPath bool
	Locked         bool
	Verbose        bool

	// Package selection
	Packages      []string
	Exclude       []string
	Workspace     bool
	IgnorePrivate bool
	NoPrivate     bool

	// Feature model
	Features                 []string
	EachFeature               bool
	FeaturePowerset           bool
	OptionalDeps              []string
	OptionalDepsSet           bool
	ExcludeFeatures           []string
	ExcludeNoDefaultFeatures  bool
	ExcludeAllFeatures        bool
	IncludeFeatures           []string
	GroupFeatures             [][]string
	MutuallyExclusiveFeatures [][]string
	AtLeastOneOfFeatures      [][]string
	Depth                     int
	IgnoreUnknownFeatures     bool

	// Manifest edits
	NoDevDeps      bool
	RemoveDevDeps  bool

	// Versions
	RustVersion  bool
	VersionRange string
	VersionStep  int

	// Cleaning & control
	CleanPerRun     bool
	CleanPerVersion bool
	KeepGoing       bool
	Partition       string
	Target          string
	PrintCommandList bool

	// Diagnostics
	LogGroup LogGroup
}

// Validate performs the requires/conflicts cross-flag checks SPEC_FULL.md
// §12 calls out, returning a CodeConfig error with a corrective hint on
// the first violation found.
func (o *Options) Validate() error {
	if o.Depth > 0 && !o.FeaturePowerset {
		return cmerrors.New(cmerrors.CodeConfig, "--depth requires --feature-powerset").
			WithHint("add --feature-powerset")
	}
	if o.EachFeature && o.FeaturePowerset {
		return cmerrors.New(cmerrors.CodeConfig, "--each-feature conflicts with --feature-powerset").
			WithHint("pass only one of --each-feature or --feature-powerset")
	}
	if o.NoDevDeps && o.RemoveDevDeps {
		return cmerrors.New(cmerrors.CodeConfig, "--no-dev-deps conflicts with --remove-dev-deps").
			WithHint("pass only one of --no-dev-deps or --remove-dev-deps")
	}
	if o.RustVersion && o.VersionRange != "" {
		return cmerrors.New(cmerrors.CodeConfig, "--rust-version conflicts with --version-range").
			WithHint("pass only one of --rust-version or --version-range")
	}
	if o.CleanPerVersion && o.VersionRange == "" && !o.RustVersion {
		return cmerrors.New(cmerrors.CodeConfig, "--clean-per-version requires --version-range or --rust-version").
			WithHint("add --version-range or --rust-version")
	}
	if len(o.Packages) > 0 && o.Workspace {
		return cmerrors.New(cmerrors.CodeConfig, "-p/--package conflicts with --workspace/--all").
			WithHint("pass only one of -p or --workspace")
	}
	if o.NoPrivate && !o.Workspace {
		return cmerrors.New(cmerrors.CodeConfig, "--no-private requires --workspace").
			WithHint("add --workspace")
	}
	if o.VersionStep < 0 {
		return cmerrors.New(cmerrors.CodeConfig, "--version-step must not be negative")
	}
	return nil
}

// EnumeratorOptions projects the Runner-level flags onto the narrower
// features.Options the Combination Enumerator consumes.
func (o *Options) EnumeratorOptions() features.Options {
	mode := features.ModeNone
	switch {
	case o.EachFeature:
		mode = features.ModeEachFeature
	case o.FeaturePowerset:
		mode = features.ModeFeaturePowerset
	}

	var optionalDeps []string
	if o.OptionalDepsSet {
		optionalDeps = o.OptionalDeps
		if optionalDeps == nil {
			optionalDeps = []string{}
		}
	}

	groups := map[string][]string{}
	for _, g := range o.GroupFeatures {
		if len(g) == 0 {
			continue
		}
		groups[strings.Join(g, "+")] = g
	}

	return features.Options{
		Mode:                     mode,
		IncludeFeatures:          o.IncludeFeatures,
		ExcludeFeatures:          o.ExcludeFeatures,
		ExcludeNoDefaultFeatures: o.ExcludeNoDefaultFeatures,
		ExcludeAllFeatures:       o.ExcludeAllFeatures,
		OptionalDeps:             optionalDeps,
		Groups:                   groups,
		MutuallyExclusive:        o.MutuallyExclusiveFeatures,
		AtLeastOneOf:             o.AtLeastOneOfFeatures,
		Depth:                    o.Depth,
	}
}

// ParsePartition parses "M/N" per SPEC_FULL.md §4.7.
func ParsePartition(s string) (m, n int, err error) {
	if s == "" {
		return 0, 0, nil
	}
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, 0, cmerrors.New(cmerrors.CodeBadPartition, "malformed --partition %q", s).
			WithHint("use the form M/N, e.g. 1/3")
	}
	m, errM := parsePositiveInt(parts[0])
	n, errN := parsePositiveInt(parts[1])
	if errM != nil || errN != nil || m < 1 || n < 1 || m > n {
		return 0, 0, cmerrors.New(cmerrors.CodeBadPartition, "partition %q out of range: want 1<=M<=N", s).
			WithHint("use the form M/N with 1<=M<=N")
	}
	return m, n, nil
}

func parsePositiveInt(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, cmerrors.New(cmerrors.CodeBadPartition, "empty partition component")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, cmerrors.New(cmerrors.CodeBadPartition, "non-numeric partition component %q", s)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

// versionPlan resolves the requested version plan into toolchain
// identifiers, per SPEC_FULL.md §4.5.
func versionPlan(o *Options, minRustVersion string, latestMinor int) ([]string, error) {
	if o.RustVersion {
		return []string{minRustVersion}, nil
	}
	if o.VersionRange == "" {
		return nil, nil
	}
	r, err := version.ParseRange(o.VersionRange)
	if err != nil {
		return nil, err
	}
	minors, err := version.Plan(r, o.VersionStep, latestMinor)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(minors))
	for i, m := range minors {
		ids[i] = version.Identifier(m)
	}
	return ids, nil
}

// Package manifest parses the subset of a Cargo-style package manifest that
// the feature-combination core needs: the feature table, the dependency
// tables (including target-conditional ones), and the handful of
// [package]/[workspace] fields that drive package selection.
//
// Parsing is read-only and decode-oriented, built on BurntSushi/toml.
// In-place, format-preserving rewrites are handled separately by
// [EditBuffer], since no decode-then-encode round trip can be trusted to
// preserve a hand-edited manifest's comments and layout.
package manifest

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	cmerrors "github.com/crateforge/cargo-matrix/pkg/errors"
)

// Dependency describes one entry of a dependency table.
type Dependency struct {
	// LocalName is the table key, i.e. the identifier used by feature
	// activators (`dep:LocalName`, `LocalName/feat`, `LocalName?/feat`).
	LocalName string
	// PackageName is the real crate name, taken from an explicit
	// `package = "..."` field when the dependency is renamed; otherwise
	// equal to LocalName.
	PackageName string
	Optional    bool
}

// TargetTable identifies a target-conditional dependency section, e.g.
// `target.'cfg(unix)'.dev-dependencies`.
type TargetTable struct {
	Cfg  string
	Kind string // "dependencies", "dev-dependencies", "build-dependencies"
}

// Package is the parsed, immutable view of a single manifest.
type Package struct {
	Name         string
	ManifestPath string

	// Publish is false when `publish = false` is literal or when publish is
	// an empty registry array; an absent field or a non-empty registry array
	// both mean "publishable".
	Publish bool

	RustVersion string

	Dependencies      map[string]Dependency
	DevDependencies   map[string]Dependency
	BuildDependencies map[string]Dependency
	TargetDevDeps     []TargetTable

	// Features maps a declared feature name to its ordered activator list.
	Features map[string][]Activator

	// Namespaced is true when any feature value contains a `dep:` token.
	// Implicit-feature suppression does not read this flag: the Feature
	// Model derives it per dependency from the activator tokens.
	Namespaced bool
}

// Workspace is the parsed [workspace] table of a root manifest.
type Workspace struct {
	Members []string
	Exclude []string
}

// ActivatorKind distinguishes the three forms a feature value entry can take.
type ActivatorKind int

const (
	// ActivatorFeature activates another feature of the same package.
	ActivatorFeature ActivatorKind = iota
	// ActivatorDep is the `dep:name` form: activates an optional
	// dependency without creating an implicit feature for it.
	ActivatorDep
	// ActivatorDepFeature is the `dep/feat` or weak `dep?/feat` form.
	ActivatorDepFeature
)

// Activator is one parsed entry of a feature's activator list.
type Activator struct {
	Kind ActivatorKind

	// Feature holds the target feature name for ActivatorFeature.
	Feature string

	// Dep holds the dependency's LocalName for ActivatorDep and
	// ActivatorDepFeature.
	Dep string

	// DepFeature holds the activated feature of Dep for ActivatorDepFeature.
	DepFeature string

	// Weak is set for the `dep?/feat` form: feat of Dep is activated only
	// if Dep is separately activated by some other means.
	Weak bool
}

// ParseActivator parses a single raw feature-value token.
func ParseActivator(tok string) (Activator, error) {
	switch {
	case strings.HasPrefix(tok, "dep:"):
		name := strings.TrimPrefix(tok, "dep:")
		if name == "" {
			return Activator{}, fmt.Errorf("empty dep: token")
		}
		return Activator{Kind: ActivatorDep, Dep: name}, nil
	case strings.Contains(tok, "/"):
		weak := strings.Contains(tok, "?/")
		sep := "/"
		if weak {
			sep = "?/"
		}
		parts := strings.SplitN(tok, sep, 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return Activator{}, fmt.Errorf("malformed dependency-feature token %q", tok)
		}
		return Activator{Kind: ActivatorDepFeature, Dep: parts[0], DepFeature: parts[1], Weak: weak}, nil
	default:
		if tok == "" {
			return Activator{}, fmt.Errorf("empty feature token")
		}
		return Activator{Kind: ActivatorFeature, Feature: tok}, nil
	}
}

// rawManifest mirrors the subset of Cargo.toml's shape this package reads.
// Dependency tables are decoded generically because entries may be either
// a bare version string or an inline table.
type rawManifest struct {
	Package struct {
		Name        string      `toml:"name"`
		Publish     toml.Primitive `toml:"publish"`
		RustVersion string      `toml:"rust-version"`
	} `toml:"package"`
	Features          map[string][]string       `toml:"features"`
	Dependencies      map[string]toml.Primitive `toml:"dependencies"`
	DevDependencies   map[string]toml.Primitive `toml:"dev-dependencies"`
	BuildDependencies map[string]toml.Primitive `toml:"build-dependencies"`
	Target            map[string]struct {
		Dependencies      map[string]toml.Primitive `toml:"dependencies"`
		DevDependencies   map[string]toml.Primitive `toml:"dev-dependencies"`
		BuildDependencies map[string]toml.Primitive `toml:"build-dependencies"`
	} `toml:"target"`
	Workspace struct {
		Members []string `toml:"members"`
		Exclude []string `toml:"exclude"`
	} `toml:"workspace"`
}

// Parse reads and parses the manifest at path.
func Parse(path string) (*Package, *Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, cmerrors.Wrap(cmerrors.CodeIO, err, "reading manifest %s", path)
	}
	return ParseBytes(data, path)
}

// ParseBytes parses manifest content already read from path (used so the
// CLI and the edit buffer can share one read of the file).
func ParseBytes(data []byte, path string) (*Package, *Workspace, error) {
	var raw rawManifest
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, nil, cmerrors.Wrap(cmerrors.CodeMalformedManifest, err, "parsing manifest %s", path)
	}

	pkg := &Package{
		Name:              raw.Package.Name,
		ManifestPath:      path,
		RustVersion:       raw.Package.RustVersion,
		Publish:           decodePublish(meta, raw.Package.Publish),
		Dependencies:      decodeDepTable(meta, raw.Dependencies),
		DevDependencies:   decodeDepTable(meta, raw.DevDependencies),
		BuildDependencies: decodeDepTable(meta, raw.BuildDependencies),
		Features:          map[string][]Activator{},
	}

	for cfg, tables := range raw.Target {
		if len(tables.DevDependencies) > 0 {
			pkg.TargetDevDeps = append(pkg.TargetDevDeps, TargetTable{Cfg: cfg, Kind: "dev-dependencies"})
		}
	}
	sort.Slice(pkg.TargetDevDeps, func(i, j int) bool { return pkg.TargetDevDeps[i].Cfg < pkg.TargetDevDeps[j].Cfg })

	for name, toks := range raw.Features {
		acts := make([]Activator, 0, len(toks))
		for _, tok := range toks {
			if tok == "" {
				continue
			}
			a, err := ParseActivator(tok)
			if err != nil {
				return nil, nil, cmerrors.Wrap(cmerrors.CodeMalformedManifest, err, "feature %q in %s", name, path)
			}
			if a.Kind == ActivatorDep {
				pkg.Namespaced = true
			}
			acts = append(acts, a)
		}
		pkg.Features[name] = acts
	}

	var ws *Workspace
	if len(raw.Workspace.Members) > 0 || len(raw.Workspace.Exclude) > 0 {
		ws = &Workspace{Members: raw.Workspace.Members, Exclude: raw.Workspace.Exclude}
	}

	return pkg, ws, nil
}

// decodePublish resolves the `publish` field: absent or `true` means
// publishable, a literal `false` means private, and a registry array
// (even empty, per Cargo's own rule an empty array is equivalent to
// `false`) is publishable only when non-empty.
func decodePublish(meta toml.MetaData, prim toml.Primitive) bool {
	if !meta.IsDefined("package", "publish") {
		return true
	}
	var asBool bool
	if err := meta.PrimitiveDecode(prim, &asBool); err == nil {
		return asBool
	}
	var asList []string
	if err := meta.PrimitiveDecode(prim, &asList); err == nil {
		return len(asList) > 0
	}
	return true
}

func decodeDepTable(meta toml.MetaData, raw map[string]toml.Primitive) map[string]Dependency {
	out := make(map[string]Dependency, len(raw))
	for name, prim := range raw {
		dep := Dependency{LocalName: name, PackageName: name}

		var asString string
		if err := meta.PrimitiveDecode(prim, &asString); err == nil {
			out[name] = dep
			continue
		}

		var asTable struct {
			Optional bool   `toml:"optional"`
			Package  string `toml:"package"`
		}
		if err := meta.PrimitiveDecode(prim, &asTable); err == nil {
			dep.Optional = asTable.Optional
			if asTable.Package != "" {
				dep.PackageName = asTable.Package
			}
		}
		out[name] = dep
	}
	return out
}

// OptionalDeps returns the LocalNames of optional normal dependencies, in
// sorted order, for implicit-feature generation.
func (p *Package) OptionalDeps() []string {
	var names []string
	for name, d := range p.Dependencies {
		if d.Optional {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

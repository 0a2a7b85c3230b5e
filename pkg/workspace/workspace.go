// Package workspace implements the Workspace Resolver (SPEC_FULL.md §4.2):
// turning a root manifest's [workspace] table and the CLI's package
// selection flags into the ordered list of packages to operate on.
//
// Resolving the actual build-graph metadata (equivalent to `cargo
// metadata`) is explicitly out of scope (SPEC_FULL.md §1/§2): that query is
// an external collaborator. This package instead discovers workspace
// members directly from the manifests on disk, which is sufficient for
// package selection and is what the Manifest Model already parses.
package workspace

import (
	"path/filepath"
	"sort"

	cmerrors "github.com/crateforge/cargo-matrix/pkg/errors"
	"github.com/crateforge/cargo-matrix/pkg/manifest"
)

// Member is one resolved workspace package.
type Member struct {
	Package *manifest.Package
	Dir     string // directory containing the package's manifest
}

// Options mirrors the package-selection flags of SPEC_FULL.md §6.
type Options struct {
	Packages       []string // -p/--package
	Exclude        []string // --exclude
	All            bool     // --workspace/--all
	IgnorePrivate  bool
	CurrentPackage string // resolved current package name, used when !All
}

// Discover expands a workspace's glob [workspace.members] patterns
// (relative to root) into manifest directories, parses each one, and
// returns them alongside the root package itself (the root manifest may
// also declare a package, in the common "workspace root is also a crate"
// layout).
func Discover(rootDir string, ws *manifest.Workspace) ([]Member, error) {
	seen := map[string]bool{}
	var members []Member

	rootManifest := filepath.Join(rootDir, "Cargo.toml")
	if pkg, _, err := manifest.Parse(rootManifest); err == nil && pkg.Name != "" {
		members = append(members, Member{Package: pkg, Dir: rootDir})
		seen[rootDir] = true
	}

	if ws == nil {
		return members, nil
	}

	excluded := map[string]bool{}
	for _, e := range ws.Exclude {
		if err := cmerrors.ValidatePath(e); err != nil {
			return nil, cmerrors.Wrap(cmerrors.CodeMalformedManifest, err, "workspace.exclude entry %q", e)
		}
		excluded[filepath.Clean(filepath.Join(rootDir, e))] = true
	}

	for _, pattern := range ws.Members {
		dirs, err := filepath.Glob(filepath.Join(rootDir, pattern))
		if err != nil {
			return nil, cmerrors.Wrap(cmerrors.CodeMalformedManifest, err, "expanding workspace member glob %q", pattern)
		}
		sort.Strings(dirs)
		for _, dir := range dirs {
			dir = filepath.Clean(dir)
			if seen[dir] || excluded[dir] {
				continue
			}
			manifestPath := filepath.Join(dir, "Cargo.toml")
			pkg, _, err := manifest.Parse(manifestPath)
			if err != nil {
				return nil, err
			}
			members = append(members, Member{Package: pkg, Dir: dir})
			seen[dir] = true
		}
	}
	return members, nil
}

// Resolve filters discovered members according to opts, in discovery order,
// as described in SPEC_FULL.md §4.2.
func Resolve(members []Member, opts Options) ([]Member, error) {
	byName := map[string]Member{}
	for _, m := range members {
		byName[m.Package.Name] = m
	}

	var base []Member
	switch {
	case len(opts.Packages) > 0:
		for _, spec := range opts.Packages {
			if err := cmerrors.ValidatePackageName(spec); err != nil {
				return nil, err
			}
		}
		want := toSet(opts.Packages)
		for _, m := range members {
			if want[m.Package.Name] {
				base = append(base, m)
			}
		}
		if len(base) == 0 {
			return nil, cmerrors.New(cmerrors.CodeNoMatchingPackage,
				"package ID specification %q matched no packages", joinSpecs(opts.Packages))
		}
	case opts.All:
		base = members
	case opts.CurrentPackage != "":
		if m, ok := byName[opts.CurrentPackage]; ok {
			base = []Member{m}
		}
	default:
		base = members
	}

	exclude := toSet(opts.Exclude)
	var out []Member
	for _, m := range base {
		if exclude[m.Package.Name] {
			continue
		}
		if opts.IgnorePrivate && !m.Package.Publish {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func joinSpecs(specs []string) string {
	out := specs[0]
	for _, s := range specs[1:] {
		out += ", " + s
	}
	return out
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, i := range items {
		out[i] = true
	}
	return out
}

// Package features implements the Feature Model and the Combination
// Enumerator: deriving a package's explicit/implicit features and their
// activation closures, and generating the de-duplicated sequence of
// feature sets a run plan should exercise.
//
// This is the hard core of the tool (see SPEC_FULL.md §2.4): it is grounded
// directly on original_source/src/features.rs, down to the powerset
// generation order, the dependency-subsumption filter, and the
// at-least-one-of filter.
package features

import (
	"sort"

	"github.com/crateforge/cargo-matrix/pkg/manifest"
)

// Model is the derived feature view of one package.
type Model struct {
	pkg *manifest.Package

	// explicit is the set of features declared in [features].
	explicit map[string]bool

	// implicit maps an implicit feature name (the dependency's local name)
	// to the optional dependency it activates. A dependency only appears
	// here when it is not suppressed by namespacing.
	implicit map[string]string
}

// NewModel derives the feature model for pkg. Every optional dependency
// referenced anywhere via a `dep:name` or `name/feat`/`name?/feat` token
// (collected by namespacedDeps) does not get an auto-generated implicit
// feature.
func NewModel(pkg *manifest.Package) *Model {
	explicit := make(map[string]bool, len(pkg.Features))
	for name := range pkg.Features {
		explicit[name] = true
	}

	suppressed := namespacedDeps(pkg)
	implicit := map[string]string{}
	for _, dep := range pkg.OptionalDeps() {
		if suppressed[dep] {
			continue
		}
		implicit[dep] = dep
	}

	return &Model{pkg: pkg, explicit: explicit, implicit: implicit}
}

// namespacedDeps returns the set of optional dependency LocalNames that are
// referenced anywhere via `dep:name` or `name/feat` syntax, and therefore
// do not get an implicit feature of their own.
func namespacedDeps(pkg *manifest.Package) map[string]bool {
	out := map[string]bool{}
	for _, acts := range pkg.Features {
		for _, a := range acts {
			switch a.Kind {
			case manifest.ActivatorDep:
				out[a.Dep] = true
			case manifest.ActivatorDepFeature:
				out[a.Dep] = true
			}
		}
	}
	return out
}

// ExplicitFeatures returns the sorted names of declared features.
func (m *Model) ExplicitFeatures() []string {
	return sortedKeys(m.explicit)
}

// ImplicitFeatures returns the sorted names of auto-generated
// optional-dependency features.
func (m *Model) ImplicitFeatures() []string {
	return sortedKeys(toBoolSet(m.implicit))
}

// HasFeature reports whether name is explicit or implicit.
func (m *Model) HasFeature(name string) bool {
	return m.explicit[name] || m.implicit[name] != ""
}

// Closure is the Effective Feature Set of a feature selection: every
// feature transitively activated, every optional dependency activated
// (directly via `dep:name`, implicitly via its feature, or via a
// non-weak `name/feat`), and every `dep/feat` pair activated (weak or
// not).
type Closure struct {
	Features    map[string]bool
	Deps        map[string]bool
	DepFeatures map[string]bool
}

func newClosure() Closure {
	return Closure{Features: map[string]bool{}, Deps: map[string]bool{}, DepFeatures: map[string]bool{}}
}

// Close computes the closure of a starting feature selection.
func (m *Model) Close(selected []string) Closure {
	cl := newClosure()
	queue := append([]string(nil), selected...)
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if cl.Features[f] {
			continue
		}
		cl.Features[f] = true

		if dep, ok := m.implicit[f]; ok {
			cl.Deps[dep] = true
		}
		for _, a := range m.pkg.Features[f] {
			switch a.Kind {
			case manifest.ActivatorFeature:
				if !cl.Features[a.Feature] {
					queue = append(queue, a.Feature)
				}
			case manifest.ActivatorDep:
				cl.Deps[a.Dep] = true
			case manifest.ActivatorDepFeature:
				cl.DepFeatures[a.Dep+"/"+a.DepFeature] = true
				if !a.Weak {
					cl.Deps[a.Dep] = true
				}
			}
		}
	}
	return cl
}

// FeatureClosure computes the transitive feature-only closure of a single
// feature, following ActivatorFeature edges alone and skipping `dep:`
// tokens. This is the narrower closure the dependency-subsumption filter
// in [Enumerate] uses, grounded on original_source's feature_deps(), which
// builds this same feature-to-feature implication map excluding dep:
// tokens so that activating a bare optional dependency never by itself
// makes two feature selections look different.
func (m *Model) FeatureClosure(name string) map[string]bool {
	out := map[string]bool{}
	queue := []string{name}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if out[f] {
			continue
		}
		out[f] = true
		for _, a := range m.pkg.Features[f] {
			if a.Kind == manifest.ActivatorFeature && !out[a.Feature] {
				queue = append(queue, a.Feature)
			}
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func toBoolSet(m map[string]string) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

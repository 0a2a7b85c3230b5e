package features

import "sort"

// Mode selects which family of feature sets the enumerator generates
// beyond the three distinguished runs.
type Mode int

const (
	// ModeNone enumerates no powerset/each-feature runs.
	ModeNone Mode = iota
	// ModeEachFeature runs the empty set and every singleton.
	ModeEachFeature
	// ModeFeaturePowerset runs every subset up to Options.Depth (or all
	// atoms, if Depth is 0).
	ModeFeaturePowerset
)

// Kind distinguishes the four run shapes a Combination can take.
type Kind int

const (
	KindNoDefault Kind = iota
	KindDefault
	KindExplicit
	KindAllFeatures
)

// Combination is one feature selection the Runner should exercise.
type Combination struct {
	Kind      Kind
	NoDefault bool
	// Features holds the sorted atom names selected for KindExplicit runs
	// (groups are not yet expanded to their members; that happens at
	// command-construction time in pkg/runner).
	Features []string
}

// Options configures the enumerator. See SPEC_FULL.md §4.4.
type Options struct {
	Mode Mode

	IncludeFeatures []string
	ExcludeFeatures []string

	ExcludeNoDefaultFeatures bool
	ExcludeAllFeatures       bool

	// OptionalDeps, when non-nil, enables implicit-feature runs. An empty
	// (non-nil) slice means "all optional dependencies"; a populated
	// slice restricts to the named dependencies.
	OptionalDeps []string

	// Groups maps a synthetic group name to its member atom names. Group
	// members are removed from the base atom set and replace it with the
	// group name as a single atom.
	Groups map[string][]string

	MutuallyExclusive [][]string
	AtLeastOneOf      [][]string

	// Depth bounds feature-powerset subset size. 0 means unbounded.
	Depth int
}

// atomSet computes the enumerator's universe of atoms (§4.4).
func atomSet(m *Model, opts Options) []string {
	if len(opts.IncludeFeatures) > 0 {
		return dedupSorted(opts.IncludeFeatures)
	}

	excluded := toSet(opts.ExcludeFeatures)
	set := map[string]bool{}
	for _, f := range m.ExplicitFeatures() {
		if !excluded[f] {
			set[f] = true
		}
	}

	if opts.OptionalDeps != nil {
		allowed := toSet(opts.OptionalDeps)
		restrict := len(opts.OptionalDeps) > 0
		for _, f := range m.ImplicitFeatures() {
			if excluded[f] {
				continue
			}
			if restrict && !allowed[f] {
				continue
			}
			set[f] = true
		}
	}

	absorbed := map[string]bool{}
	for _, members := range opts.Groups {
		for _, mem := range members {
			absorbed[mem] = true
		}
	}
	for mem := range absorbed {
		delete(set, mem)
	}
	for g := range opts.Groups {
		if !excluded[g] {
			set[g] = true
		}
	}

	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Expand replaces any group atoms in sel with their member features,
// de-duplicating and sorting the result. Used when computing closures and
// filters, and by the Runner when materializing --features: a
// Combination's Features holds unexpanded group atoms (SPEC_FULL.md §4.4),
// and the Runner must expand them to real feature names before appending
// them to the builder invocation.
func Expand(sel []string, groups map[string][]string) []string {
	set := map[string]bool{}
	for _, s := range sel {
		if members, ok := groups[s]; ok {
			for _, mm := range members {
				set[mm] = true
			}
			continue
		}
		set[s] = true
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Enumerate produces the ordered, filtered, de-duplicated sequence of
// Combinations for one package, per SPEC_FULL.md §4.4.
func Enumerate(m *Model, opts Options) []Combination {
	atoms := atomSet(m, opts)
	excluded := toSet(opts.ExcludeFeatures)
	overridden := len(opts.IncludeFeatures) > 0

	var out []Combination
	seenClosures := map[string]bool{}

	closureKey := func(sel []string) string {
		cl := m.Close(Expand(sel, opts.Groups))
		return encodeClosure(cl)
	}

	if !opts.ExcludeNoDefaultFeatures && !overridden {
		out = append(out, Combination{Kind: KindNoDefault, NoDefault: true})
		seenClosures[closureKey(nil)] = true
	}

	defSel := []string{}
	if m.HasFeature("default") {
		defSel = []string{"default"}
	}
	if key := closureKey(defSel); !seenClosures[key] {
		out = append(out, Combination{Kind: KindDefault})
		seenClosures[key] = true
	}

	subsets := generateSubsets(atoms, opts.Mode, opts.Depth)
	for _, subset := range subsets {
		if len(subset) == 0 {
			continue
		}
		if violatesMutex(subset, opts.MutuallyExclusive, m, opts.Groups) {
			continue
		}
		if violatesAtLeastOneOf(subset, opts.AtLeastOneOf, m, opts.Groups) {
			continue
		}
		if isSubsumed(subset, atoms, excluded, m) {
			continue
		}
		key := closureKey(subset)
		if seenClosures[key] {
			continue
		}
		seenClosures[key] = true
		out = append(out, Combination{Kind: KindExplicit, Features: append([]string(nil), subset...)})
	}

	if shouldEmitAllFeatures(opts, atoms, overridden, m.pkg.Namespaced) {
		key := closureKey(atoms)
		if !seenClosures[key] {
			out = append(out, Combination{Kind: KindAllFeatures})
			seenClosures[key] = true
		}
	}

	return out
}

func shouldEmitAllFeatures(opts Options, atoms []string, overridden, namespaced bool) bool {
	if opts.ExcludeAllFeatures || overridden || len(atoms) <= 1 {
		return false
	}
	if len(opts.ExcludeFeatures) > 0 {
		return false
	}
	switch opts.Mode {
	case ModeEachFeature:
		return true
	case ModeFeaturePowerset:
		return opts.Depth > 0 || namespaced
	default:
		return false
	}
}

// generateSubsets returns the candidate subsets for the chosen mode, in
// deterministic order: ascending by size, lexicographic by member within
// a size class. The empty subset is always included so callers can rely on
// position 0 meaning "no atoms selected" and skip it uniformly.
func generateSubsets(atoms []string, mode Mode, depth int) [][]string {
	switch mode {
	case ModeEachFeature:
		subsets := [][]string{{}}
		for _, a := range atoms {
			subsets = append(subsets, []string{a})
		}
		return subsets
	case ModeFeaturePowerset:
		max := len(atoms)
		if depth > 0 && depth < max {
			max = depth
		}
		return powerset(atoms, max)
	default:
		return nil
	}
}

// powerset returns every subset of atoms with size 0..=maxSize, ordered by
// ascending size then lexicographically, mirroring the depth-bounded
// powerset generation in original_source's features::feature_powerset.
func powerset(atoms []string, maxSize int) [][]string {
	n := len(atoms)
	var out [][]string
	var build func(start int, cur []string)
	build = func(start int, cur []string) {
		out = append(out, append([]string{}, cur...))
		if len(cur) == maxSize {
			return
		}
		for i := start; i < n; i++ {
			build(i+1, append(cur, atoms[i]))
		}
	}
	// Emit size classes in order rather than depth-first, so output is
	// grouped ascending by subset size.
	bySize := map[int][][]string{}
	build(0, nil)
	for _, s := range out {
		bySize[len(s)] = append(bySize[len(s)], s)
	}
	var ordered [][]string
	for size := 0; size <= maxSize; size++ {
		group := bySize[size]
		sort.Slice(group, func(i, j int) bool { return lessLex(group[i], group[j]) })
		ordered = append(ordered, group...)
	}
	return ordered
}

func lessLex(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// isSubsumed reports whether subset is redundant because some
// non-excluded atom not already in it would leave the feature-only
// closure unchanged — i.e. a larger subset already covers its effect, so
// running subset separately tells us nothing new.
func isSubsumed(subset, atoms []string, excluded map[string]bool, m *Model) bool {
	in := toSet(subset)
	base := featureOnlyClosure(subset, m)
	for _, f := range atoms {
		if in[f] || excluded[f] {
			continue
		}
		withF := featureOnlyClosure(append(append([]string(nil), subset...), f), m)
		if sameSet(base, withF) {
			return true
		}
	}
	return false
}

func featureOnlyClosure(sel []string, m *Model) map[string]bool {
	out := map[string]bool{}
	for _, f := range sel {
		for k := range m.FeatureClosure(f) {
			out[k] = true
		}
	}
	return out
}

func violatesMutex(subset []string, families [][]string, m *Model, groups map[string][]string) bool {
	if len(families) == 0 {
		return false
	}
	cl := m.Close(Expand(subset, groups)).Features
	for _, family := range families {
		count := 0
		for _, f := range family {
			if cl[f] {
				count++
			}
		}
		if count >= 2 {
			return true
		}
	}
	return false
}

func violatesAtLeastOneOf(subset []string, families [][]string, m *Model, groups map[string][]string) bool {
	if len(families) == 0 {
		return false
	}
	cl := m.Close(Expand(subset, groups)).Features
	for _, family := range families {
		hit := false
		for _, f := range family {
			if cl[f] {
				hit = true
				break
			}
		}
		if !hit {
			return true
		}
	}
	return false
}

func encodeClosure(cl Closure) string {
	return setKey(cl.Features) + "|" + setKey(cl.Deps) + "|" + setKey(cl.DepFeatures)
}

func setKey(m map[string]bool) string {
	keys := sortedKeys(m)
	out := ""
	for _, k := range keys {
		out += k + ","
	}
	return out
}

func sameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, i := range items {
		if i != "" {
			out[i] = true
		}
	}
	return out
}

func dedupSorted(items []string) []string {
	set := toSet(items)
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Package version implements the Version Planner (SPEC_FULL.md §4.5):
// expanding a requested range of toolchain minor versions into the
// ordered list of identifiers the Runner should iterate.
package version

import (
	"fmt"
	"strconv"
	"strings"

	cmerrors "github.com/crateforge/cargo-matrix/pkg/errors"
)

// Range is a parsed --version-range value, e.g. "1.60..1.75" or
// "1.60..=1.75". Start and End are minor version numbers; End of -1 means
// "open ended, resolve to the latest known stable at plan time".
type Range struct {
	Start int
	End   int
}

// ParseRange parses the `[S]..[=E]` syntax. A missing start parses as minor
// 0 and a missing end as -1 (open ended); a bare ".." is accepted and gives
// Range{Start: 0, End: -1}.
func ParseRange(s string) (Range, error) {
	inclusive := strings.Contains(s, "..=")
	sep := ".."
	if inclusive {
		sep = "..="
	}
	parts := strings.SplitN(s, sep, 2)
	if len(parts) != 2 {
		return Range{}, cmerrors.New(cmerrors.CodeConfig, "malformed --version-range %q", s).
			WithHint("use the form START..END or START..=END")
	}

	r := Range{End: -1}
	if parts[0] != "" {
		v, err := parseMinor(parts[0])
		if err != nil {
			return Range{}, cmerrors.Wrap(cmerrors.CodeConfig, err, "malformed --version-range start %q", parts[0])
		}
		r.Start = v
	}
	if parts[1] != "" {
		v, err := parseMinor(parts[1])
		if err != nil {
			return Range{}, cmerrors.Wrap(cmerrors.CodeConfig, err, "malformed --version-range end %q", parts[1])
		}
		// The exclusive ".." form is accepted for backward
		// compatibility but treated as inclusive, matching the
		// deprecation the original tool carries.
		r.End = v
	}
	return r, nil
}

// parseMinor parses a toolchain bound in "major.minor" form (e.g. "1.60"),
// grounded on original_source's version::parse_version + rustup::version_range
// check(): major must be 1, and only the minor number is kept, since
// --version-range always resolves to the latest patch of a minor release.
func parseMinor(s string) (int, error) {
	parts := strings.SplitN(s, ".", 3)
	if len(parts) < 2 {
		return 0, fmt.Errorf("expected major.minor (e.g. 1.60), got %q", s)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid major version in %q: %w", s, err)
	}
	if major != 1 {
		return 0, fmt.Errorf("major version must be 1, got %q", s)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minor version in %q: %w", s, err)
	}
	return minor, nil
}

// Plan expands r into the ascending, step-spaced list of minor versions.
// latest is substituted for an open-ended r.End.
func Plan(r Range, step, latest int) ([]int, error) {
	if step <= 0 {
		step = 1
	}
	end := r.End
	if end < 0 {
		end = latest
	}
	if r.Start > end {
		return nil, cmerrors.New(cmerrors.CodeConfig, "version range start %d is after end %d", r.Start, end)
	}
	var out []int
	for v := r.Start; v <= end; v += step {
		out = append(out, v)
	}
	return out, nil
}

// Identifier renders a minor version as a toolchain identifier string
// (e.g. 74 -> "1.74").
func Identifier(minor int) string {
	return fmt.Sprintf("1.%d", minor)
}

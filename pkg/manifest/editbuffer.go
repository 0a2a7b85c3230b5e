package manifest

import (
	"bufio"
	"regexp"
	"strings"
)

// EditBuffer is a line-oriented, format-preserving view of a manifest's raw
// bytes. It supports exactly the edits the Manifest Rewriter needs
// (§4.1/§4.6): stripping dev-dependency tables, and relocating private
// workspace members into `exclude`. Lines the edits do not touch —
// comments, blank lines, quoting style, inline-table formatting — are kept
// as they were, except that line endings are always written as "\n"; the
// members and exclude lines that RemovePrivateMembers rewrites are
// re-rendered with double-quoted entries.
//
// This is a standard-library-only component: no third-party library in the
// example pack offers a format-preserving (as opposed to decode/re-encode)
// TOML editor, so the edits below operate directly on the line stream the
// way the original tool's toml_edit-based editor does conceptually, just
// without a parse tree.
type EditBuffer struct {
	lines []string
}

// NewEditBuffer wraps raw manifest bytes for editing.
func NewEditBuffer(data []byte) *EditBuffer {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return &EditBuffer{lines: lines}
}

// Bytes renders the current buffer content, newline-terminated.
func (b *EditBuffer) Bytes() []byte {
	if len(b.lines) == 0 {
		return nil
	}
	return []byte(strings.Join(b.lines, "\n") + "\n")
}

var tableHeaderRe = regexp.MustCompile(`^\s*\[([^\[\]]+)\]\s*$`)

// devDepHeader reports whether a table header name is a dev-dependencies
// table, either root-level or target-conditional
// (`target.'cfg(...)'.dev-dependencies` or `target.triple.dev-dependencies`).
func devDepHeader(name string) bool {
	name = strings.TrimSpace(name)
	if name == "dev-dependencies" {
		return true
	}
	if strings.HasPrefix(name, "target.") && strings.HasSuffix(name, ".dev-dependencies") {
		return true
	}
	return false
}

// RemoveDevDependencies deletes every dev-dependencies table (root and all
// target-conditional variants), header and body, including the blank lines
// that trail it. Tables are matched purely
// by header syntax, so a value elsewhere in the document that happens to
// contain the string "dev-dependencies" is left untouched.
//
// Grounded on original_source's manifest::remove_dev_deps, which performs
// the equivalent table-granular removal against a toml_edit document.
func (b *EditBuffer) RemoveDevDependencies() {
	b.lines = removeTables(b.lines, devDepHeader)
}

// removeTables deletes every table whose header name satisfies match,
// along with its body lines up to (but not including) the next header. The
// body includes the table's trailing blank lines, so the blank line before
// the next header is consumed with it; a removed table that ends the
// document also takes the blank line that preceded it.
func removeTables(lines []string, match func(name string) bool) []string {
	var out []string
	i := 0
	for i < len(lines) {
		m := tableHeaderRe.FindStringSubmatch(lines[i])
		if m == nil || !match(m[1]) {
			out = append(out, lines[i])
			i++
			continue
		}
		// Skip header and body (including its trailing blank lines) until
		// the next table header or EOF.
		i++
		for i < len(lines) && tableHeaderRe.FindStringSubmatch(lines[i]) == nil {
			i++
		}
		// At EOF, also drop the blank line that separated this table from
		// the previous content, so the output doesn't end with a gap.
		if i == len(lines) && len(out) > 0 && out[len(out)-1] == "" {
			out = out[:len(out)-1]
		}
	}
	return out
}

var (
	membersLineRe = regexp.MustCompile(`^(\s*members\s*=\s*)\[(.*)\]\s*$`)
	excludeLineRe = regexp.MustCompile(`^(\s*exclude\s*=\s*)\[(.*)\]\s*$`)
)

// RemovePrivateMembers removes the given relative paths from a single-line
// `members = [...]` array and appends them to `exclude`, creating the
// `exclude` array under the same `[workspace]` table if it is missing.
// Multi-line member arrays are not rewritten in place; callers needing that
// form should fall back to a full rewrite of the `[workspace]` table.
//
// Grounded on original_source's manifest::remove_private_crates, which
// performs the equivalent relocation against a toml_edit document using
// same_file path comparison; here paths are compared as normalized
// relative strings, which is sufficient once the caller has resolved them
// against the workspace root.
func (b *EditBuffer) RemovePrivateMembers(paths []string) bool {
	if len(paths) == 0 {
		return false
	}
	remove := make(map[string]bool, len(paths))
	for _, p := range paths {
		remove[p] = true
	}

	changed := false
	membersIdx := -1
	excludeIdx := -1
	for i, line := range b.lines {
		if membersLineRe.MatchString(line) && membersIdx == -1 {
			membersIdx = i
		}
		if excludeLineRe.MatchString(line) && excludeIdx == -1 {
			excludeIdx = i
		}
	}
	if membersIdx == -1 {
		return false
	}

	m := membersLineRe.FindStringSubmatch(b.lines[membersIdx])
	kept, removed := splitQuotedList(m[2], remove)
	if len(removed) == 0 {
		return false
	}
	b.lines[membersIdx] = m[1] + "[" + strings.Join(quoteAll(kept), ", ") + "]"
	changed = true

	if excludeIdx != -1 {
		e := excludeLineRe.FindStringSubmatch(b.lines[excludeIdx])
		existing, _ := splitQuotedList(e[2], nil)
		existing = append(existing, removed...)
		b.lines[excludeIdx] = e[1] + "[" + strings.Join(quoteAll(existing), ", ") + "]"
	} else {
		b.lines = append(b.lines[:membersIdx+1], append([]string{"exclude = [" + strings.Join(quoteAll(removed), ", ") + "]"}, b.lines[membersIdx+1:]...)...)
	}

	return changed
}

var quotedItemRe = regexp.MustCompile(`"([^"]*)"|'([^']*)'`)

func splitQuotedList(raw string, remove map[string]bool) (kept, removed []string) {
	for _, m := range quotedItemRe.FindAllStringSubmatch(raw, -1) {
		val := m[1]
		if val == "" {
			val = m[2]
		}
		if remove != nil && remove[val] {
			removed = append(removed, val)
			continue
		}
		kept = append(kept, val)
	}
	return kept, removed
}

func quoteAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = `"` + s + `"`
	}
	return out
}

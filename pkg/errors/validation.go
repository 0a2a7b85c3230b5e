package errors

import (
	"regexp"
	"strings"
)

// cratesPackageNameRegex matches valid crates.io package names: an ASCII
// letter, digit, underscore, or dash, starting with a letter or underscore.
var cratesPackageNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

// ValidatePackageName validates a -p/--package or --exclude package name
// spec before it's used to match workspace members, rejecting anything
// that isn't a well-formed crates.io package name.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(CodeConfig, "package name cannot be empty")
	}
	if len(name) > 64 {
		return New(CodeConfig, "package name too long (max 64 characters)")
	}
	if !cratesPackageNameRegex.MatchString(name) {
		return New(CodeConfig, "invalid package name %q: expected a crates.io-style identifier", name)
	}
	return nil
}

// ValidatePath validates a workspace-relative path (such as a
// workspace.exclude entry) for safety before it is joined onto a
// filesystem root, rejecting absolute
// paths and parent-directory traversal.
func ValidatePath(path string) error {
	if path == "" {
		return New(CodeConfig, "path cannot be empty")
	}
	if strings.HasPrefix(path, "/") {
		return New(CodeConfig, "path must be relative (cannot start with /): %q", path)
	}
	if strings.Contains(path, "..") {
		return New(CodeConfig, "path cannot contain parent-directory traversal (..): %q", path)
	}
	return nil
}

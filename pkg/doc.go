// Package pkg provides the core libraries behind cargo-matrix, a driver
// that exhaustively runs a build subcommand across combinations of
// workspace packages, feature flags, and compiler versions.
//
// # Overview
//
// The pkg directory is organized around the five stages a run plan passes
// through:
//
//  1. [manifest] - parses a package manifest's feature table and
//     dependency tables, and rewrites dev-dependency tables in place
//  2. [workspace] - resolves [workspace.members] globs and package
//     selection flags into the ordered list of packages to operate on
//  3. [features] - derives a package's explicit/implicit feature model and
//     enumerates the de-duplicated combinations a run plan should exercise
//  4. [version] - expands a requested toolchain range into the ordered
//     list of version identifiers to iterate
//  5. [runner] - turns packages x combinations x versions into child
//     process invocations, and drives them to completion
//
// [restore] and [lock] are cross-cutting: the Edit Session and Signal
// Guard in [restore] guarantee a temporarily-rewritten manifest is put
// back even if the process is interrupted, and [lock] detects (but does
// not prevent) a second concurrent invocation against the same workspace.
//
// # Architecture
//
//	workspace manifests
//	         |
//	    [workspace] package (resolve package selection)
//	         |
//	    [features] package (feature model + combination enumeration)
//	         |
//	    [version] package (toolchain range expansion)
//	         |
//	    [runner] package (build run plan, execute, restore)
//	         |
//	    child-process exit codes / aggregated failure
//
// # Debug visualization
//
// [dag] and [render/nodelink] are used by the `graph` sub-command to
// render a package's feature-activation graph.
//
// [manifest]: https://pkg.go.dev/github.com/crateforge/cargo-matrix/pkg/manifest
// [workspace]: https://pkg.go.dev/github.com/crateforge/cargo-matrix/pkg/workspace
// [features]: https://pkg.go.dev/github.com/crateforge/cargo-matrix/pkg/features
// [version]: https://pkg.go.dev/github.com/crateforge/cargo-matrix/pkg/version
// [runner]: https://pkg.go.dev/github.com/crateforge/cargo-matrix/pkg/runner
// [restore]: https://pkg.go.dev/github.com/crateforge/cargo-matrix/pkg/restore
// [lock]: https://pkg.go.dev/github.com/crateforge/cargo-matrix/pkg/lock
// [dag]: https://pkg.go.dev/github.com/crateforge/cargo-matrix/pkg/dag
// [render/nodelink]: https://pkg.go.dev/github.com/crateforge/cargo-matrix/pkg/render/nodelink
package pkg

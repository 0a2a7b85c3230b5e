// Package cli implements the cargo-matrix command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/crateforge/cargo-matrix/pkg/buildinfo"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
//
// Cargo's subcommand-dispatch convention invokes this binary as
// `cargo-matrix matrix [OPTIONS] [SUBCOMMAND]` for a `cargo matrix ...`
// invocation (it strips the leading "cargo", resolves "matrix" to the
// cargo-matrix binary on PATH, and hands the rest through verbatim,
// re-prepending "matrix" for compatibility with direct invocation). The
// real work therefore lives one level down, in the matrix subcommand,
// not at the root.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "cargo-matrix",
		Short:        "Exhaustively run a cargo subcommand across packages, feature combinations, and toolchains",
		Long:         `cargo-matrix is a cargo subcommand that runs another cargo subcommand once per combination of workspace package, feature selection, and Rust toolchain, restoring any manifest it temporarily rewrites along the way.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.hackCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.completionCommand())

	return root
}

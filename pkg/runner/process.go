// Package runner implements the Runner and its builder invocation
// (SPEC_FULL.md §4.7): the driver loop that turns a Run Plan into child
// process invocations of the wrapped build tool.
package runner

import (
	"context"
	"os"
	"os/exec"
	"strings"
)

// ProcessBuilder accumulates one invocation of the wrapped build tool,
// mirroring original_source's process::ProcessBuilder: a program, leading
// args (the sub-command and flags collected by the argument parser),
// trailing args (forwarded after `--`), and a comma-joined features list
// that is rendered as a single `--features` flag.
type ProcessBuilder struct {
	Program      string
	LeadingArgs  []string
	TrailingArgs []string

	args     []string
	features []string
	Verbose  bool
}

// NewProcessBuilder creates a ProcessBuilder for program, with the
// sub-command and pass-through flags already split into leading and
// trailing args by the argument parser (an external collaborator).
func NewProcessBuilder(program string, leadingArgs, trailingArgs []string, verbose bool) *ProcessBuilder {
	return &ProcessBuilder{Program: program, LeadingArgs: leadingArgs, TrailingArgs: trailingArgs, Verbose: verbose}
}

// Clone returns an independent copy so per-run mutation (adding
// --manifest-path, --features, etc.) never leaks across runs.
func (p *ProcessBuilder) Clone() *ProcessBuilder {
	return &ProcessBuilder{
		Program:      p.Program,
		LeadingArgs:  p.LeadingArgs,
		TrailingArgs: p.TrailingArgs,
		args:         append([]string(nil), p.args...),
		features:     append([]string(nil), p.features...),
		Verbose:      p.Verbose,
	}
}

// Arg appends one argument to the args list (between leading and trailing).
func (p *ProcessBuilder) Arg(arg string) *ProcessBuilder {
	p.args = append(p.args, arg)
	return p
}

// AppendFeatures appends to the comma-separated --features value.
func (p *ProcessBuilder) AppendFeatures(features []string) *ProcessBuilder {
	p.features = append(p.features, features...)
	return p
}

// buildArgs assembles the full argument list passed to exec.Command.
func (p *ProcessBuilder) buildArgs() []string {
	args := append([]string(nil), p.LeadingArgs...)
	args = append(args, p.args...)
	if len(p.features) > 0 {
		args = append(args, "--features", strings.Join(p.features, ","))
	}
	if len(p.TrailingArgs) > 0 {
		args = append(args, "--")
		args = append(args, p.TrailingArgs...)
	}
	return args
}

// Command builds the *exec.Cmd for this invocation.
func (p *ProcessBuilder) Command(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, p.Program, p.buildArgs()...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd
}

// Exec runs the process to completion, mapping a non-zero exit to
// CodeChildNonZero.
func (p *ProcessBuilder) Exec(ctx context.Context) error {
	cmd := p.Command(ctx)
	if err := cmd.Run(); err != nil {
		return wrapExecError(p, err)
	}
	return nil
}

// String renders the invocation the way it would be typed at a shell,
// for --print-command-list and progress logging.
func (p *ProcessBuilder) String() string {
	var b strings.Builder
	b.WriteByte('`')
	b.WriteString(p.Program)
	for _, a := range p.LeadingArgs {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	args := p.args
	for i := 0; i < len(args); i++ {
		if args[i] == "--manifest-path" && i+1 < len(args) {
			if p.Verbose {
				b.WriteString(" --manifest-path ")
				b.WriteString(args[i+1])
			}
			i++
			continue
		}
		b.WriteByte(' ')
		b.WriteString(args[i])
	}
	if len(p.features) > 0 {
		b.WriteString(" --features ")
		b.WriteString(strings.Join(p.features, ","))
	}
	if len(p.TrailingArgs) > 0 {
		b.WriteString(" --")
		for _, a := range p.TrailingArgs {
			b.WriteByte(' ')
			b.WriteString(a)
		}
	}
	b.WriteByte('`')
	return b.String()
}

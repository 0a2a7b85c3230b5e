package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/crateforge/cargo-matrix/pkg/features"
	"github.com/crateforge/cargo-matrix/pkg/runner"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorDim   = lipgloss.Color("240")

	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleFailure = lipgloss.NewStyle().Foreground(colorRed)
	spinFrames   = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
)

// runEvent is sent into the bubbletea program from the Runner's Hooks
// callbacks, which execute on the Runner's own goroutine, not the TUI's.
type runEvent struct {
	pkg, toolchain string
	combo          features.Combination
	index, total   int
	done           bool
	err            error
}

type tickMsg time.Time

// progressModel renders a spinner, the completed/total/failed counts, and
// a single line describing the most recently started run.
type progressModel struct {
	frame     int
	total     int
	completed int
	failed    int
	current   string
}

func (m progressModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.frame++
		return m, tickCmd()
	case runEvent:
		m.total = msg.total
		if msg.done {
			m.completed++
			if msg.err != nil {
				m.failed++
			}
			return m, nil
		}
		m.current = describeRun(msg)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	spin := spinFrames[m.frame%len(spinFrames)]
	status := styleSuccess.Render(fmt.Sprintf("%d/%d", m.completed, m.total))
	if m.failed > 0 {
		status = fmt.Sprintf("%s (%s)", status, styleFailure.Render(fmt.Sprintf("%d failed", m.failed)))
	}
	return fmt.Sprintf("%s %s  %s\n%s\n",
		styleTitle.Render(spin), status, styleDim.Render(m.current), styleDim.Render("ctrl+c to cancel"))
}

func describeRun(e runEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", e.pkg)
	if e.toolchain != "" {
		fmt.Fprintf(&b, " @ %s", e.toolchain)
	}
	if len(e.combo.Features) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.combo.Features, ","))
	}
	return b.String()
}

// tuiHooks bridges runner.Hooks callbacks (invoked on the Runner's
// goroutine) to a running bubbletea [tea.Program] via Send, which is safe
// to call concurrently with the program's own event loop.
type tuiHooks struct {
	program *tea.Program
}

func (h *tuiHooks) OnRunStart(_ context.Context, pkg, toolchain string, combo features.Combination, index, total int) {
	h.program.Send(runEvent{pkg: pkg, toolchain: toolchain, combo: combo, index: index, total: total})
}

func (h *tuiHooks) OnRunComplete(_ context.Context, pkg, toolchain string, combo features.Combination, _ time.Duration, err error) {
	h.program.Send(runEvent{pkg: pkg, toolchain: toolchain, combo: combo, done: true, err: err})
}

func (h *tuiHooks) OnRestore(context.Context, string, error) {}

// startTUI launches the progress program and registers it as the Runner's
// Hooks implementation. The returned stop func must be called once the run
// plan has finished, win or lose, to tear the program down.
func startTUI() (stop func()) {
	p := tea.NewProgram(progressModel{})
	runner.SetHooks(&tuiHooks{program: p})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Run()
	}()

	return func() {
		p.Quit()
		<-done
		runner.ResetHooks()
	}
}

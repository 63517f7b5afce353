package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/betwixt/pkg/anneal"
	"github.com/matzehuels/betwixt/pkg/model"
	"github.com/matzehuels/betwixt/pkg/pipeline"
	"github.com/matzehuels/betwixt/pkg/solver"
)

// recentAttempts is how many finished attempts the progress view lists.
const recentAttempts = 5

const barWidth = 30

var (
	barFullStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
	labelStyle    = lipgloss.NewStyle().Foreground(colorGray).Width(13)
)

// Messages sent from the solve goroutine into the program.
type (
	progressMsg struct {
		attempt int
		p       anneal.Progress
	}
	attemptMsg solver.Attempt
	doneMsg    struct {
		res *solver.Result
		hit bool
		err error
	}
)

// SolveModel is the bubbletea model for live solve progress.
type SolveModel struct {
	Items       int
	Constraints int
	MaxAttempts int

	Attempt  int
	Progress anneal.Progress
	Best     int
	History  []solver.Attempt
	Started  time.Time

	Done   bool
	Result *solver.Result
	Hit    bool
	Err    error

	cancel context.CancelFunc
}

// NewSolveModel creates a progress model for an instance.
func NewSolveModel(n, k, maxAttempts int, cancel context.CancelFunc) SolveModel {
	return SolveModel{
		Items:       n,
		Constraints: k,
		MaxAttempts: maxAttempts,
		Best:        -1,
		Started:     time.Now(),
		cancel:      cancel,
	}
}

func (m SolveModel) Init() tea.Cmd {
	return nil
}

func (m SolveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// The solve goroutine reports back with doneMsg once it stops.
			if m.cancel != nil {
				m.cancel()
			}
		}
	case progressMsg:
		m.Attempt = msg.attempt
		m.Progress = msg.p
		if m.Best < 0 || msg.p.BestEnergy < m.Best {
			m.Best = msg.p.BestEnergy
		}
	case attemptMsg:
		a := solver.Attempt(msg)
		m.Attempt = a.Number
		m.History = append(m.History, a)
		if len(m.History) > recentAttempts {
			m.History = m.History[len(m.History)-recentAttempts:]
		}
		if m.Best < 0 || a.BestEnergy < m.Best {
			m.Best = a.BestEnergy
		}
	case doneMsg:
		m.Done = true
		m.Result, m.Hit, m.Err = msg.res, msg.hit, msg.err
		if msg.res != nil {
			m.Best = msg.res.Energy
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m SolveModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Solving"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d items · %d constraints", m.Items, m.Constraints)))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("attempt"))
	b.WriteString(StyleValue.Render(fmt.Sprintf("%d/%d", max(m.Attempt, 1), m.MaxAttempts)))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("step"))
	b.WriteString(bar(m.Progress.Step, m.Progress.Steps))
	b.WriteString(StyleDim.Render(fmt.Sprintf(" %d/%d", m.Progress.Step, m.Progress.Steps)))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("temperature"))
	b.WriteString(StyleNumber.Render(fmt.Sprintf("%.4f", m.Progress.Temperature)))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("energy"))
	b.WriteString(StyleNumber.Render(fmt.Sprint(m.Progress.Energy)))
	if m.Best >= 0 {
		b.WriteString(StyleDim.Render(fmt.Sprintf("  best %d", m.Best)))
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("accepted"))
	b.WriteString(StyleValue.Render(fmt.Sprintf("%.1f%%", 100*m.Progress.AcceptRate)))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  improved %.1f%%", 100*m.Progress.ImproveRate)))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("elapsed"))
	b.WriteString(StyleValue.Render(time.Since(m.Started).Truncate(100 * time.Millisecond).String()))
	b.WriteString("\n")

	if len(m.History) > 0 {
		rows := make([][]string, len(m.History))
		for i, a := range m.History {
			rows[i] = []string{
				fmt.Sprint(a.Number),
				fmt.Sprint(a.StartEnergy),
				fmt.Sprint(a.BestEnergy),
				fmt.Sprint(a.Steps),
				a.Duration.Round(time.Millisecond).String(),
			}
		}
		b.WriteString("\n")
		b.WriteString(renderTable([]string{"#", "start", "best", "steps", "time"}, rows))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.Done && m.Result.Solved():
		b.WriteString(StyleSuccess.Render(iconSuccess + " solved"))
	case m.Done:
		b.WriteString(StyleError.Render(iconError + " stopped"))
	default:
		b.WriteString(StyleDim.Render("q to stop"))
	}
	b.WriteString("\n")
	return b.String()
}

// bar draws a fixed-width progress bar for done out of total.
func bar(done, total int) string {
	filled := 0
	if total > 0 {
		filled = min(barWidth, done*barWidth/total)
	}
	return barFullStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
}

// runSolveTUI solves inst while a bubbletea program renders progress on
// stderr. Quitting the program cancels the solve; the best ordering so far
// is still returned.
func runSolveTUI(ctx context.Context, runner *pipeline.Runner, inst *model.Instance, opts pipeline.SolveOptions) (*solver.Result, bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewSolveModel(inst.N(), len(inst.Constraints), opts.Config.MaxAttempts, cancel)
	prog := tea.NewProgram(m, tea.WithOutput(os.Stderr), tea.WithContext(ctx))

	opts.OnProgress = func(attempt int, p anneal.Progress) {
		prog.Send(progressMsg{attempt: attempt, p: p})
	}
	opts.OnAttempt = func(a solver.Attempt) {
		prog.Send(attemptMsg(a))
	}
	// Log lines would tear the display.
	opts.Logger = log.New(io.Discard)

	done := make(chan doneMsg, 1)
	go func() {
		res, hit, err := runner.SolveWithCacheInfo(ctx, inst, opts)
		msg := doneMsg{res: res, hit: hit, err: err}
		done <- msg
		prog.Send(msg)
	}()

	if _, err := prog.Run(); err != nil && ctx.Err() == nil {
		cancel()
		<-done
		return nil, false, fmt.Errorf("progress display: %w", err)
	}
	// Run also returns when ctx is canceled before doneMsg arrives.
	msg := <-done
	return msg.res, msg.hit, msg.err
}

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/bistab/internal/analysis"
	"github.com/san-kum/bistab/internal/viz"
)

const barWidth = 40

// ProgressFunc matches analysis.SweepOptions.Progress.
type ProgressFunc func(done, total int, s analysis.ValueSummary)

// SweepFunc runs a sweep, reporting each finished value to progress.
type SweepFunc func(ctx context.Context, progress ProgressFunc) (*analysis.SweepResult, error)

type valueMsg struct {
	done, total int
	summary     analysis.ValueSummary
}

type doneMsg struct{}

type spinMsg time.Time

type progressModel struct {
	param    string
	total    int
	done     int
	roots    []float64
	last     analysis.ValueSummary
	multi    int
	frame    int
	start    time.Time
	finished bool
	cancel   context.CancelFunc
}

func newProgressModel(param string, total int, cancel context.CancelFunc) progressModel {
	return progressModel{param: param, total: total, start: time.Now(), cancel: cancel}
}

func spin() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return spinMsg(t) })
}

func (m progressModel) Init() tea.Cmd { return spin() }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case valueMsg:
		m.done, m.total, m.last = msg.done, msg.total, msg.summary
		m.roots = append(m.roots, float64(msg.summary.Rows))
		if msg.summary.Rows > 1 {
			m.multi++
		}
	case doneMsg:
		m.finished = true
		return m, tea.Quit
	case spinMsg:
		m.frame++
		return m, spin()
	}
	return m, nil
}

func (m progressModel) View() string {
	var s strings.Builder
	pct := 0.0
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}
	spinner := viz.AnimatedSpinner(m.frame)
	if m.finished {
		spinner = "✓"
	}
	s.WriteString(viz.HeaderStyle.Render(fmt.Sprintf("%s sweeping %s", spinner, m.param)) + "\n")
	fmt.Fprintf(&s, "%s %d/%d\n\n", viz.ProgressBar(pct, barWidth), m.done, m.total)
	if m.done > 0 {
		s.WriteString(viz.Metric("last value", fmt.Sprintf("%s=%.4g", m.param, m.last.Value)) + "\n")
		s.WriteString(viz.Metric("steady states", m.last.Rows) + "\n")
		s.WriteString(viz.Metric("multistable", fmt.Sprintf("%d values", m.multi)) + "\n")
		s.WriteString(viz.Metric("failed starts", m.last.Counts[analysis.NotConverged]+m.last.Counts[analysis.EvalFailed]) + "\n")
		s.WriteString("\n" + viz.SparklineChart(m.roots, barWidth) + "\n")
	}
	s.WriteString(viz.Metric("elapsed", time.Since(m.start).Round(100*time.Millisecond)) + "\n")
	s.WriteString(viz.KeyHint.Render("q: cancel"))
	return viz.Panel.Render(s.String()) + "\n"
}

type sweepOutcome struct {
	res *analysis.SweepResult
	err error
}

// RunSweep shows a progress view while run executes. Quitting the view
// cancels the sweep; the sweep's own result is always returned.
func RunSweep(ctx context.Context, param string, total int, run SweepFunc) (*analysis.SweepResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(param, total, cancel))
	out := make(chan sweepOutcome, 1)
	go func() {
		res, err := run(ctx, func(done, total int, s analysis.ValueSummary) {
			p.Send(valueMsg{done: done, total: total, summary: s})
		})
		out <- sweepOutcome{res: res, err: err}
		p.Send(doneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-out
		return nil, fmt.Errorf("progress view: %w", err)
	}
	cancel()
	r := <-out
	return r.res, r.err
}

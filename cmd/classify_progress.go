package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/haggle/internal/domain"
)

var (
	progressOKStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	progressFailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	progressDimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type classifiedMsg struct {
	classification domain.Classification
	err            error
	latency        time.Duration
}

// classifyProgress shows the running classifier latency, then a one-line
// summary of the result that stays on screen.
type classifyProgress struct {
	spinner spinner.Model
	started time.Time
	call    tea.Cmd

	elapsed time.Duration
	result  classifiedMsg
	done    bool
}

func newClassifyProgress(started time.Time, call tea.Cmd) classifyProgress {
	return classifyProgress{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		started: started,
		call:    call,
	}
}

func (m classifyProgress) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.call)
}

func (m classifyProgress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		if msg.Time.After(m.started) {
			m.elapsed = msg.Time.Sub(m.started)
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case classifiedMsg:
		m.done = true
		m.result = msg
		m.elapsed = msg.latency
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m classifyProgress) View() string {
	latency := m.elapsed.Round(time.Millisecond)
	if !m.done {
		return fmt.Sprintf("%s Classifying message... %s\n", m.spinner.View(), progressDimStyle.Render(latency.String()))
	}
	if m.result.err != nil {
		return progressFailStyle.Render(fmt.Sprintf("✗ classification failed after %s", latency)) + "\n"
	}

	summary := fmt.Sprintf("✓ classified in %s", latency)
	if top, ok := m.result.classification.TopIntent(); ok {
		summary += fmt.Sprintf(", top intent %s (%.2f)", top.Label, top.Confidence)
	} else {
		summary += ", no intent"
	}
	return progressOKStyle.Render(summary) + "\n"
}

// runClassifyProgress runs classify while drawing progress on output and
// returns its result unchanged.
func runClassifyProgress(
	ctx context.Context,
	output io.Writer,
	classify func(context.Context) (domain.Classification, error),
) (domain.Classification, error) {
	started := time.Now()
	call := func() tea.Msg {
		classification, err := classify(ctx)
		return classifiedMsg{classification: classification, err: err, latency: time.Since(started)}
	}

	p := tea.NewProgram(
		newClassifyProgress(started, call),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return domain.Classification{}, err
	}

	result, ok := finalModel.(classifyProgress)
	if !ok {
		return domain.Classification{}, fmt.Errorf("unexpected final progress model type %T", finalModel)
	}
	return result.result.classification, result.result.err
}

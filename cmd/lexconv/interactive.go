package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/lexconv/conformance"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// recent is how many finished runs stay visible.
const recent = 8

type interactiveModel struct {
	err      error
	opts     options
	log      *zap.Logger
	suite    *conformance.Suite
	reports  []conformance.Report
	last     []string
	spinner  spinner.Model
	progress progress.Model
	total    int
	done     int
	failed   int
	finished bool
}

type jobDoneMsg struct {
	err    error
	report conformance.Report
}

type suiteDoneMsg struct {
	err     error
	reports []conformance.Report
}

func newInteractiveModel(o options, log *zap.Logger) *interactiveModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = keyStyle

	suite := o.suite(log)
	return &interactiveModel{
		opts:     o,
		log:      log,
		suite:    suite,
		total:    len(suite.Jobs()),
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *interactiveModel) run(p *tea.Program) {
	m.suite.OnReport = func(r conformance.Report, err error) {
		p.Send(jobDoneMsg{report: r, err: err})
	}
	ctx := context.Background()
	reports, err := m.suite.Run(ctx)
	if err == nil {
		err = record(ctx, m.opts, reports)
	}
	p.Send(suiteDoneMsg{reports: reports, err: err})
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.progress.Width = min(msg.Width-4, 60)

	case jobDoneMsg:
		m.done++
		line := keyStyle.Render(msg.report.Key())
		if msg.err != nil {
			m.failed++
			line = errorStyle.Render(msg.err.Error())
		} else {
			line += " " + fileStyle.Render(msg.report.ReferenceFile) +
				fmt.Sprintf(" checksum=%d", msg.report.Checksum)
		}
		m.last = append(m.last, line)
		if len(m.last) > recent {
			m.last = m.last[len(m.last)-recent:]
		}
		if m.total == 0 {
			return m, nil
		}
		return m, m.progress.SetPercent(float64(m.done) / float64(m.total))

	case suiteDoneMsg:
		m.finished = true
		m.err = msg.err
		m.reports = msg.reports
		return m, nil

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Conformance"))
	b.WriteString(" ")
	b.WriteString(fileStyle.Render(m.opts.fixtures))
	b.WriteString("\n\n")

	if !m.finished {
		b.WriteString(m.spinner.View())
		b.WriteString(fmt.Sprintf(" %d/%d runs", m.done, m.total))
		if m.failed > 0 {
			b.WriteString(errorStyle.Render(fmt.Sprintf(", %d failed", m.failed)))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.progress.View())
	b.WriteString("\n\n")

	for _, line := range m.last {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.finished {
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(fmt.Sprintf("%d runs passed", len(m.reports))))
		}
		b.WriteString("\n\n")
	}
	b.WriteString(helpStyle.Render("q quit"))
	return b.String()
}

func runInteractive(o options, log *zap.Logger) error {
	m := newInteractiveModel(o, log)
	p := tea.NewProgram(m, tea.WithAltScreen())
	go m.run(p)
	if _, err := p.Run(); err != nil {
		return err
	}
	return m.err
}

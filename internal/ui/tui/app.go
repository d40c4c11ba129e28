package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aalvaropc/dfkit/internal/domain"
)

const recentRows = 8

type model struct {
	theme Theme
	deps  Deps

	spin spinner.Model
	bar  progress.Model

	ctx    context.Context
	cancel context.CancelFunc
	events chan tea.Msg
	result *pushResult

	active  map[string]bool
	recent  []domain.PushResult
	created int
	skipped int
	failed  int

	done  bool
	run   domain.PushRun
	runID string
	err   error
	toast string
}

// Run shows push progress until the push ends or the user quits.
// Quitting cancels the push; files in flight finish and the partial run is returned.
func Run(ctx context.Context, deps Deps) (domain.PushRun, string, error) {
	m := newModel(ctx, deps)
	defer m.cancel()

	if _, err := tea.NewProgram(guard(m, deps.Logger)).Run(); err != nil {
		return domain.PushRun{}, "", err
	}

	m.cancel()
	<-m.result.done
	return m.result.run, m.result.id, m.result.err
}

func newModel(ctx context.Context, deps Deps) model {
	ctx, cancel := context.WithCancel(ctx)

	s := spinner.New()
	s.Spinner = spinner.Dot

	return model{
		theme:  DefaultTheme(),
		deps:   deps,
		spin:   s,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		ctx:    ctx,
		cancel: cancel,
		events: make(chan tea.Msg, 2*deps.Total+1),
		result: newPushResult(),
		active: map[string]bool{},
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, startPushAsync(m.ctx, m.deps, m.events, m.result))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = max(10, min(60, msg.Width-20))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.done {
				m.toast = "Cancelling… files in flight will finish"
				m.cancel()
				return m, tea.Quit
			}
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case fileStartedMsg:
		m.active[msg.path] = true
		return m, listenPush(m.events)

	case fileDoneMsg:
		delete(m.active, msg.result.Path)
		switch msg.result.Outcome {
		case domain.PushCreated:
			m.created++
		case domain.PushSkipped:
			m.skipped++
		case domain.PushFailed:
			m.failed++
		}
		m.recent = append(m.recent, msg.result)
		if len(m.recent) > recentRows {
			m.recent = m.recent[len(m.recent)-recentRows:]
		}
		return m, listenPush(m.events)

	case pushDoneMsg:
		m.done = true
		m.run = msg.run
		m.runID = msg.id
		m.err = msg.err
		if msg.err != nil {
			m.toast = UserMessage(msg.err)
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m model) processed() int {
	return m.created + m.skipped + m.failed
}

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)

	header := m.theme.Title.Render("dfkit push") + "\n" +
		m.theme.Dim.Render(m.deps.Dir) + "\n"

	pct := 1.0
	if m.deps.Total > 0 {
		pct = float64(m.processed()) / float64(m.deps.Total)
	}

	var b strings.Builder
	status := m.spin.View() + " pushing"
	if m.done {
		status = "done"
	}
	fmt.Fprintf(&b, "%s  %d/%d\n", status, m.processed(), m.deps.Total)
	b.WriteString(m.bar.ViewAs(pct))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s  %s  %s\n",
		m.theme.Outcome(domain.PushCreated).Render(fmt.Sprintf("created %d", m.created)),
		m.theme.Outcome(domain.PushSkipped).Render(fmt.Sprintf("skipped %d", m.skipped)),
		m.theme.Outcome(domain.PushFailed).Render(fmt.Sprintf("failed %d", m.failed)),
	)

	if len(m.active) > 0 && !m.done {
		b.WriteString("\nIn flight:\n")
		for _, p := range sortedKeys(m.active) {
			b.WriteString("  ")
			b.WriteString(clampString(filepath.Base(p), 50))
			b.WriteString("\n")
		}
	}

	if len(m.recent) > 0 {
		b.WriteString("\nRecent:\n")
		for _, r := range m.recent {
			b.WriteString("  ")
			b.WriteString(m.renderResult(r))
			b.WriteString("\n")
		}
	}

	if m.done && m.runID != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Dim.Render("Saved run: " + m.runID))
		b.WriteString("\n")
	}
	if m.toast != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Outcome(domain.PushFailed).Render(m.toast))
		b.WriteString("\n")
	}

	help := m.theme.Dim.Render("q cancel")
	return wrap.Render(header + "\n" + m.theme.Card.Render(strings.TrimRight(b.String(), "\n")) + "\n" + help)
}

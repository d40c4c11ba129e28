package tui

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
)

// guarded recovers panics in the push view. The push goroutine is not
// affected by a broken frame, so the view keeps listening for its events.
type guarded struct {
	inner model
	log   *slog.Logger
}

var _ tea.Model = guarded{}

func guard(m model, log *slog.Logger) guarded {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return guarded{inner: m, log: log}
}

func (g guarded) report(where string, r any) {
	g.log.Error("tui.panic",
		"where", where,
		"panic", fmt.Sprint(r),
		"stack", string(debug.Stack()),
	)
}

func (g guarded) Init() tea.Cmd {
	return g.inner.Init()
}

func (g guarded) Update(msg tea.Msg) (next tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			g.report("update", r)
			g.inner.toast = "Unexpected error (see logs)"
			next, cmd = g, listenPush(g.inner.events)
		}
	}()

	updated, cmd := g.inner.Update(msg)
	if m, ok := updated.(model); ok {
		g.inner = m
	}
	return g, cmd
}

func (g guarded) View() (out string) {
	defer func() {
		if r := recover(); r != nil {
			g.report("view", r)
			out = "dfkit push: view failed (see logs); q cancels the push"
		}
	}()
	return g.inner.View()
}

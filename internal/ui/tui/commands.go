package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/usecase"
)

// pushResult is filled in by the push goroutine before done is closed.
type pushResult struct {
	done chan struct{}
	run  domain.PushRun
	id   string
	err  error
}

func newPushResult() *pushResult {
	return &pushResult{done: make(chan struct{})}
}

// listenPush waits for the next progress message of a running push.
func listenPush(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return pushDoneMsg{err: errors.New("push channel closed")}
		}
		return msg
	}
}

// startPushAsync runs the push in the background. Progress and the final
// pushDoneMsg arrive in order on ch.
func startPushAsync(ctx context.Context, deps Deps, ch chan tea.Msg, res *pushResult) tea.Cmd {
	log := deps.Logger

	go func() {
		defer close(ch)

		// After the user quits nobody reads ch; drop progress instead of blocking workers.
		send := func(msg tea.Msg) {
			select {
			case ch <- msg:
			case <-ctx.Done():
			}
		}

		obs := func(ev usecase.PushEvent) {
			switch ev.Kind {
			case usecase.PushFileStarted:
				send(fileStartedMsg{path: ev.Path})
			case usecase.PushFileDone:
				send(fileDoneMsg{result: ev.Result})
			}
		}

		run, id, err := deps.Push(ctx, obs)
		if err != nil && log != nil {
			log.Error("tui.push.failed", "err", err, "saved_id", id)
		}

		res.run, res.id, res.err = run, id, err
		close(res.done)
		send(pushDoneMsg{run: run, id: id, err: err})
	}()

	return listenPush(ch)
}

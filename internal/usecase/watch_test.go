package usecase

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/aalvaropc/dfkit/internal/domain"
)

func startWatch(t *testing.T, dir string, opts WatchOptions) (*scriptedClient, <-chan domain.PushResult, func()) {
	t.Helper()

	c := &scriptedClient{handle: datafedHandler}
	cfg := domain.DefaultConfig()
	session := NewSession(c, fakeResolver{endpoint: "ep"}, nil)
	uc := NewWatchDirectory(session, newTestIngest(c, newFakeLedger(), cfg), cfg, nil)

	done := make(chan domain.PushResult, 16)
	opts.Observer = func(ev PushEvent) {
		if ev.Kind == PushFileDone {
			done <- ev.Result
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- uc.Execute(ctx, dir, opts) }()

	stop := func() {
		cancel()
		select {
		case err := <-errc:
			if err != nil {
				t.Errorf("Execute returned %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Errorf("watch did not stop")
		}
	}
	return c, done, stop
}

func waitResult(t *testing.T, ch <-chan domain.PushResult) domain.PushResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for a pushed file")
		return domain.PushResult{}
	}
}

func TestWatchDirectory_PushesNewFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	c, done, stop := startWatch(t, dir, WatchOptions{Settle: 50 * time.Millisecond})
	defer stop()

	// Give the watcher time to register before files appear.
	time.Sleep(100 * time.Millisecond)

	writeFile(t, dir, "scan.json", `{"n":1}`)
	writeFile(t, dir, "scan.txt", "ignored")
	data := writeFile(t, dir, "scan.h5", "raw")

	res := waitResult(t, done)
	if res.Path != data || res.Outcome != domain.PushCreated || res.RecordID != "d/scan" {
		t.Fatalf("unexpected result %+v", res)
	}
	if c.count("data put") != 1 {
		t.Fatalf("expected one upload, got %v", c.commands())
	}
}

func TestWatchDirectory_Initial(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, dir, "old.json", `{}`)
	data := writeFile(t, dir, "old.h5", "raw")

	_, done, stop := startWatch(t, dir, WatchOptions{Initial: true, Settle: 50 * time.Millisecond})
	defer stop()

	res := waitResult(t, done)
	if res.Path != data || res.Outcome != domain.PushCreated {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestWatchDirectory_MissingDir(t *testing.T) {
	c := &scriptedClient{handle: datafedHandler}
	cfg := domain.DefaultConfig()
	uc := NewWatchDirectory(NewSession(c, fakeResolver{}, nil), newTestIngest(c, nil, cfg), cfg, nil)

	err := uc.Execute(context.Background(), filepath.Join(t.TempDir(), "nope"), WatchOptions{})
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if len(c.commands()) != 0 {
		t.Fatalf("expected no commands, got %v", c.commands())
	}
}

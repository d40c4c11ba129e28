package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aalvaropc/dfkit/internal/domain"
)

// --- fakes shared by the usecase tests ---

// scriptedClient answers commands through handle and records every call.
type scriptedClient struct {
	mu     sync.Mutex
	calls  []string
	handle func(args []string) (domain.Reply, error)
}

func (c *scriptedClient) Run(_ context.Context, args ...string) (domain.Reply, error) {
	c.mu.Lock()
	c.calls = append(c.calls, strings.Join(args, " "))
	c.mu.Unlock()
	if c.handle == nil {
		return domain.Reply{Kind: domain.ReplyAck}, nil
	}
	return c.handle(args)
}

func (c *scriptedClient) commands() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *scriptedClient) count(prefix string) int {
	n := 0
	for _, cmd := range c.commands() {
		if strings.HasPrefix(cmd, prefix) {
			n++
		}
	}
	return n
}

func remoteErr(msg string) error {
	return &domain.OpError{
		Op:   "dfcli.run",
		Kind: domain.KindRemote,
		Err:  &domain.RemoteError{Message: msg},
	}
}

type fakeResolver struct {
	endpoint string
	err      error
}

func (r fakeResolver) LocalEndpoint() (string, error) { return r.endpoint, r.err }

type fakeLedger struct {
	mu      sync.Mutex
	entries map[string]domain.LedgerEntry
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{entries: map[string]domain.LedgerEntry{}}
}

func (l *fakeLedger) Lookup(path string, info os.FileInfo) (domain.LedgerEntry, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[path]
	if !ok {
		return domain.LedgerEntry{}, false, nil
	}
	if info.Size() != e.Size || !info.ModTime().Equal(e.ModTime) {
		return e, false, nil
	}
	return e, true, nil
}

func (l *fakeLedger) Remember(path string, e domain.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[path] = e
	return nil
}

func (l *fakeLedger) Close() error { return nil }

type fakeStore struct {
	mu    sync.Mutex
	saved []domain.PushRun
}

func (s *fakeStore) SaveRun(run domain.PushRun) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, run)
	return "run-123", nil
}

func (s *fakeStore) ListRuns() ([]domain.RunRef, error) { return nil, nil }

// datafedHandler behaves like an authenticated account with an empty
// repository: views miss, creates succeed and uploads finish.
func datafedHandler(args []string) (domain.Reply, error) {
	cmd := strings.Join(args, " ")
	switch {
	case cmd == "user who":
		return domain.Reply{Kind: domain.ReplyUser, UID: "u/jdoe"}, nil
	case cmd == "ep get":
		return domain.Reply{Kind: domain.ReplyEndpoint, Endpoint: "ep-local"}, nil
	case strings.HasPrefix(cmd, "data view"):
		return domain.Reply{}, remoteErr("Record " + args[2] + " does not exist")
	case strings.HasPrefix(cmd, "data create"):
		title := args[2]
		return domain.Reply{Kind: domain.ReplyRecord, Records: []domain.Record{{ID: "d/" + title, Alias: domain.CleanAlias(title), Title: title}}}, nil
	case strings.HasPrefix(cmd, "data put"):
		return domain.Reply{Kind: domain.ReplyTransfer, Transfers: []domain.Transfer{{ID: "task/1", Status: domain.TransferSucceeded}}}, nil
	default:
		return domain.Reply{Kind: domain.ReplyAck}, nil
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

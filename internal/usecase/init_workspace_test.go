package usecase

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/aalvaropc/dfkit/internal/domain"
)

type fakeInitializer struct {
	got   []domain.WorkspaceSpec
	force bool
	err   error
}

func (f *fakeInitializer) Init(ws domain.WorkspaceSpec, force bool) error {
	f.got = append(f.got, ws)
	f.force = force
	return f.err
}

func TestInitWorkspace_ResolvesAbsoluteRoot(t *testing.T) {
	fi := &fakeInitializer{}
	root, err := NewInitWorkspace(fi, nil).Execute("ws", true)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if !filepath.IsAbs(root) || filepath.Base(root) != "ws" {
		t.Fatalf("root = %q", root)
	}
	if len(fi.got) != 1 || fi.got[0].Root != root || !fi.force {
		t.Fatalf("initializer called with %+v force=%v", fi.got, fi.force)
	}
}

func TestInitWorkspace_Errors(t *testing.T) {
	fi := &fakeInitializer{}
	if _, err := NewInitWorkspace(fi, nil).Execute("  ", false); !domain.IsKind(err, domain.KindInvalidArgument) {
		t.Fatalf("expected invalid_argument, got %v", err)
	}
	if len(fi.got) != 0 {
		t.Fatal("initializer must not run for a blank directory")
	}

	boom := errors.New("disk full")
	fi = &fakeInitializer{err: boom}
	if _, err := NewInitWorkspace(fi, nil).Execute(t.TempDir(), false); !errors.Is(err, boom) {
		t.Fatalf("expected initializer error, got %v", err)
	}
}

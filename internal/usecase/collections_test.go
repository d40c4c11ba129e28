package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/aalvaropc/dfkit/internal/domain"
)

func TestCollections_MoveBatches(t *testing.T) {
	c := &scriptedClient{}
	ids := make([]string, 23)
	for i := range ids {
		ids[i] = fmt.Sprintf("d/%d", i)
	}

	warnings, err := NewCollections(c, nil).Move(context.Background(), ids, "c/src", "c/dst")
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}

	cmds := c.commands()
	if len(cmds) != 6 {
		t.Fatalf("expected 6 commands for 3 batches, got %d: %v", len(cmds), cmds)
	}
	if want := "coll add " + strings.Join(ids[:10], " ") + " c/dst"; cmds[0] != want {
		t.Fatalf("unexpected first command %q", cmds[0])
	}
	if want := "coll remove " + strings.Join(ids[:10], " ") + " c/src"; cmds[1] != want {
		t.Fatalf("unexpected second command %q", cmds[1])
	}
	if want := "coll remove d/20 d/21 d/22 c/src"; cmds[5] != want {
		t.Fatalf("unexpected last command %q", cmds[5])
	}
}

func TestCollections_MoveCollectsWarnings(t *testing.T) {
	c := &scriptedClient{handle: func(args []string) (domain.Reply, error) {
		if args[1] == "add" {
			return domain.Reply{}, remoteErr("Record d/1 already linked to c/dst")
		}
		return domain.Reply{}, remoteErr("Item d/1 does not exist in c/src")
	}}

	warnings, err := NewCollections(c, nil).Move(context.Background(), []string{"d/1"}, "c/src", "c/dst")
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}
}

func TestCollections_MoveAbortsOnOtherErrors(t *testing.T) {
	c := &scriptedClient{handle: func(args []string) (domain.Reply, error) {
		return domain.Reply{}, remoteErr("permission denied")
	}}

	ids := make([]string, 15)
	for i := range ids {
		ids[i] = fmt.Sprintf("d/%d", i)
	}
	_, err := NewCollections(c, nil).Move(context.Background(), ids, "c/src", "c/dst")
	if !domain.IsKind(err, domain.KindRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if len(c.commands()) != 1 {
		t.Fatalf("expected processing to stop after first failure, got %v", c.commands())
	}
}

func TestCollections_MoveValidates(t *testing.T) {
	c := &scriptedClient{}
	cols := NewCollections(c, nil)

	if _, err := cols.Move(context.Background(), nil, "c/a", "c/b"); !domain.IsKind(err, domain.KindInvalidArgument) {
		t.Fatalf("expected invalid_argument for no ids, got %v", err)
	}
	if _, err := cols.Move(context.Background(), []string{"d/1", " "}, "c/a", "c/b"); err == nil {
		t.Fatalf("expected error for blank id")
	}
	if _, err := cols.Move(context.Background(), []string{"d/1"}, "", "c/b"); err == nil {
		t.Fatalf("expected error for blank source")
	}
	if len(c.commands()) != 0 {
		t.Fatalf("expected no commands, got %v", c.commands())
	}
}

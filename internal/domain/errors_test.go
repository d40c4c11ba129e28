package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestOpErrorWrapUnwrap(t *testing.T) {
	root := errors.New("root")
	err := &OpError{
		Op:   "records.view",
		Kind: KindRemote,
		Path: "d/123",
		Err:  root,
	}

	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is to match cause")
	}

	msg := err.Error()
	for _, want := range []string{"records.view", "remote", "path=d/123", "root"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestOpErrorNil(t *testing.T) {
	var e *OpError
	if e.Error() != "<nil>" {
		t.Fatalf("expected <nil>, got %q", e.Error())
	}
	if e.Unwrap() != nil {
		t.Fatalf("expected nil unwrap")
	}
}

func TestIsKind(t *testing.T) {
	err := &OpError{Op: "x", Kind: KindConflict, Err: ErrAlreadyExists}
	wrapped := errors.Join(errors.New("outer"), err)

	if !IsKind(wrapped, KindConflict) {
		t.Fatalf("expected IsKind to see through wrapping")
	}
	if IsKind(wrapped, KindAuth) {
		t.Fatalf("unexpected kind match")
	}
	if IsKind(errors.New("plain"), KindConflict) {
		t.Fatalf("plain errors have no kind")
	}
}

func TestRemoteMessage(t *testing.T) {
	err := &OpError{
		Op:   "dfcli.run",
		Kind: KindRemote,
		Err:  &RemoteError{Command: "data view", Message: "Record d/1 does not exist"},
	}
	if got := RemoteMessage(err); got != "Record d/1 does not exist" {
		t.Fatalf("unexpected message %q", got)
	}
	if RemoteMessage(errors.New("x")) != "" {
		t.Fatalf("expected empty message")
	}
}

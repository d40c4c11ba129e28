package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/infra/metafile"
)

func TestRecords_ListArgs(t *testing.T) {
	c := &scriptedClient{handle: func(args []string) (domain.Reply, error) {
		return domain.Reply{Kind: domain.ReplyListing, Listing: domain.Listing{Total: 2, Items: []domain.ListItem{{ID: "d/1"}, {ID: "d/2"}}}}, nil
	}}
	r := NewRecords(c, nil, nil)

	if _, err := r.List(context.Background(), "c/123", ListOptions{Offset: 20, Count: 10, Project: "p/afm"}); err != nil {
		t.Fatalf("List: %v", err)
	}
	listing, err := r.List(context.Background(), " root ", ListOptions{Offset: -1, Count: -5})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if listing.Total != 2 || len(listing.Items) != 2 {
		t.Fatalf("unexpected listing %+v", listing)
	}

	want := []string{"ls -O 20 -C 10 -p p/afm c/123", "ls root"}
	if diff := cmp.Diff(want, c.commands()); diff != "" {
		t.Fatalf("unexpected commands (-want +got):\n%s", diff)
	}
}

func TestRecords_ListUnexpectedReply(t *testing.T) {
	c := &scriptedClient{handle: func([]string) (domain.Reply, error) {
		return domain.Reply{Kind: domain.ReplyAck}, nil
	}}
	_, err := NewRecords(c, nil, nil).List(context.Background(), "c/1", ListOptions{})
	if !domain.IsKind(err, domain.KindRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
}

func TestRecords_ViewAndExists(t *testing.T) {
	c := &scriptedClient{handle: func(args []string) (domain.Reply, error) {
		switch args[2] {
		case "scan_001":
			return domain.Reply{Kind: domain.ReplyRecord, Records: []domain.Record{{ID: "d/9", Alias: "scan_001"}}}, nil
		case "broken":
			return domain.Reply{}, remoteErr("permission denied")
		}
		return domain.Reply{}, remoteErr("Record " + args[2] + " does not exist")
	}}
	r := NewRecords(c, nil, nil)

	rec, err := r.View(context.Background(), "scan_001")
	if err != nil || rec == nil || rec.ID != "d/9" {
		t.Fatalf("expected record d/9, got %+v %v", rec, err)
	}

	ok, err := r.Exists(context.Background(), "scan_002")
	if err != nil || ok {
		t.Fatalf("expected missing record, got %v %v", ok, err)
	}

	if _, err := r.Exists(context.Background(), "broken"); !domain.IsKind(err, domain.KindRemote) {
		t.Fatalf("expected other remote errors to surface, got %v", err)
	}

	if _, err := r.View(context.Background(), "  "); !domain.IsKind(err, domain.KindInvalidArgument) {
		t.Fatalf("expected invalid_argument for blank id, got %v", err)
	}
}

func TestRecords_CreateCleansDefaultAlias(t *testing.T) {
	c := &scriptedClient{handle: datafedHandler}
	r := NewRecords(c, nil, nil)

	rec, err := r.Create(context.Background(), "BEPS Scan #1", domain.RecordOptions{Keywords: []string{"afm"}}, CreateOptions{CheckExisting: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID != "d/BEPS Scan #1" {
		t.Fatalf("unexpected record %+v", rec)
	}

	want := []string{
		"data view beps_scan__1",
		"data create BEPS Scan #1 -a beps_scan__1 -k afm",
	}
	if diff := cmp.Diff(want, c.commands()); diff != "" {
		t.Fatalf("unexpected commands (-want +got):\n%s", diff)
	}
}

func TestRecords_CreateConflict(t *testing.T) {
	c := &scriptedClient{handle: func(args []string) (domain.Reply, error) {
		return domain.Reply{Kind: domain.ReplyRecord, Records: []domain.Record{{ID: "d/1"}}}, nil
	}}
	r := NewRecords(c, nil, nil)

	_, err := r.Create(context.Background(), "scan", domain.RecordOptions{}, CreateOptions{CheckExisting: true})
	if !domain.IsKind(err, domain.KindConflict) || !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if c.count("data create") != 0 {
		t.Fatalf("expected no create after conflict")
	}
}

func TestRecords_CreateMissingMetadataFile(t *testing.T) {
	c := &scriptedClient{handle: datafedHandler}
	r := NewRecords(c, metafile.NewSource(), nil)

	missing := filepath.Join(t.TempDir(), "nope.json")
	_, err := r.Create(context.Background(), "scan", domain.RecordOptions{MetadataFile: missing}, CreateOptions{})
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if len(c.commands()) != 0 {
		t.Fatalf("expected no commands, got %v", c.commands())
	}
}

func TestRecords_UpdateNothing(t *testing.T) {
	c := &scriptedClient{}
	_, err := NewRecords(c, nil, nil).Update(context.Background(), "d/1", domain.RecordOptions{Project: "p/x"})
	if !errors.Is(err, domain.ErrNothingToUpdate) {
		t.Fatalf("expected ErrNothingToUpdate, got %v", err)
	}
}

func TestRecords_Update(t *testing.T) {
	c := &scriptedClient{handle: func(args []string) (domain.Reply, error) {
		return domain.Reply{Kind: domain.ReplyRecord, Records: []domain.Record{{ID: "d/1", Title: "new"}}}, nil
	}}

	rec, err := NewRecords(c, nil, nil).Update(context.Background(), "d/1", domain.RecordOptions{Title: "new", ClearDependencies: true})
	if err != nil || rec.Title != "new" {
		t.Fatalf("unexpected result %+v %v", rec, err)
	}
	if got := c.commands()[0]; got != "data update -t new -C d/1" {
		t.Fatalf("unexpected command %q", got)
	}
}

func TestRecords_Metadata(t *testing.T) {
	c := &scriptedClient{handle: func(args []string) (domain.Reply, error) {
		if args[2] == "missing" {
			return domain.Reply{}, remoteErr("does not exist")
		}
		return domain.Reply{Kind: domain.ReplyRecord, Records: []domain.Record{{
			ID:       "d/1",
			Metadata: map[string]any{"instrument": "Cypher", "scan": map[string]any{"lines": 256.0}},
		}}}, nil
	}}
	r := NewRecords(c, nil, nil)

	res, err := r.Metadata(context.Background(), "d/1", []string{"$.instrument", "$.scan.lines"})
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	var got []string
	for _, x := range res {
		got = append(got, x.Value)
	}
	if strings.Join(got, ",") != "Cypher,256" {
		t.Fatalf("unexpected values %v", got)
	}

	if _, err := r.Metadata(context.Background(), "missing", []string{"$.a"}); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

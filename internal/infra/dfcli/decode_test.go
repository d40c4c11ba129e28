package dfcli

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/aalvaropc/dfkit/internal/domain"
)

func TestDecodeRecordReply(t *testing.T) {
	out := []byte(`{"data":[{"id":"d/123","alias":"scan_1","title":"Scan 1","owner":"u/jdoe",
		"creator":"u/jdoe","size":"2048","repoId":"repo/cades","keyw":"afm, beps",
		"ct":1577934245,"ut":"1577934300","dt":0,"metadata":"{\"temp\":300,\"tip\":{\"k\":2.5}}"}]}`)

	reply, err := decodeReply("data view", out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Kind != domain.ReplyRecord || len(reply.Records) != 1 {
		t.Fatalf("expected one record, got %+v", reply)
	}

	rec := reply.Records[0]
	want := domain.Record{
		ID:        "d/123",
		Alias:     "scan_1",
		Title:     "Scan 1",
		Owner:     "u/jdoe",
		Creator:   "u/jdoe",
		Size:      2048,
		RepoID:    "repo/cades",
		Keywords:  []string{"afm", "beps"},
		CreatedAt: time.Unix(1577934245, 0).UTC(),
		UpdatedAt: time.Unix(1577934300, 0).UTC(),
		Metadata:  map[string]any{"temp": float64(300), "tip": map[string]any{"k": 2.5}},
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("unexpected record (-want +got):\n%s", diff)
	}
}

func TestDecodeRecordBadMetadata(t *testing.T) {
	_, err := decodeReply("data view", []byte(`{"data":[{"id":"d/1","metadata":"{not json"}]}`))
	if err == nil {
		t.Fatalf("expected error for invalid metadata")
	}
}

func TestDecodeListingReply(t *testing.T) {
	out := []byte(`{"item":[{"id":"d/1","title":"a","alias":"a"},{"id":"c/2","title":"b"}],"offset":20,"count":2,"total":"42"}`)
	reply, err := decodeReply("ls", out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Kind != domain.ReplyListing {
		t.Fatalf("expected listing, got %s", reply.Kind)
	}
	l := reply.Listing
	if len(l.Items) != 2 || l.Offset != 20 || l.Count != 2 || l.Total != 42 {
		t.Fatalf("unexpected listing %+v", l)
	}
}

func TestDecodeEmptyListing(t *testing.T) {
	reply, err := decodeReply("ls", []byte(`{"item":[]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Kind != domain.ReplyListing || reply.Listing.Total != 0 {
		t.Fatalf("expected empty listing, got %+v", reply)
	}
}

func TestDecodeEmptyReplies(t *testing.T) {
	cases := []struct {
		command string
		in      string
		want    domain.ReplyKind
	}{
		{"ls", `{}`, domain.ReplyListing},
		{"ls", ``, domain.ReplyListing},
		{"ls", `{"offset":0}`, domain.ReplyListing},
		{"ls c/empty", `{}`, domain.ReplyListing},
		{"x", `{"msg_type":"ListingReply"}`, domain.ReplyListing},
		{"data view", `{}`, domain.ReplyRecord},
		{"data put", `{}`, domain.ReplyTransfer},
		{"coll add", `{}`, domain.ReplyAck},
	}
	for _, c := range cases {
		reply, err := decodeReply(c.command, []byte(c.in))
		if err != nil {
			t.Fatalf("%s %q: unexpected error: %v", c.command, c.in, err)
		}
		if reply.Kind != c.want {
			t.Errorf("%s %q decoded as %s, want %s", c.command, c.in, reply.Kind, c.want)
		}
		if c.want == domain.ReplyListing && (reply.Listing.Total != 0 || len(reply.Listing.Items) != 0) {
			t.Errorf("%s %q: expected empty listing, got %+v", c.command, c.in, reply.Listing)
		}
	}
}

func TestDecodeTransferReply(t *testing.T) {
	cases := []struct {
		in   string
		want domain.TransferStatus
	}{
		{
			in:   `{"xfr":[{"id":"task/1","status":3,"mode":"XM_PUT","repPath":"/repo/d/1","locPath":"/tmp/a.h5"}]}`,
			want: domain.TransferSucceeded,
		},
		{
			in:   `{"task":[{"id":"task/2","status":"TS_FAILED","msg":"globus error"}]}`,
			want: domain.TransferFailed,
		},
		{
			in:   `{"xfr":[{"id":"task/3","status":"ACTIVE"}]}`,
			want: domain.TransferActive,
		},
	}
	for _, c := range cases {
		in, want := c.in, c.want
		reply, err := decodeReply("data put", []byte(in))
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", in, err)
		}
		if reply.Kind != domain.ReplyTransfer || len(reply.Transfers) != 1 {
			t.Fatalf("expected one transfer for %s", in)
		}
		if got := reply.Transfers[0].Status; got != want {
			t.Errorf("status for %s = %s, want %s", in, got, want)
		}
	}
}

func TestDecodeErrorReply(t *testing.T) {
	for _, in := range []string{
		`{"message":"Record d/9 does not exist"}`,
		`{"errMsg":"Record d/9 does not exist"}`,
		`{"err_msg":"Record d/9 does not exist"}`,
	} {
		_, err := decodeReply("data view", []byte(in))
		var re *domain.RemoteError
		if !errors.As(err, &re) {
			t.Fatalf("expected RemoteError for %s, got %v", in, err)
		}
		if re.Message != "Record d/9 does not exist" {
			t.Fatalf("unexpected message %q", re.Message)
		}
	}
}

func TestDecodeOtherReplies(t *testing.T) {
	cases := []struct {
		in   string
		kind domain.ReplyKind
	}{
		{``, domain.ReplyAck},
		{`{}`, domain.ReplyAck},
		{`{"ep":"1646e89e-f4f0-11e9-9944-0a8c187e8c12"}`, domain.ReplyEndpoint},
		{`{"uid":"u/jdoe"}`, domain.ReplyUser},
		{`{"user":[{"uid":"u/jdoe","name":"J Doe"}]}`, domain.ReplyUser},
	}
	for _, c := range cases {
		reply, err := decodeReply("x", []byte(c.in))
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", c.in, err)
		}
		if reply.Kind != c.kind {
			t.Errorf("kind for %q = %s, want %s", c.in, reply.Kind, c.kind)
		}
	}
}

func TestDecodeNotJSON(t *testing.T) {
	if _, err := decodeReply("x", []byte("Welcome to DataFed")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestCommandName(t *testing.T) {
	cases := map[string][]string{
		"data view":  {"data", "view", "d/1"},
		"data put":   {"data", "put", "--wait", "d/1", "/x"},
		"ls":         {"ls", "-O", "2", "c/1"},
		"ep default": {"ep", "default", "set", "uuid"},
		"":           nil,
	}
	for want, args := range cases {
		if got := commandName(args); got != want {
			t.Errorf("commandName(%v) = %q, want %q", args, got, want)
		}
	}
}

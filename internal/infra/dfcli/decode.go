package dfcli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aalvaropc/dfkit/internal/domain"
)

// wireReply is the union of the script-mode JSON replies dfkit understands.
// Field names follow the protobuf JSON mapping; snake_case spellings emitted
// by older clients are accepted as well.
type wireReply struct {
	Data []wireRecord `json:"data"`

	Item   []wireItem `json:"item"`
	Offset *flexInt   `json:"offset"`
	Count  *flexInt   `json:"count"`
	Total  *flexInt   `json:"total"`

	Xfr  []wireTransfer `json:"xfr"`
	Task []wireTransfer `json:"task"`

	Ep       string `json:"ep"`
	Endpoint string `json:"endpoint"`

	UID  string    `json:"uid"`
	User []wireUID `json:"user"`

	Message string `json:"message"`
	ErrMsg  string `json:"errMsg"`
	ErrMsg2 string `json:"err_msg"`

	MsgType string `json:"msg_type"`
}

// Protobuf JSON omits empty repeated fields and zero numbers, so an empty
// reply prints as {}. The message type, or else the command, says what it is.
var msgTypeKinds = map[string]domain.ReplyKind{
	"ListingReply":    domain.ReplyListing,
	"RecordDataReply": domain.ReplyRecord,
	"DataPutReply":    domain.ReplyTransfer,
	"DataGetReply":    domain.ReplyTransfer,
	"TaskDataReply":   domain.ReplyTransfer,
}

var commandKinds = map[string]domain.ReplyKind{
	"ls":          domain.ReplyListing,
	"data view":   domain.ReplyRecord,
	"data create": domain.ReplyRecord,
	"data update": domain.ReplyRecord,
	"data put":    domain.ReplyTransfer,
	"data get":    domain.ReplyTransfer,
}

// emptyReply is the reply for output that carries no known field.
func emptyReply(command, msgType string) domain.Reply {
	kind, ok := msgTypeKinds[msgType]
	if !ok {
		kind, ok = commandKinds[command]
	}
	if !ok {
		// "ls <id>" without flags keeps the id as a second word.
		first, _, _ := strings.Cut(command, " ")
		kind, ok = commandKinds[first]
	}
	if !ok {
		kind = domain.ReplyAck
	}
	r := domain.Reply{Kind: kind}
	if kind == domain.ReplyListing {
		r.Listing = domain.Listing{Items: []domain.ListItem{}}
	}
	return r
}

type wireRecord struct {
	ID       string  `json:"id"`
	Alias    string  `json:"alias"`
	Title    string  `json:"title"`
	Desc     string  `json:"desc"`
	Owner    string  `json:"owner"`
	Creator  string  `json:"creator"`
	Source   string  `json:"source"`
	Size     flexInt `json:"size"`
	RepoID   string  `json:"repoId"`
	RepoID2  string  `json:"repo_id"`
	Keywords string  `json:"keyw"`
	CT       flexInt `json:"ct"`
	UT       flexInt `json:"ut"`
	DT       flexInt `json:"dt"`
	Metadata string  `json:"metadata"`
}

type wireItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Alias string `json:"alias"`
	Owner string `json:"owner"`
}

type wireTransfer struct {
	ID      string     `json:"id"`
	Status  flexStatus `json:"status"`
	Mode    string     `json:"mode"`
	RepPath string     `json:"repPath"`
	LocPath string     `json:"locPath"`
	ErrMsg  string     `json:"errMsg"`
	Msg     string     `json:"msg"`
}

type wireUID struct {
	UID string `json:"uid"`
}

// flexInt accepts JSON numbers and numeric strings (64-bit protobuf fields are strings).
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexInt(n)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	*f = flexInt(v)
	return nil
}

// flexStatus accepts numeric task status codes and enum names like "TS_SUCCEEDED".
type flexStatus domain.TransferStatus

var statusNames = map[string]domain.TransferStatus{
	"INITIALIZED": domain.TransferInitialized,
	"ACTIVE":      domain.TransferActive,
	"INACTIVE":    domain.TransferInactive,
	"SUCCEEDED":   domain.TransferSucceeded,
	"FAILED":      domain.TransferFailed,
	"READY":       domain.TransferInitialized,
	"BLOCKED":     domain.TransferInactive,
	"RUNNING":     domain.TransferActive,
	"ERROR":       domain.TransferFailed,
}

func (f *flexStatus) UnmarshalJSON(b []byte) error {
	var n flexInt
	if err := n.UnmarshalJSON(b); err == nil {
		*f = flexStatus(n)
		return nil
	}
	s := strings.ToUpper(strings.Trim(string(b), `"`))
	s = strings.TrimPrefix(s, "TS_")
	st, ok := statusNames[s]
	if !ok {
		return fmt.Errorf("unknown transfer status %s", b)
	}
	*f = flexStatus(st)
	return nil
}

// decodeReply maps script-mode stdout into a domain reply. A reply carrying
// an error message is returned as a *domain.RemoteError.
func decodeReply(command string, out []byte) (domain.Reply, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return emptyReply(command, ""), nil
	}

	var w wireReply
	if err := json.Unmarshal(out, &w); err != nil {
		return domain.Reply{}, fmt.Errorf("decode reply of %q: %w", command, err)
	}

	if msg := firstNonEmpty(w.Message, w.ErrMsg, w.ErrMsg2); msg != "" {
		return domain.Reply{}, &domain.RemoteError{Command: command, Message: msg}
	}

	switch {
	case w.Data != nil:
		recs := make([]domain.Record, 0, len(w.Data))
		for _, r := range w.Data {
			rec, err := r.toDomain()
			if err != nil {
				return domain.Reply{}, fmt.Errorf("decode record %s: %w", r.ID, err)
			}
			recs = append(recs, rec)
		}
		return domain.Reply{Kind: domain.ReplyRecord, Records: recs}, nil

	case w.Item != nil || w.Total != nil || msgTypeKinds[w.MsgType] == domain.ReplyListing:
		l := domain.Listing{Items: make([]domain.ListItem, 0, len(w.Item))}
		for _, it := range w.Item {
			l.Items = append(l.Items, domain.ListItem{ID: it.ID, Title: it.Title, Alias: it.Alias, Owner: it.Owner})
		}
		if w.Offset != nil {
			l.Offset = int(*w.Offset)
		}
		if w.Count != nil {
			l.Count = int(*w.Count)
		}
		l.Total = len(l.Items)
		if w.Total != nil {
			l.Total = int(*w.Total)
		}
		return domain.Reply{Kind: domain.ReplyListing, Listing: l}, nil

	case w.Xfr != nil || w.Task != nil:
		src := w.Xfr
		if src == nil {
			src = w.Task
		}
		xs := make([]domain.Transfer, 0, len(src))
		for _, x := range src {
			xs = append(xs, domain.Transfer{
				ID:     x.ID,
				Status: domain.TransferStatus(x.Status),
				Mode:   x.Mode,
				Remote: x.RepPath,
				Local:  x.LocPath,
				ErrMsg: firstNonEmpty(x.ErrMsg, x.Msg),
			})
		}
		return domain.Reply{Kind: domain.ReplyTransfer, Transfers: xs}, nil

	case w.Ep != "" || w.Endpoint != "":
		return domain.Reply{Kind: domain.ReplyEndpoint, Endpoint: firstNonEmpty(w.Ep, w.Endpoint)}, nil

	case w.UID != "" || len(w.User) > 0:
		uid := w.UID
		if uid == "" {
			uid = w.User[0].UID
		}
		return domain.Reply{Kind: domain.ReplyUser, UID: uid}, nil
	}

	return emptyReply(command, w.MsgType), nil
}

func (r wireRecord) toDomain() (domain.Record, error) {
	rec := domain.Record{
		ID:          r.ID,
		Alias:       r.Alias,
		Title:       r.Title,
		Description: r.Desc,
		Owner:       r.Owner,
		Creator:     r.Creator,
		Source:      r.Source,
		Size:        int64(r.Size),
		RepoID:      firstNonEmpty(r.RepoID, r.RepoID2),
		CreatedAt:   unixTime(r.CT),
		UpdatedAt:   unixTime(r.UT),
		UploadedAt:  unixTime(r.DT),
	}

	for _, k := range strings.Split(r.Keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			rec.Keywords = append(rec.Keywords, k)
		}
	}

	if strings.TrimSpace(r.Metadata) != "" {
		if err := json.Unmarshal([]byte(r.Metadata), &rec.Metadata); err != nil {
			return domain.Record{}, fmt.Errorf("metadata is not valid JSON: %w", err)
		}
	}
	return rec, nil
}

func unixTime(v flexInt) time.Time {
	if v <= 0 {
		return time.Time{}
	}
	return time.Unix(int64(v), 0).UTC()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

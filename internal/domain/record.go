package domain

import (
	"fmt"
	"strings"
	"time"
)

// Record is a DataFed data record as returned by "data view".
type Record struct {
	ID          string
	Alias       string
	Title       string
	Description string
	Owner       string
	Creator     string
	Source      string
	Size        int64
	RepoID      string
	Keywords    []string

	CreatedAt  time.Time
	UpdatedAt  time.Time
	UploadedAt time.Time

	Metadata map[string]any
}

// Summary renders the fields people look at when checking a record.
func (r Record) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Record id:   %s\n", r.ID)
	fmt.Fprintf(&b, "Alias:       %s\n", r.Alias)
	fmt.Fprintf(&b, "Title:       %s\n", r.Title)
	fmt.Fprintf(&b, "Owner:       %s\n", r.Owner)
	fmt.Fprintf(&b, "Size:        %s\n", FormatSize(r.Size, 2))
	created := "-"
	if !r.CreatedAt.IsZero() {
		created = r.CreatedAt.Format(time.DateTime)
	}
	fmt.Fprintf(&b, "Created On:  %s\n", created)
	return b.String()
}

// ListItem is one entry of a collection listing.
type ListItem struct {
	ID    string
	Title string
	Alias string
	Owner string
}

// Listing is the result of "ls" on a collection.
type Listing struct {
	Items  []ListItem
	Offset int
	Count  int
	Total  int
}

// TransferStatus mirrors the DataFed task status codes.
type TransferStatus int

const (
	TransferInitialized TransferStatus = 0
	TransferActive      TransferStatus = 1
	TransferInactive    TransferStatus = 2
	TransferSucceeded   TransferStatus = 3
	TransferFailed      TransferStatus = 4
)

func (s TransferStatus) String() string {
	switch s {
	case TransferInitialized:
		return "initialized"
	case TransferActive:
		return "active"
	case TransferInactive:
		return "inactive"
	case TransferSucceeded:
		return "succeeded"
	case TransferFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Transfer is a Globus transfer task started by "data put" or "data get".
type Transfer struct {
	ID     string
	Status TransferStatus
	Mode   string
	Remote string
	Local  string
	ErrMsg string
}

// ReplyKind classifies a decoded client reply.
type ReplyKind string

const (
	ReplyAck      ReplyKind = "ack"
	ReplyRecord   ReplyKind = "record"
	ReplyListing  ReplyKind = "listing"
	ReplyTransfer ReplyKind = "transfer"
	ReplyEndpoint ReplyKind = "endpoint"
	ReplyUser     ReplyKind = "user"
)

// Reply is a successful response of the DataFed client.
type Reply struct {
	Kind      ReplyKind
	Records   []Record
	Listing   Listing
	Transfers []Transfer
	Endpoint  string
	UID       string
}

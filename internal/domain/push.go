package domain

import "time"

// PushOutcome is what happened to one file during a directory push.
type PushOutcome string

const (
	PushCreated PushOutcome = "created"
	PushSkipped PushOutcome = "skipped"
	PushFailed  PushOutcome = "failed"
)

// PushResult records the handling of a single data file.
type PushResult struct {
	Path       string         `json:"path"`
	Alias      string         `json:"alias"`
	RecordID   string         `json:"record_id,omitempty"`
	Outcome    PushOutcome    `json:"outcome"`
	Message    string         `json:"message,omitempty"`
	Transfer   TransferStatus `json:"transfer_status,omitempty"`
	DurationMS int64          `json:"duration_ms"`
}

// PushRun is the persisted artifact of a directory push.
type PushRun struct {
	ID         string       `json:"id"`
	Dir        string       `json:"dir"`
	Collection string       `json:"collection,omitempty"`
	Endpoint   string       `json:"endpoint,omitempty"`
	Workers    int          `json:"workers"`
	StartedAt  time.Time    `json:"started_at"`
	EndedAt    time.Time    `json:"ended_at"`
	Results    []PushResult `json:"results"`
}

// Count returns how many results ended with outcome o.
func (r PushRun) Count(o PushOutcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// RunRef is a lightweight reference to a persisted push run.
type RunRef struct {
	ID        string    `json:"id"`
	File      string    `json:"file"`
	Dir       string    `json:"dir"`
	Created   int       `json:"created"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	StartedAt time.Time `json:"started_at"`
}

// WorkspaceSpec describes where a workspace is created.
type WorkspaceSpec struct {
	Root string
}

// LedgerEntry remembers a file that already has a DataFed record.
type LedgerEntry struct {
	RecordID string    `json:"record_id"`
	Alias    string    `json:"alias"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"mod_time"`
	PushedAt time.Time `json:"pushed_at"`
}

package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/ports"
)

const bucketName = "pushed"

// BoltLedger keeps one entry per pushed file, keyed by absolute path.
type BoltLedger struct {
	db *bolt.DB
}

// Open creates the ledger database and its bucket if needed.
func Open(path string) (*BoltLedger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &domain.OpError{Op: "ledger.mkdir", Kind: domain.KindExecution, Path: path, Err: err}
	}

	opts := *bolt.DefaultOptions
	opts.Timeout = 2 * time.Second

	db, err := bolt.Open(path, 0o600, &opts)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "ledger.open",
			Kind: domain.KindExecution,
			Path: path,
			Err:  fmt.Errorf("open ledger (is another dfkit process running?): %w", err),
		}
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, &domain.OpError{Op: "ledger.init", Kind: domain.KindExecution, Path: path, Err: err}
	}

	return &BoltLedger{db: db}, nil
}

var _ ports.Ledger = (*BoltLedger)(nil)

func (l *BoltLedger) Lookup(path string, info os.FileInfo) (domain.LedgerEntry, bool, error) {
	key, err := keyFor(path)
	if err != nil {
		return domain.LedgerEntry{}, false, err
	}

	var entry domain.LedgerEntry
	found := false
	err = l.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket([]byte(bucketName)).Get(key)
		if val == nil {
			return nil
		}
		found = true
		return json.Unmarshal(val, &entry)
	})
	if err != nil {
		return domain.LedgerEntry{}, false, &domain.OpError{Op: "ledger.lookup", Kind: domain.KindExecution, Path: path, Err: err}
	}
	if !found {
		return domain.LedgerEntry{}, false, nil
	}

	// A rewritten file needs a new record.
	if info != nil && (info.Size() != entry.Size || !info.ModTime().Equal(entry.ModTime)) {
		return entry, false, nil
	}
	return entry, true, nil
}

func (l *BoltLedger) Remember(path string, entry domain.LedgerEntry) error {
	key, err := keyFor(path)
	if err != nil {
		return err
	}
	val, err := json.Marshal(entry)
	if err != nil {
		return &domain.OpError{Op: "ledger.marshal", Kind: domain.KindExecution, Path: path, Err: err}
	}

	err = l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put(key, val)
	})
	if err != nil {
		return &domain.OpError{Op: "ledger.remember", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return nil
}

func (l *BoltLedger) Close() error {
	return l.db.Close()
}

func keyFor(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &domain.OpError{Op: "ledger.key", Kind: domain.KindInvalidArgument, Path: path, Err: err}
	}
	return []byte(filepath.Clean(abs)), nil
}

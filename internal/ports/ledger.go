package ports

import (
	"os"

	"github.com/aalvaropc/dfkit/internal/domain"
)

// Ledger remembers which local files already have a DataFed record.
type Ledger interface {
	// Lookup reports an entry only if it still describes the file on disk.
	Lookup(path string, info os.FileInfo) (domain.LedgerEntry, bool, error)
	Remember(path string, entry domain.LedgerEntry) error
	Close() error
}

package db

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/hvariant/shreddit2/internal/errors"
)

// Ledger records shred runs in a SQLite database.
type Ledger struct {
	DB *sql.DB

	// Now defaults to time.Now.
	Now func() time.Time
}

// Open initializes the ledger database at path.
func Open(path string) (*Ledger, error) {
	database, err := Init(path)
	if err != nil {
		return nil, err
	}
	return &Ledger{DB: database}, nil
}

// OpenExisting opens a ledger that must already exist at path.
// Nothing is created when it does not.
func OpenExisting(path string) (*Ledger, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("ledger not found: %s", path))
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if info.IsDir() {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("ledger path is a directory: %s", path))
	}
	return Open(path)
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.DB.Close()
}

func (l *Ledger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Start opens a run and returns its ID.
func (l *Ledger) Start(username string) (string, error) {
	run, err := StartRun(l.DB, username, l.now())
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// Record stores one deleted item under runID.
func (l *Ledger) Record(runID, fullname, kind, permalink string, createdUTC float64) error {
	return RecordShredded(l.DB, &ShreddedItem{
		RunID:      runID,
		Fullname:   fullname,
		Kind:       kind,
		Permalink:  permalink,
		CreatedUTC: createdUTC,
		DeletedAt:  l.now().Unix(),
	})
}

// Finish closes runID with its final counts.
func (l *Ledger) Finish(runID string, comments, submissions int, runErr error) error {
	return FinishRun(l.DB, runID, comments, submissions, runErr, l.now())
}

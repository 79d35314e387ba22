package db

import (
	"crypto/rand"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hvariant/shreddit2/internal/errors"
)

// Run is one shred invocation.
type Run struct {
	ID                 string  `json:"id"`
	Username           string  `json:"username"`
	StartedAt          int64   `json:"started_at"`
	FinishedAt         *int64  `json:"finished_at,omitempty"`
	CommentsDeleted    int     `json:"comments_deleted"`
	SubmissionsDeleted int     `json:"submissions_deleted"`
	Error              *string `json:"error,omitempty"`
}

// ShreddedItem is one comment or submission deleted during a run.
type ShreddedItem struct {
	RunID      string  `json:"run_id"`
	Seq        int     `json:"seq"`
	Fullname   string  `json:"fullname"`
	Kind       string  `json:"kind"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
	DeletedAt  int64   `json:"deleted_at"`
}

// NewRunID returns a ULID, so runs sort by start time.
func NewRunID(now time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

// StartRun inserts an open run for username.
func StartRun(db *sql.DB, username string, now time.Time) (*Run, error) {
	run := &Run{
		ID:        NewRunID(now),
		Username:  username,
		StartedAt: now.Unix(),
	}

	_, err := db.Exec(`INSERT INTO runs (id, username, started_at) VALUES (?, ?, ?)`,
		run.ID, run.Username, run.StartedAt)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return run, nil
}

// RecordShredded appends item to its run. Seq is assigned from the run's current count.
func RecordShredded(db *sql.DB, item *ShreddedItem) error {
	_, err := db.Exec(`
		INSERT INTO shredded (run_id, seq, fullname, kind, permalink, created_utc, deleted_at)
		VALUES (?, (SELECT COUNT(*) FROM shredded WHERE run_id = ?), ?, ?, ?, ?, ?)
	`, item.RunID, item.RunID, item.Fullname, item.Kind, item.Permalink, item.CreatedUTC, item.DeletedAt)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// FinishRun closes a run with its final counts. runErr, if non-nil, is stored as text.
func FinishRun(db *sql.DB, runID string, comments, submissions int, runErr error, now time.Time) error {
	var errText sql.NullString
	if runErr != nil {
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}

	result, err := db.Exec(`
		UPDATE runs
		SET finished_at = ?, comments_deleted = ?, submissions_deleted = ?, error = ?
		WHERE id = ?
	`, now.Unix(), comments, submissions, errText, runID)
	if err != nil {
		return errors.NewInternal(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rows == 0 {
		return errors.NewNotFound(runID)
	}
	return nil
}

// GetRun retrieves a run by ID.
func GetRun(db *sql.DB, id string) (*Run, error) {
	row := db.QueryRow(`
		SELECT id, username, started_at, finished_at, comments_deleted, submissions_deleted, error
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return run, nil
}

// ListRuns returns all runs, most recent first.
func ListRuns(db *sql.DB) ([]Run, error) {
	rows, err := db.Query(`
		SELECT id, username, started_at, finished_at, comments_deleted, submissions_deleted, error
		FROM runs ORDER BY started_at DESC, id DESC
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return runs, nil
}

// ListShredded returns the items of a run in deletion order.
func ListShredded(db *sql.DB, runID string) ([]ShreddedItem, error) {
	rows, err := db.Query(`
		SELECT run_id, seq, fullname, kind, permalink, created_utc, deleted_at
		FROM shredded WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	items := []ShreddedItem{}
	for rows.Next() {
		var it ShreddedItem
		if err := rows.Scan(&it.RunID, &it.Seq, &it.Fullname, &it.Kind, &it.Permalink, &it.CreatedUTC, &it.DeletedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var finishedAt sql.NullInt64
	var errText sql.NullString

	if err := s.Scan(&run.ID, &run.Username, &run.StartedAt, &finishedAt,
		&run.CommentsDeleted, &run.SubmissionsDeleted, &errText); err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Int64
	}
	if errText.Valid {
		run.Error = &errText.String
	}
	return &run, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/wordcrawl"
)

// Compile-time interface verification.
var _ wordcrawl.Store = (*EntryStore)(nil)

// iterateBatchSize bounds how many rows Iterate holds before calling back.
// Rows are fully read before fn runs so fn may write to the store.
const iterateBatchSize = 1000

// EntryStore implements wordcrawl.Store using SQLite.
type EntryStore struct {
	db *DB
}

// NewEntryStore creates a new EntryStore.
func NewEntryStore(db *DB) *EntryStore {
	return &EntryStore{db: db}
}

// EntryCounts summarizes the store contents.
type EntryCounts struct {
	Total       int
	Completed   int
	LastUpdated time.Time
}

// Pending returns the number of entries not yet completed.
func (c EntryCounts) Pending() int {
	return c.Total - c.Completed
}

// Get retrieves the entry stored under hash.
func (s *EntryStore) Get(ctx context.Context, hash string) (*wordcrawl.Entry, error) {
	var entry wordcrawl.Entry
	var completed int

	err := s.db.QueryRowContext(ctx, `
		SELECT hash, url, completed
		FROM entries
		WHERE hash = ?
	`, hash).Scan(&entry.Hash, &entry.URL, &completed)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, wordcrawl.Errorf(wordcrawl.ENOTFOUND, "entry not found")
	}
	if err != nil {
		return nil, err
	}

	entry.Completed = completed != 0
	return &entry, nil
}

// Put inserts or updates an entry. A completed entry stays completed.
func (s *EntryStore) Put(ctx context.Context, entry *wordcrawl.Entry) error {
	if entry == nil || entry.Hash == "" {
		return wordcrawl.Errorf(wordcrawl.EINVALID, "entry hash required")
	}
	if entry.URL == "" {
		return wordcrawl.Errorf(wordcrawl.EINVALID, "entry URL required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (hash, url, completed, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			url = excluded.url,
			completed = MAX(entries.completed, excluded.completed),
			updated_at = excluded.updated_at
	`, entry.Hash, entry.URL, boolToInt(entry.Completed), formatTimestamp(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to store entry %s: %w", entry.URL, err)
	}
	return nil
}

// Iterate calls fn for every entry in insertion order.
func (s *EntryStore) Iterate(ctx context.Context, fn func(*wordcrawl.Entry) error) error {
	var lastRowID int64
	for {
		batch, next, err := s.readBatch(ctx, lastRowID)
		if err != nil {
			return err
		}
		for _, entry := range batch {
			if err := fn(entry); err != nil {
				return err
			}
		}
		if len(batch) < iterateBatchSize {
			return nil
		}
		lastRowID = next
	}
}

func (s *EntryStore) readBatch(ctx context.Context, afterRowID int64) ([]*wordcrawl.Entry, int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rowid, hash, url, completed
		FROM entries
		WHERE rowid > ?
		ORDER BY rowid
		LIMIT ?
	`, afterRowID, iterateBatchSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []*wordcrawl.Entry
	last := afterRowID
	for rows.Next() {
		var entry wordcrawl.Entry
		var completed int
		if err := rows.Scan(&last, &entry.Hash, &entry.URL, &completed); err != nil {
			return nil, 0, err
		}
		entry.Completed = completed != 0
		entries = append(entries, &entry)
	}
	return entries, last, rows.Err()
}

// Flush checkpoints the write-ahead log into the main database file.
func (s *EntryStore) Flush(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(FULL)"); err != nil {
		return fmt.Errorf("failed to checkpoint: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *EntryStore) Close() error {
	return s.db.Close()
}

// Count returns how many entries are stored and how many are completed.
func (s *EntryStore) Count(ctx context.Context) (EntryCounts, error) {
	var counts EntryCounts
	var lastUpdated string

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(completed), 0), COALESCE(MAX(updated_at), '')
		FROM entries
	`).Scan(&counts.Total, &counts.Completed, &lastUpdated)
	if err != nil {
		return EntryCounts{}, err
	}

	if lastUpdated != "" {
		t, err := parseTimestamp(lastUpdated, "updated_at")
		if err != nil {
			return EntryCounts{}, err
		}
		counts.LastUpdated = t
	}
	return counts, nil
}

// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

/*
spool.go - offline spool for event batches that fail persistence twice in a
row (§7: "a failed batch is retried once... skipped and logged with its
contents serialized to an offline spool for later replay").

Grounded on internal/wal's BadgerDB-backed durability pattern: entries are
written with fsync before they're considered safe, and a prefix-scanned key
space lets the replay pass enumerate everything still outstanding. Unlike
the WAL, the spool has no NATS confirmation step - an entry is removed as
soon as a replay attempt's InsertEvents call succeeds.
*/

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/fieldreport/sentinel/internal/logging"
	"github.com/fieldreport/sentinel/internal/models"
)

const spoolKeyPrefix = "spool:"

// Spool is a durable holding area for event batches that could not be
// persisted after the orchestrator's single retry (§7). It is opened
// alongside the main DuckDB store but is independent of it - a spool
// entry survives even if the DuckDB file is unavailable.
type Spool struct {
	db *badger.DB
}

// SpoolEntry is one failed batch, recorded for later replay.
type SpoolEntry struct {
	ID         string         `json:"id"`
	CycleID    string         `json:"cycle_id"`
	Events     []*models.Event `json:"events"`
	FailureErr string         `json:"failure_err"`
	SpooledAt  time.Time      `json:"spooled_at"`
}

// OpenSpool opens (or creates) the BadgerDB-backed spool at path.
func OpenSpool(path string) (*Spool, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open spool at %s: %w", path, err)
	}
	return &Spool{db: db}, nil
}

// Close releases the spool's underlying BadgerDB handle.
func (s *Spool) Close() error {
	return s.db.Close()
}

// Write serializes a failed batch to the spool. Called when InsertEvents
// fails on both the initial attempt and its single retry.
func (s *Spool) Write(ctx context.Context, cycleID string, events []*models.Event, failureErr error) (string, error) {
	entry := &SpoolEntry{
		ID:        fmt.Sprintf("%s-%d", cycleID, time.Now().UnixNano()),
		CycleID:   cycleID,
		Events:    events,
		SpooledAt: time.Now().UTC(),
	}
	if failureErr != nil {
		entry.FailureErr = failureErr.Error()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("marshal spool entry: %w", err)
	}

	key := []byte(spoolKeyPrefix + entry.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return "", fmt.Errorf("write spool entry: %w", err)
	}

	logging.Warn().
		Str("spool_id", entry.ID).
		Str("cycle_id", cycleID).
		Int("event_count", len(events)).
		Msg("batch spooled to offline store after repeated persistence failure")

	return entry.ID, nil
}

// Pending returns every entry currently held in the spool, oldest first.
func (s *Spool) Pending(ctx context.Context) ([]*SpoolEntry, error) {
	var entries []*SpoolEntry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(spoolKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var entry SpoolEntry
				if err := json.Unmarshal(val, &entry); err != nil {
					return err
				}
				entries = append(entries, &entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan spool entries: %w", err)
	}

	// Oldest first so replay restores original cycle ordering where possible.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].SpooledAt.Before(entries[j-1].SpooledAt); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	return entries, nil
}

// Remove deletes a spool entry, called once its events have been
// successfully replayed into the store.
func (s *Spool) Remove(ctx context.Context, id string) error {
	key := []byte(spoolKeyPrefix + id)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Count returns the number of entries currently outstanding in the spool.
func (s *Spool) Count(ctx context.Context) (int, error) {
	entries, err := s.Pending(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// ReplayAll attempts to re-insert every spooled batch into db, removing
// each entry on success and leaving failures in place for a later attempt.
// No sentinel CLI command or flag calls it.
func (s *Spool) ReplayAll(ctx context.Context, db *DB) (replayed, failed int, err error) {
	entries, err := s.Pending(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, entry := range entries {
		if err := db.InsertEvents(ctx, entry.Events); err != nil {
			logging.Error().Err(err).Str("spool_id", entry.ID).Msg("spool replay failed, leaving entry in place")
			failed++
			continue
		}
		if err := s.Remove(ctx, entry.ID); err != nil {
			logging.Warn().Err(err).Str("spool_id", entry.ID).Msg("replayed spool entry but failed to remove it")
		}
		replayed++
	}

	logging.Info().Int("replayed", replayed).Int("failed", failed).Msg("spool replay pass complete")
	return replayed, failed, nil
}

// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldreport/sentinel/internal/cache"
	"github.com/fieldreport/sentinel/internal/models"
	"github.com/fieldreport/sentinel/internal/store"
)

// dedupWindow is the default rolling cache retention (§4.D); entries older
// than this are evicted from the in-memory cache, though the database's
// content_hash uniqueness remains the permanent source of truth regardless
// of cache state.
const dedupWindow = 24 * time.Hour

// defaultCacheCapacity bounds the Bloom/LRU cache size; a cycle's article
// volume is expected to stay well under this across the dedupWindow.
const defaultCacheCapacity = 50_000

// falsePositiveRate is the Bloom filter's configured false-positive rate
// for the fast-path membership test (§4.D: "O(1), no false negatives").
const falsePositiveRate = 0.01

// Index is the Dedup Index (component D): a process-wide cache over
// canonicalized URLs and content hashes, with a read-through against
// internal/store's articles_raw table for cache misses.
type Index struct {
	db        *store.DB
	urlCache  cache.DeduplicationCache
	hashCache cache.DeduplicationCache
}

// New creates an Index backed by db, with fresh URL and content-hash caches.
func New(db *store.DB) *Index {
	return &Index{
		db:        db,
		urlCache:  cache.NewBloomLRU(defaultCacheCapacity, dedupWindow, falsePositiveRate),
		hashCache: cache.NewBloomLRU(defaultCacheCapacity, dedupWindow, falsePositiveRate),
	}
}

// Seen reports whether the canonicalized form of rawURL has already been
// admitted. It does not record the URL - callers that intend to admit an
// article should use Admit instead, which checks and records atomically
// with respect to the in-memory cache.
func (idx *Index) Seen(ctx context.Context, rawURL string) (bool, error) {
	canonical := models.CanonicalizeURL(rawURL)
	if idx.urlCache.Contains(canonical) {
		return true, nil
	}
	return idx.db.ArticleExistsByURL(ctx, canonical)
}

// SeenHash reports whether bodyHash has already been admitted, consulting
// the in-memory cache before falling through to the database.
func (idx *Index) SeenHash(ctx context.Context, bodyHash string) (bool, error) {
	if idx.hashCache.Contains(bodyHash) {
		return true, nil
	}
	return idx.db.ArticleExistsByHash(ctx, bodyHash)
}

// Admit decides whether an article is new. If neither its canonicalized URL
// nor its content hash has been seen, it is recorded in both in-memory
// caches and Admit returns true - the caller is then responsible for
// persisting it via the store (§4.D: "caller persists").
func (idx *Index) Admit(ctx context.Context, a *models.Article) (bool, error) {
	canonical := models.CanonicalizeURL(a.URL)
	a.URL = canonical
	if a.ContentHash == "" {
		a.ContentHash = models.ComputeContentHash(a.Body)
	}

	urlSeen, err := idx.Seen(ctx, canonical)
	if err != nil {
		return false, fmt.Errorf("check url seen: %w", err)
	}
	if urlSeen {
		return false, nil
	}

	hashSeen, err := idx.SeenHash(ctx, a.ContentHash)
	if err != nil {
		return false, fmt.Errorf("check hash seen: %w", err)
	}
	if hashSeen {
		return false, nil
	}

	idx.urlCache.Record(canonical)
	idx.hashCache.Record(a.ContentHash)
	return true, nil
}

// CleanupExpired evicts cache entries older than dedupWindow from both
// caches, returning the total number of entries removed. Intended to be
// called periodically (e.g. once per orchestrator cycle) rather than on
// every lookup.
func (idx *Index) CleanupExpired() int {
	return idx.urlCache.CleanupExpired() + idx.hashCache.CleanupExpired()
}

// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package dedup

import (
	"context"
	"testing"

	"github.com/fieldreport/sentinel/internal/config"
	"github.com/fieldreport/sentinel/internal/models"
	"github.com/fieldreport/sentinel/internal/store"
)

func setupTestIndex(t *testing.T) (*Index, *store.DB) {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Path:          ":memory:",
		MemoryLimit:   "1GB",
		EnableSpatial: true,
		EnableICU:     true,
		EnableJSON:    true,
	}
	db, err := store.New(cfg)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), db
}

func testArticle(url, body string) *models.Article {
	return &models.Article{
		URL:      url,
		Headline: "clash reported",
		Body:     body,
		SourceID: "source-1",
	}
}

func TestAdmitNewArticle(t *testing.T) {
	idx, _ := setupTestIndex(t)
	ctx := context.Background()

	admitted, err := idx.Admit(ctx, testArticle("https://Example.com/A?utm_source=x", "breaking news body"))
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if !admitted {
		t.Error("expected new article to be admitted")
	}
}

func TestAdmitDuplicateURLRejected(t *testing.T) {
	idx, _ := setupTestIndex(t)
	ctx := context.Background()

	a1 := testArticle("https://example.com/a", "body one")
	if _, err := idx.Admit(ctx, a1); err != nil {
		t.Fatalf("admit first: %v", err)
	}

	a2 := testArticle("https://example.com/a?utm_campaign=x", "a different body entirely")
	admitted, err := idx.Admit(ctx, a2)
	if err != nil {
		t.Fatalf("admit second: %v", err)
	}
	if admitted {
		t.Error("expected duplicate-URL (modulo tracking params) article to be rejected")
	}
}

func TestAdmitDuplicateContentHashRejected(t *testing.T) {
	idx, _ := setupTestIndex(t)
	ctx := context.Background()

	a1 := testArticle("https://example.com/first", "identical body text")
	if _, err := idx.Admit(ctx, a1); err != nil {
		t.Fatalf("admit first: %v", err)
	}

	a2 := testArticle("https://example.com/SECOND", "Identical   Body   Text")
	admitted, err := idx.Admit(ctx, a2)
	if err != nil {
		t.Fatalf("admit second: %v", err)
	}
	if admitted {
		t.Error("expected duplicate content hash (modulo whitespace/case) to be rejected")
	}
}

func TestSeenAfterDatabasePersist(t *testing.T) {
	idx, db := setupTestIndex(t)
	ctx := context.Background()

	a := testArticle("https://example.com/persisted", "persisted body")
	admitted, err := idx.Admit(ctx, a)
	if err != nil || !admitted {
		t.Fatalf("admit: admitted=%v err=%v", admitted, err)
	}
	if err := db.UpsertArticle(ctx, a); err != nil {
		t.Fatalf("persist article: %v", err)
	}

	// A fresh Index (cold cache) must still see it via the database read-through.
	cold := New(db)
	seen, err := cold.Seen(ctx, a.URL)
	if err != nil {
		t.Fatalf("seen: %v", err)
	}
	if !seen {
		t.Error("expected cold-cache Seen to find the persisted article via database read-through")
	}
}

func TestSeenHashUnseen(t *testing.T) {
	idx, _ := setupTestIndex(t)
	ctx := context.Background()

	seen, err := idx.SeenHash(ctx, "nonexistent-hash")
	if err != nil {
		t.Fatalf("seen hash: %v", err)
	}
	if seen {
		t.Error("expected unseen hash to report false")
	}
}

func TestCleanupExpiredRunsWithoutError(t *testing.T) {
	idx, _ := setupTestIndex(t)
	ctx := context.Background()

	if _, err := idx.Admit(ctx, testArticle("https://example.com/x", "x body")); err != nil {
		t.Fatalf("admit: %v", err)
	}
	// Nothing should have expired yet; just confirm it runs cleanly.
	_ = idx.CleanupExpired()
}

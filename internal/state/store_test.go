package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestFileStore_RecentIDs_Append(t *testing.T) {
	now := time.Date(2026, 10, 14, 7, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "history", "sent_stories.ndjson")
	store := NewFileStore(path, fixedClock(now), nil)
	ctx := context.Background()

	t.Run("missing file returns empty set", func(t *testing.T) {
		ids, err := store.RecentIDs(ctx, 7*24*time.Hour)
		if err != nil {
			t.Fatalf("RecentIDs() error = %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("RecentIDs() len = %d, want 0", len(ids))
		}
	})

	t.Run("append then read within window", func(t *testing.T) {
		entries := []news.HistoryEntry{
			{ID: "old", URL: "https://a.org/old", Title: "Old", SentAt: now.Add(-10 * 24 * time.Hour)},
			{ID: "recent", URL: "https://a.org/recent", Title: "Recent", SentAt: now.Add(-2 * time.Hour)},
		}
		if err := store.Append(ctx, entries); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if err := store.Append(ctx, []news.HistoryEntry{{ID: "today", SentAt: now}}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}

		ids, err := store.RecentIDs(ctx, 7*24*time.Hour)
		if err != nil {
			t.Fatalf("RecentIDs() error = %v", err)
		}
		if _, ok := ids["old"]; ok {
			t.Error("RecentIDs() should exclude entries outside the window")
		}
		for _, id := range []string{"recent", "today"} {
			if _, ok := ids[id]; !ok {
				t.Errorf("RecentIDs() missing %q", id)
			}
		}

		// Окно применяется только при чтении: старая запись остаётся в файле.
		wide, err := store.Recent(ctx, 30*24*time.Hour)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(wide) != 3 {
			t.Errorf("Recent() len = %d, want 3", len(wide))
		}
		if wide[0].ID != "old" || wide[2].ID != "today" {
			t.Errorf("Recent() should keep append order, got %v", wide)
		}
	})

	t.Run("append empty batch is a no-op", func(t *testing.T) {
		if err := store.Append(ctx, nil); err != nil {
			t.Errorf("Append(nil) error = %v", err)
		}
	})
}

func TestFileStore_SkipsMalformedLines(t *testing.T) {
	now := time.Date(2026, 10, 14, 7, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "history.ndjson")
	content := `{"id":"good","url":"https://a.org/1","title":"Good","sent_at":"2026-10-14T06:00:00Z"}
invalid json {
{"url":"https://a.org/no-id","sent_at":"2026-10-14T06:00:00Z"}

{"id":"good-2","url":"https://a.org/2","title":"Good 2","sent_at":"2026-10-13T06:00:00Z"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write history: %v", err)
	}

	store := NewFileStore(path, fixedClock(now), nil)
	ids, err := store.RecentIDs(context.Background(), 7*24*time.Hour)
	if err != nil {
		t.Fatalf("RecentIDs() should tolerate malformed lines, got %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("RecentIDs() len = %d, want 2", len(ids))
	}
}

func TestMemoryStore(t *testing.T) {
	now := time.Date(2026, 10, 14, 7, 0, 0, 0, time.UTC)
	store := NewMemoryStore(fixedClock(now), news.HistoryEntry{ID: "seed", SentAt: now.Add(-time.Hour)})
	ctx := context.Background()

	if err := store.Append(ctx, []news.HistoryEntry{{ID: "new", SentAt: now}}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	ids, _ := store.RecentIDs(ctx, 24*time.Hour)
	if len(ids) != 2 {
		t.Errorf("RecentIDs() len = %d, want 2", len(ids))
	}
	ids, _ = store.RecentIDs(ctx, 30*time.Minute)
	if len(ids) != 1 {
		t.Errorf("RecentIDs() with short window len = %d, want 1", len(ids))
	}
	if len(store.All()) != 2 {
		t.Errorf("All() len = %d, want 2", len(store.All()))
	}
}

package guarantee

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
	"github.com/Amulyanrao7777/MorningGlow/internal/state"
)

var testNow = time.Date(2026, 10, 14, 7, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func seeded() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func liveArticles(n int) []news.Article {
	out := make([]news.Article, n)
	for i := range out {
		out[i] = news.Article{
			Title:      fmt.Sprintf("Volunteers plant trees #%d", i),
			URL:        fmt.Sprintf("https://good.news/story/%d", i),
			Source:     "Good News",
			Categories: []news.Category{news.CategoryEnvironmentHealing},
		}
	}
	return out
}

func fallbackPool(n int) []news.Article {
	out := make([]news.Article, n)
	for i := range out {
		out[i] = news.Article{
			ID:      fmt.Sprintf("emergency_test_%d", i),
			Title:   fmt.Sprintf("Fallback story %d", i),
			URL:     fmt.Sprintf("https://curated.org/%d", i),
			Source:  "Curated",
			Summary: "A calm and kind story.",
		}
	}
	return out
}

func newGuarantee(t *testing.T, store HistoryStore, fallback []news.Article) *Guarantee {
	t.Helper()
	g, err := New(store, fallback, Options{Clock: clock})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g
}

func TestEnsureStories_EnoughLive(t *testing.T) {
	store := state.NewMemoryStore(clock)
	g := newGuarantee(t, store, fallbackPool(5))
	candidates := liveArticles(6)

	got, err := g.EnsureStories(context.Background(), candidates, 3, 5, seeded())
	if err != nil {
		t.Fatalf("EnsureStories() error = %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("EnsureStories() len = %d, want 5", len(got))
	}
	for i, a := range got {
		if a.URL != candidates[i].URL {
			t.Errorf("story %d = %s, want %s (input order)", i, a.URL, candidates[i].URL)
		}
		if a.IsFallback() {
			t.Errorf("story %d is a fallback story", i)
		}
	}
	if n := len(store.All()); n != 5 {
		t.Errorf("history gained %d entries, want 5", n)
	}
}

func TestEnsureStories_EmptyCandidates(t *testing.T) {
	pool := fallbackPool(5)

	run := func() []news.Article {
		store := state.NewMemoryStore(clock)
		g := newGuarantee(t, store, pool)
		got, err := g.EnsureStories(context.Background(), nil, 3, 5, seeded())
		if err != nil {
			t.Fatalf("EnsureStories() error = %v", err)
		}
		if n := len(store.All()); n != 3 {
			t.Errorf("history gained %d entries, want 3", n)
		}
		return got
	}

	first := run()
	if len(first) != 3 {
		t.Fatalf("EnsureStories() len = %d, want 3", len(first))
	}
	seen := map[string]bool{}
	for _, a := range first {
		if !a.IsFallback() {
			t.Errorf("story %q is not a fallback story", a.Title)
		}
		if seen[a.ID] {
			t.Errorf("fallback %s picked twice", a.ID)
		}
		seen[a.ID] = true
		if a.PublishedAt != testNow.Format(time.RFC3339) {
			t.Errorf("PublishedAt = %q, want selection time", a.PublishedAt)
		}
	}

	// Тот же seed даёт тот же выбор.
	second := run()
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("seeded selection differs at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
	if pool[0].PublishedAt != "" {
		t.Error("EnsureStories() must not mutate the fallback pool")
	}
}

func TestEnsureStories_SkipsRecentHistory(t *testing.T) {
	candidates := liveArticles(4)
	store := state.NewMemoryStore(clock, news.HistoryEntry{
		ID:     candidates[1].URL,
		URL:    candidates[1].URL,
		SentAt: testNow.Add(-time.Hour),
	})
	g := newGuarantee(t, store, fallbackPool(5))

	got, err := g.EnsureStories(context.Background(), candidates, 3, 5, seeded())
	if err != nil {
		t.Fatalf("EnsureStories() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("EnsureStories() len = %d, want 3", len(got))
	}
	for _, a := range got {
		if a.URL == candidates[1].URL {
			t.Errorf("recently sent story %s was selected again", a.URL)
		}
	}
}

func TestEnsureStories_OldHistoryIsIgnored(t *testing.T) {
	candidates := liveArticles(3)
	store := state.NewMemoryStore(clock, news.HistoryEntry{
		ID:     candidates[0].URL,
		SentAt: testNow.Add(-8 * 24 * time.Hour),
	})
	g := newGuarantee(t, store, fallbackPool(5))

	got, err := g.EnsureStories(context.Background(), candidates, 3, 5, seeded())
	if err != nil {
		t.Fatalf("EnsureStories() error = %v", err)
	}
	if len(got) != 3 || got[0].URL != candidates[0].URL {
		t.Errorf("story outside the window should be eligible again, got %+v", got)
	}
}

func TestEnsureStories_TopsUpWithFallback(t *testing.T) {
	store := state.NewMemoryStore(clock)
	g := newGuarantee(t, store, fallbackPool(5))
	candidates := liveArticles(1)

	got, err := g.EnsureStories(context.Background(), candidates, 3, 5, seeded())
	if err != nil {
		t.Fatalf("EnsureStories() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("EnsureStories() len = %d, want 3", len(got))
	}
	if got[0].URL != candidates[0].URL {
		t.Errorf("live story should come first, got %s", got[0].URL)
	}
	if !got[1].IsFallback() || !got[2].IsFallback() {
		t.Error("remaining stories should be fallback stories")
	}
}

func TestEnsureStories_CollapsesDuplicatesInRun(t *testing.T) {
	store := state.NewMemoryStore(clock)
	g := newGuarantee(t, store, fallbackPool(5))
	a := liveArticles(3)
	candidates := []news.Article{a[0], a[0], a[1], a[2]}

	got, err := g.EnsureStories(context.Background(), candidates, 3, 5, seeded())
	if err != nil {
		t.Fatalf("EnsureStories() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("EnsureStories() len = %d, want 3", len(got))
	}
	ids := map[string]bool{}
	for _, s := range got {
		id := StoryID(s, testNow)
		if ids[id] {
			t.Errorf("story %s selected twice in one run", id)
		}
		ids[id] = true
	}
}

func TestEnsureStories_SecondRunIsDisjoint(t *testing.T) {
	store := state.NewMemoryStore(clock)
	g := newGuarantee(t, store, fallbackPool(6))
	candidates := liveArticles(8)
	ctx := context.Background()
	rng := seeded()

	first, err := g.EnsureStories(ctx, candidates, 3, 5, rng)
	if err != nil {
		t.Fatalf("first run error = %v", err)
	}
	second, err := g.EnsureStories(ctx, candidates, 3, 5, rng)
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}

	used := map[string]bool{}
	for _, s := range first {
		used[StoryID(s, testNow)] = true
	}
	for _, s := range second {
		if used[StoryID(s, testNow)] {
			t.Errorf("second run reused %s", StoryID(s, testNow))
		}
	}
	if len(second) < 3 || len(second) > 5 {
		t.Errorf("second run len = %d, want within [3, 5]", len(second))
	}
}

func TestEnsureStories_ForcedRepetition(t *testing.T) {
	pool := fallbackPool(3)
	var history []news.HistoryEntry
	for _, s := range pool {
		history = append(history, news.HistoryEntry{ID: s.ID, SentAt: testNow.Add(-time.Hour)})
	}
	store := state.NewMemoryStore(clock, history...)
	g := newGuarantee(t, store, pool)

	got, err := g.EnsureStories(context.Background(), nil, 3, 5, seeded())
	if err != nil {
		t.Fatalf("EnsureStories() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("EnsureStories() len = %d, want 3 even when every fallback was sent recently", len(got))
	}
}

func TestEnsureStories_BoundsHold(t *testing.T) {
	for live := 0; live <= 8; live++ {
		for seen := 0; seen <= 5; seen++ {
			var history []news.HistoryEntry
			pool := fallbackPool(5)
			for i := 0; i < seen; i++ {
				history = append(history, news.HistoryEntry{ID: pool[i].ID, SentAt: testNow})
			}
			g := newGuarantee(t, state.NewMemoryStore(clock, history...), pool)
			got, err := g.EnsureStories(context.Background(), liveArticles(live), 3, 5, rand.New(rand.NewPCG(uint64(live), uint64(seen))))
			if err != nil {
				t.Fatalf("live=%d seen=%d: error = %v", live, seen, err)
			}
			if len(got) < 3 || len(got) > 5 {
				t.Errorf("live=%d seen=%d: len = %d, want within [3, 5]", live, seen, len(got))
			}
		}
	}
}

func TestEnsureStories_Errors(t *testing.T) {
	g := newGuarantee(t, state.NewMemoryStore(clock), fallbackPool(2))

	tests := []struct {
		name     string
		min, max int
		want     error
	}{
		{"pool smaller than minimum", 3, 5, ErrFallbackTooSmall},
		{"zero minimum", 0, 5, ErrInvalidBounds},
		{"maximum below minimum", 2, 1, ErrInvalidBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.EnsureStories(context.Background(), nil, tt.min, tt.max, seeded())
			if !errors.Is(err, tt.want) {
				t.Errorf("EnsureStories() error = %v, want %v", err, tt.want)
			}
		})
	}
}

type failingStore struct {
	readErr, writeErr error
	appended          []news.HistoryEntry
}

func (f *failingStore) RecentIDs(context.Context, time.Duration) (map[string]struct{}, error) {
	return nil, f.readErr
}

func (f *failingStore) Append(_ context.Context, entries []news.HistoryEntry) error {
	f.appended = append(f.appended, entries...)
	return f.writeErr
}

func TestEnsureStories_StoreFailures(t *testing.T) {
	t.Run("read failure treated as empty history", func(t *testing.T) {
		store := &failingStore{readErr: errors.New("disk gone")}
		g := newGuarantee(t, store, fallbackPool(5))
		got, err := g.EnsureStories(context.Background(), liveArticles(4), 3, 5, seeded())
		if err != nil {
			t.Fatalf("EnsureStories() error = %v", err)
		}
		if len(got) != 4 || len(store.appended) != 4 {
			t.Errorf("got %d stories, %d appended, want 4 and 4", len(got), len(store.appended))
		}
	})

	t.Run("write failure still returns stories", func(t *testing.T) {
		store := &failingStore{writeErr: errors.New("read-only fs")}
		g := newGuarantee(t, store, fallbackPool(5))
		got, err := g.EnsureStories(context.Background(), nil, 3, 5, seeded())
		if err == nil || !strings.Contains(err.Error(), "read-only fs") {
			t.Errorf("EnsureStories() error = %v, want wrapped write error", err)
		}
		if len(got) != 3 {
			t.Errorf("EnsureStories() len = %d, want 3", len(got))
		}
	})
}

func TestNew_ValidatesFallback(t *testing.T) {
	store := state.NewMemoryStore(clock)

	dup := fallbackPool(3)
	dup[2].ID = dup[0].ID
	if _, err := New(store, dup, Options{}); !errors.Is(err, ErrDuplicateFallbackID) {
		t.Errorf("New() duplicate id error = %v, want ErrDuplicateFallbackID", err)
	}

	missing := fallbackPool(3)
	missing[1].ID = " "
	if _, err := New(store, missing, Options{}); !errors.Is(err, ErrDuplicateFallbackID) {
		t.Errorf("New() empty id error = %v, want ErrDuplicateFallbackID", err)
	}

	if _, err := New(store, DefaultFallbackStories(), Options{}); err != nil {
		t.Errorf("New() with default fallback error = %v", err)
	}
}

func TestDefaultFallbackStories(t *testing.T) {
	stories := DefaultFallbackStories()
	if len(stories) < 5 {
		t.Errorf("default fallback pool = %d stories, want at least 5", len(stories))
	}
	for _, s := range stories {
		if s.Summary == "" || len(s.Categories) == 0 || s.Source == "" {
			t.Errorf("fallback %s is incomplete: %+v", s.ID, s)
		}
		if s.PublishedAt != "" {
			t.Errorf("fallback %s carries a static timestamp", s.ID)
		}
	}
}

package summary

import (
	"context"
	"errors"
	"testing"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

type mockSummarizer struct {
	summarize func(ctx context.Context, a news.Article) (string, error)
	calls     int
}

func (m *mockSummarizer) Summarize(ctx context.Context, a news.Article) (string, error) {
	m.calls++
	return m.summarize(ctx, a)
}

func TestEnricher_Enrich(t *testing.T) {
	primary := &mockSummarizer{summarize: func(_ context.Context, a news.Article) (string, error) {
		switch a.Title {
		case "fails":
			return "", errors.New("quota exceeded")
		case "empty":
			return "   ", nil
		}
		return "A gentle summary of " + a.Title, nil
	}}
	e := NewEnricher(primary, nil, nil)

	articles := []news.Article{
		{Title: "ok"},
		{Title: "fails", Content: "the river was cleaned by hundreds of volunteers over the weekend."},
		{Title: "empty"},
		{ID: "emergency_coral_1", Title: "coral", Summary: "Curated text."},
	}
	got := e.Enrich(context.Background(), articles)

	if got[0].Summary != "A gentle summary of ok" {
		t.Errorf("primary summary = %q", got[0].Summary)
	}
	if got[1].Summary != "The river was cleaned by hundreds of volunteers over the weekend." {
		t.Errorf("fallback summary = %q", got[1].Summary)
	}
	if got[2].Summary != "empty" {
		t.Errorf("empty primary should fall back to extractive, got %q", got[2].Summary)
	}
	if got[3].Summary != "Curated text." {
		t.Errorf("curated summary overwritten: %q", got[3].Summary)
	}
	if primary.calls != 3 {
		t.Errorf("primary called %d times, want 3 (curated story skipped)", primary.calls)
	}
	if articles[0].Summary != "" {
		t.Error("Enrich() must not mutate input")
	}
}

func TestEnricher_NoPrimary(t *testing.T) {
	e := NewEnricher(nil, NewExtractive(0, 0), nil)
	got := e.Enrich(context.Background(), []news.Article{{Title: "Only title"}})
	if got[0].Summary != "Only title" {
		t.Errorf("Summary = %q", got[0].Summary)
	}
}

func TestEnricher_CancelledContext(t *testing.T) {
	primary := &mockSummarizer{summarize: func(context.Context, news.Article) (string, error) {
		return "should not be used", nil
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := NewEnricher(primary, nil, nil).Enrich(ctx, []news.Article{{Title: "late"}})
	if primary.calls != 0 {
		t.Errorf("primary called %d times after cancellation", primary.calls)
	}
	if got[0].Summary != "late" {
		t.Errorf("Summary = %q, want extractive fallback", got[0].Summary)
	}
}

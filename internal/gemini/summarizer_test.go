package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Amulyanrao7777/MorningGlow/internal/config"
	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// mockGeminiClient - мок для тестирования Summarizer
type mockGeminiClient struct {
	generateTextFunc func(ctx context.Context, model string, prompt string) (string, error)
}

func (m *mockGeminiClient) GenerateText(ctx context.Context, model string, prompt string) (string, error) {
	if m.generateTextFunc != nil {
		return m.generateTextFunc(ctx, model, prompt)
	}
	return "", errors.New("not implemented")
}

func TestSummarizer_Summarize(t *testing.T) {
	article := news.Article{
		Title:   "Coral reefs recover",
		Content: "Marine biologists report that protected reefs are regrowing.",
		Source:  "Ocean Weekly",
	}

	tests := []struct {
		name     string
		response string
		err      error
		want     string
		wantErr  bool
	}{
		{"plain text", "Reefs are quietly healing.", nil, "Reefs are quietly healing.", false},
		{"wrapped text", "```\nSummary: \"Reefs are quietly healing.\"\n```", nil, "Reefs are quietly healing.", false},
		{"empty response", "  ", nil, "", true},
		{"client error", "", errors.New("boom"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotModel, gotPrompt string
			client := &mockGeminiClient{generateTextFunc: func(_ context.Context, model, prompt string) (string, error) {
				gotModel, gotPrompt = model, prompt
				return tt.response, tt.err
			}}
			s := NewSummarizer(client, config.Gemini{Model: "gemini-test", TimeoutSeconds: 5}, nil)

			got, err := s.Summarize(context.Background(), article)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Summarize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Summarize() = %q, want %q", got, tt.want)
			}
			if gotModel != "gemini-test" {
				t.Errorf("model = %q", gotModel)
			}
			if !strings.Contains(gotPrompt, article.Title) || !strings.Contains(gotPrompt, article.Content) {
				t.Error("prompt should include title and content")
			}
			if !strings.Contains(gotPrompt, "150-170 words") {
				t.Error("prompt should carry the word budget")
			}
		})
	}
}

func TestBuildPrompt_UsesDescriptionAndTruncates(t *testing.T) {
	p := buildPrompt(news.Article{Title: "T", Description: "short description"})
	if !strings.Contains(p, "Article Content: short description") {
		t.Errorf("prompt should fall back to description:\n%s", p)
	}

	long := strings.Repeat("a", maxPromptContent+100)
	p = buildPrompt(news.Article{Title: "T", Content: long})
	if strings.Contains(p, long) {
		t.Error("prompt content should be truncated")
	}
}

func TestSummarizer_WaitsOutRateLimit(t *testing.T) {
	// пауза после 429 длиннее дедлайна одной попытки
	policy := RetryPolicy{
		MaxAttempts:      2,
		BaseDelay:        time.Millisecond,
		MaxDelay:         time.Millisecond,
		RateLimitDelay:   1100 * time.Millisecond,
		UnavailableDelay: time.Millisecond,
		AttemptTimeout:   time.Second,
	}
	calls := 0
	client := newClient(func(ctx context.Context, _, _ string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("Error 429: rate limit exceeded")
		}
		return "Reefs are quietly healing.", nil
	}, policy, nil)
	s := NewSummarizer(client, config.Gemini{Model: "gemini-test", TimeoutSeconds: 1}, nil)

	got, err := s.Summarize(context.Background(), news.Article{Title: "Coral reefs recover", Content: "Reefs regrow."})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "Reefs are quietly healing." || calls != 2 {
		t.Errorf("Summarize() = %q after %d calls", got, calls)
	}
}

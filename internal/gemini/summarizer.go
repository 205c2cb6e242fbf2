package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Amulyanrao7777/MorningGlow/internal/config"
	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// maxPromptContent ограничивает объём текста статьи в промпте.
const maxPromptContent = 4000

// Summarizer пишет мягкие утренние резюме статей через Gemini.
type Summarizer struct {
	client GeminiClient
	model  string
	logger *slog.Logger
}

// NewSummarizer создаёт новый экземпляр суммаризатора.
// Дедлайн на попытку задаёт RetryPolicy.AttemptTimeout клиента, а не суммаризатор:
// общий дедлайн обрезал бы паузы ретраев после 429 и 503.
func NewSummarizer(client GeminiClient, cfg config.Gemini, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		client: client,
		model:  cfg.Model,
		logger: logger,
	}
}

// Summarize реализует summary.Summarizer.
func (s *Summarizer) Summarize(ctx context.Context, article news.Article) (string, error) {
	text, err := s.client.GenerateText(ctx, s.model, buildPrompt(article))
	if err != nil {
		return "", fmt.Errorf("summarize %q: %w", article.Title, err)
	}
	text = cleanResponse(text)
	if text == "" {
		return "", fmt.Errorf("summarize %q: empty response", article.Title)
	}
	s.logger.Debug("summary generated", "title", article.Title, "words", len(strings.Fields(text)))
	return text, nil
}

func buildPrompt(a news.Article) string {
	content := strings.TrimSpace(a.Content)
	if content == "" {
		content = strings.TrimSpace(a.Description)
	}
	if r := []rune(content); len(r) > maxPromptContent {
		content = string(r[:maxPromptContent])
	}

	var b strings.Builder
	b.WriteString("You are a gentle, warm voice writing emotionally soothing morning news summaries.\n\n")
	fmt.Fprintf(&b, "Article Title: %s\n", a.Title)
	fmt.Fprintf(&b, "Article Content: %s\n\n", content)
	b.WriteString(`Write a summary that follows these rules exactly:
- 6-7 sentences, 150-170 words in total
- warm, elegant, calm tone, like a kind friend sharing something hopeful
- never repeat the headline
- never mention the source or the journalist
- never introduce facts that are not in the article
- never use negative or stressful words, never overstate claims
- focus on the hope and the positive impact

Reply with the summary text only.`)
	return b.String()
}

// cleanResponse убирает обёртки, которые модель иногда добавляет вокруг текста.
func cleanResponse(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	for _, prefix := range []string{"Summary:", "summary:"} {
		text = strings.TrimSpace(strings.TrimPrefix(text, prefix))
	}
	return strings.Trim(text, `"`)
}

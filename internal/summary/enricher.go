package summary

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// Summarizer возвращает прозаическое резюме одной статьи.
type Summarizer interface {
	Summarize(ctx context.Context, article news.Article) (string, error)
}

// Enricher проставляет Summary каждой статье: сначала основной суммаризатор,
// при ошибке или пустом ответе используется экстрактивный.
type Enricher struct {
	primary  Summarizer
	fallback *Extractive
	logger   *slog.Logger
}

// NewEnricher создаёт Enricher. primary может быть nil, тогда используется только fallback.
func NewEnricher(primary Summarizer, fallback *Extractive, logger *slog.Logger) *Enricher {
	if fallback == nil {
		fallback = NewExtractive(0, 0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{primary: primary, fallback: fallback, logger: logger}
}

// Enrich возвращает копии статей с заполненным Summary. Ошибок наружу не отдаёт.
// Кураторские истории со своим резюме не пересчитываются.
func (e *Enricher) Enrich(ctx context.Context, articles []news.Article) []news.Article {
	out := make([]news.Article, len(articles))
	generated, extracted := 0, 0
	for i, a := range articles {
		out[i] = a
		if a.IsFallback() && strings.TrimSpace(a.Summary) != "" {
			continue
		}
		if text, ok := e.tryPrimary(ctx, a); ok {
			out[i].Summary = text
			generated++
			continue
		}
		out[i].Summary = e.fallback.Text(a)
		extracted++
	}
	e.logger.Info("summaries ready", "generated", generated, "extractive", extracted)
	return out
}

func (e *Enricher) tryPrimary(ctx context.Context, a news.Article) (string, bool) {
	if e.primary == nil {
		return "", false
	}
	if ctx.Err() != nil {
		return "", false
	}
	text, err := e.primary.Summarize(ctx, a)
	if err != nil {
		e.logger.Warn("summarizer failed, using extractive summary", "title", a.Title, "err", err)
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		e.logger.Warn("summarizer returned empty text, using extractive summary", "title", a.Title)
		return "", false
	}
	return text, true
}

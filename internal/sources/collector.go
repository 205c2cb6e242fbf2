package sources

import (
	"context"
	"log/slog"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// NamedCollector: один источник статей.
type NamedCollector interface {
	Name() string
	Collect(ctx context.Context, queries []string) ([]news.Article, error)
}

// MultiCollector опрашивает все источники по очереди и прогоняет результат через URLValidator.
type MultiCollector struct {
	collectors []NamedCollector
	validator  *URLValidator
	logger     *slog.Logger
}

// NewMultiCollector создаёт коллектор. validator может быть nil.
func NewMultiCollector(validator *URLValidator, logger *slog.Logger, collectors ...NamedCollector) *MultiCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiCollector{collectors: collectors, validator: validator, logger: logger}
}

// Collect реализует app.SourceCollector. Ошибки источников логируются и не возвращаются:
// пустой результат является допустимым входом для пайплайна.
func (m *MultiCollector) Collect(ctx context.Context, queries []string) ([]news.Article, error) {
	var all []news.Article
	for _, c := range m.collectors {
		items, err := c.Collect(ctx, queries)
		if err != nil {
			m.logger.Error("source failed", "source", c.Name(), "err", err)
		}
		all = append(all, items...)
	}
	m.logger.Info("articles collected", "count", len(all))

	if m.validator != nil {
		all = m.validator.Filter(ctx, all)
	}
	if len(all) == 0 {
		m.logger.Warn("no articles fetched from any source")
	}
	return all, nil
}

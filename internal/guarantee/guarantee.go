package guarantee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// DefaultWindow: окно, в течение которого отправленная история не повторяется.
const DefaultWindow = 7 * 24 * time.Hour

var (
	// ErrFallbackTooSmall: резервный набор меньше минимума, гарантию выполнить нельзя.
	ErrFallbackTooSmall = errors.New("guarantee: fallback pool smaller than minimum")
	// ErrInvalidBounds: некорректная пара minimum/maximum.
	ErrInvalidBounds = errors.New("guarantee: invalid story bounds")
	// ErrDuplicateFallbackID: у резервных историй пустой или повторяющийся ID.
	ErrDuplicateFallbackID = errors.New("guarantee: duplicate fallback story id")
)

// HistoryStore: то, что гарантии нужно от журнала отправок.
type HistoryStore interface {
	RecentIDs(ctx context.Context, window time.Duration) (map[string]struct{}, error)
	Append(ctx context.Context, entries []news.HistoryEntry) error
}

// Options настраивает Guarantee. Нулевые значения заменяются дефолтами.
type Options struct {
	Window time.Duration
	Clock  func() time.Time
	Logger *slog.Logger
}

// Guarantee отбирает итоговый набор историй: живые новости без повторов,
// при нехватке добивает кураторскими историями.
type Guarantee struct {
	store    HistoryStore
	fallback []news.Article
	window   time.Duration
	clock    func() time.Time
	logger   *slog.Logger
}

// New проверяет резервный набор и создаёт Guarantee.
func New(store HistoryStore, fallback []news.Article, opts Options) (*Guarantee, error) {
	if store == nil {
		return nil, errors.New("guarantee: history store is nil")
	}
	seen := make(map[string]struct{}, len(fallback))
	for i, story := range fallback {
		id := strings.TrimSpace(story.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: story %d (%q) has no id", ErrDuplicateFallbackID, i, story.Title)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateFallbackID, id)
		}
		seen[id] = struct{}{}
	}

	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	pool := make([]news.Article, len(fallback))
	copy(pool, fallback)

	return &Guarantee{
		store:    store,
		fallback: pool,
		window:   opts.Window,
		clock:    opts.Clock,
		logger:   opts.Logger,
	}, nil
}

// CheckBounds проверяет, что границы корректны и резервного набора хватает на минимум.
// Вызывается при старте, чтобы ошибка конфигурации всплыла до первого запуска.
func (g *Guarantee) CheckBounds(minimum, maximum int) error {
	if minimum < 1 || maximum < minimum {
		return fmt.Errorf("%w: minimum=%d maximum=%d", ErrInvalidBounds, minimum, maximum)
	}
	if len(g.fallback) < minimum {
		return fmt.Errorf("%w: have %d, need %d", ErrFallbackTooSmall, len(g.fallback), minimum)
	}
	return nil
}

// EnsureStories возвращает от minimum до maximum историй и записывает выбор в журнал.
//
// Кандидаты, уже отправленные в пределах окна, отбрасываются. Повторы внутри
// одного запуска схлопываются до первого вхождения. Если живых историй меньше
// minimum, недостающие выбираются случайно из резервного набора (rng можно
// зафиксировать в тестах). Ошибка чтения журнала трактуется как пустая история.
// Ошибка записи возвращается вместе с уже отобранными историями.
func (g *Guarantee) EnsureStories(ctx context.Context, candidates []news.Article, minimum, maximum int, rng *rand.Rand) ([]news.Article, error) {
	if err := g.CheckBounds(minimum, maximum); err != nil {
		return nil, err
	}
	now := g.clock()
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(now.UnixNano()), 0x6d6f726e))
	}

	recent, err := g.store.RecentIDs(ctx, g.window)
	if err != nil {
		g.logger.Warn("history read failed, treating as empty", "err", err)
		recent = map[string]struct{}{}
	}

	fresh := make([]news.Article, 0, len(candidates))
	inRun := make(map[string]struct{}, len(candidates))
	skipped := 0
	for _, c := range candidates {
		id := StoryID(c, now)
		if _, seen := recent[id]; seen {
			skipped++
			continue
		}
		if _, dup := inRun[id]; dup {
			skipped++
			continue
		}
		inRun[id] = struct{}{}
		fresh = append(fresh, c)
	}
	g.logger.Info("dedupe", "candidates", len(candidates), "fresh", len(fresh), "skipped", skipped)

	selected := fresh
	if len(fresh) < minimum {
		needed := minimum - len(fresh)
		selected = append(selected, g.pickFallback(needed, recent, inRun, now, rng)...)
	}
	if len(selected) > maximum {
		selected = selected[:maximum]
	}

	entries := make([]news.HistoryEntry, 0, len(selected))
	for _, s := range selected {
		entries = append(entries, news.HistoryEntry{
			ID:     StoryID(s, now),
			URL:    s.URL,
			Title:  s.Title,
			SentAt: now,
		})
	}
	if err := g.store.Append(ctx, entries); err != nil {
		return selected, fmt.Errorf("record history: %w", err)
	}
	return selected, nil
}

// pickFallback выбирает needed резервных историй без возвращения.
// Сначала из тех, что не отправлялись в пределах окна, иначе из всего набора.
func (g *Guarantee) pickFallback(needed int, recent, inRun map[string]struct{}, now time.Time, rng *rand.Rand) []news.Article {
	pool := make([]news.Article, 0, len(g.fallback))
	for _, story := range g.fallback {
		if _, seen := recent[story.ID]; seen {
			continue
		}
		if _, dup := inRun[story.ID]; dup {
			continue
		}
		pool = append(pool, story)
	}
	if len(pool) < needed {
		g.logger.Warn("not enough unused fallback stories, allowing repetition",
			"unused", len(pool), "needed", needed, "pool", len(g.fallback))
		pool = g.fallback
	}

	picked := make([]news.Article, 0, needed)
	for _, i := range rng.Perm(len(pool))[:needed] {
		story := pool[i]
		story.PublishedAt = now.Format(time.RFC3339)
		story.Categories = append([]news.Category(nil), story.Categories...)
		picked = append(picked, story)
	}
	g.logger.Info("fallback stories added", "count", len(picked))
	return picked
}

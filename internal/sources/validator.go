package sources

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// URLValidator отсекает статьи с пустыми и заглушечными ссылками и выборочно
// проверяет доступность остальных HEAD-запросом.
type URLValidator struct {
	client  *http.Client
	every   int
	timeout time.Duration
	logger  *slog.Logger
}

// NewURLValidator создаёт валидатор. Проверяется каждая every-я ссылка, при every=0 проверок нет.
func NewURLValidator(client *http.Client, every int, timeout time.Duration, logger *slog.Logger) *URLValidator {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &URLValidator{client: client, every: every, timeout: timeout, logger: logger}
}

// Filter возвращает статьи с правдоподобными ссылками в исходном порядке.
func (v *URLValidator) Filter(ctx context.Context, articles []news.Article) []news.Article {
	out := make([]news.Article, 0, len(articles))
	for i, a := range articles {
		u := strings.TrimSpace(a.URL)
		if (!strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://")) || news.IsPlaceholderURL(u) {
			v.logger.Debug("dropped article with unusable url", "title", a.Title, "url", u)
			continue
		}
		if v.every > 0 && i%v.every == 0 && !v.Reachable(ctx, u) {
			v.logger.Debug("dropped unreachable article", "title", a.Title, "url", u)
			continue
		}
		out = append(out, a)
	}
	v.logger.Info("url validation", "in", len(articles), "out", len(out))
	return out
}

// Reachable делает HEAD-запрос. Отвергаются только ответы 5xx: 4xx (пейволлы)
// и сетевые ошибки с таймаутами считаются доступными.
func (v *URLValidator) Reachable(ctx context.Context, rawURL string) bool {
	if strings.Contains(rawURL, "news.google.com") {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Debug("url probe failed, accepting", "url", rawURL, "err", err)
		return true
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

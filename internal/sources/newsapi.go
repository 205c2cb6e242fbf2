package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

const (
	newsAPIPageSize = 100
	removedMarker   = "[Removed]"
)

// NewsAPICollector ищет статьи через NewsAPI /v2/everything.
type NewsAPICollector struct {
	apiKey  string
	baseURL string
	recency time.Duration
	client  *http.Client
	clock   func() time.Time
	logger  *slog.Logger
}

// NewNewsAPICollector создаёт коллектор. Пустой apiKey отключает источник.
func NewNewsAPICollector(apiKey, baseURL string, recency time.Duration, client *http.Client, clock func() time.Time, logger *slog.Logger) *NewsAPICollector {
	if baseURL == "" {
		baseURL = "https://newsapi.org"
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsAPICollector{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		recency: recency,
		client:  client,
		clock:   clock,
		logger:  logger,
	}
}

// Name реализует NamedCollector.
func (c *NewsAPICollector) Name() string { return "newsapi" }

// Collect выполняет по запросу на каждую строку queries. Ошибка одного запроса
// логируется, остальные продолжаются; если упали все, возвращается объединённая ошибка.
func (c *NewsAPICollector) Collect(ctx context.Context, queries []string) ([]news.Article, error) {
	if c.apiKey == "" {
		c.logger.Warn("NEWSAPI_KEY not set, skipping NewsAPI")
		return nil, nil
	}

	var (
		results []news.Article
		errs    []error
	)
	for _, q := range queries {
		items, err := c.fetchQuery(ctx, q)
		if err != nil {
			c.logger.Error("newsapi query failed", "query", q, "err", err)
			errs = append(errs, fmt.Errorf("query %q: %w", q, err))
			continue
		}
		c.logger.Info("newsapi fetched", "query", q, "count", len(items))
		results = append(results, items...)
	}
	if len(errs) > 0 && len(errs) == len(queries) {
		return results, errors.Join(errs...)
	}
	return results, nil
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

func (c *NewsAPICollector) fetchQuery(ctx context.Context, query string) ([]news.Article, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", fmt.Sprint(newsAPIPageSize))
	if c.recency > 0 {
		params.Set("from", c.clock().Add(-c.recency).UTC().Format(time.RFC3339))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var payload newsAPIResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("status %d: decode response: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || payload.Status != "ok" {
		return nil, fmt.Errorf("status %d: %s %s", resp.StatusCode, payload.Code, payload.Message)
	}

	return normalizeNewsAPI(payload.Articles), nil
}

func normalizeNewsAPI(items []newsAPIArticle) []news.Article {
	articles := make([]news.Article, 0, len(items))
	for _, item := range items {
		if item.Title == removedMarker || item.Description == removedMarker {
			continue
		}
		source := strings.TrimSpace(item.Source.Name)
		if source == "" {
			source = "Unknown"
		}
		content := strings.TrimSpace(item.Content)
		if content == "" {
			content = strings.TrimSpace(item.Description)
		}
		articles = append(articles, news.Article{
			Title:       strings.TrimSpace(item.Title),
			Description: strings.TrimSpace(item.Description),
			Content:     content,
			URL:         strings.TrimSpace(item.URL),
			Source:      source,
			PublishedAt: item.PublishedAt,
		})
	}
	return articles
}

package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/Amulyanrao7777/MorningGlow/internal/config"
	"github.com/Amulyanrao7777/MorningGlow/internal/news"
	"github.com/Amulyanrao7777/MorningGlow/internal/summary"
)

const (
	// GoogleNewsSearchURL: поисковая RSS-выдача Google News.
	GoogleNewsSearchURL = "https://news.google.com/rss/search"

	defaultGoogleNewsItems = 50
	maxItemsPerFeed        = 100
	userAgent              = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// FeedOptions настраивает FeedCollector.
type FeedOptions struct {
	GoogleNews    bool
	GoogleNewsURL string // переопределяется в тестах
	GoogleNewsMax int
	Feeds         []config.Feed
	Recency       time.Duration
	Client        *http.Client
	Clock         func() time.Time
	Logger        *slog.Logger
}

// FeedCollector загружает статьи из RSS/Atom: поиск Google News по запросам
// и кураторские ленты из конфига.
type FeedCollector struct {
	opts   FeedOptions
	parser *gofeed.Parser
}

// NewFeedCollector создаёт новый экземпляр.
func NewFeedCollector(opts FeedOptions) *FeedCollector {
	if opts.GoogleNewsURL == "" {
		opts.GoogleNewsURL = GoogleNewsSearchURL
	}
	if opts.GoogleNewsMax <= 0 {
		opts.GoogleNewsMax = defaultGoogleNewsItems
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &FeedCollector{opts: opts, parser: gofeed.NewParser()}
}

// Name реализует NamedCollector.
func (c *FeedCollector) Name() string { return "rss" }

// Collect ищет по каждому запросу в Google News и читает все кураторские ленты.
// Ошибка одной ленты или запроса не прерывает остальные.
func (c *FeedCollector) Collect(ctx context.Context, queries []string) ([]news.Article, error) {
	var results []news.Article

	if c.opts.GoogleNews {
		for _, q := range queries {
			items, err := c.fetchGoogleNews(ctx, q)
			if err != nil {
				c.opts.Logger.Error("google news query failed", "query", q, "err", err)
				continue
			}
			c.opts.Logger.Info("google news fetched", "query", q, "count", len(items))
			results = append(results, items...)
		}
	}

	for _, feed := range c.opts.Feeds {
		items, err := c.fetchCurated(ctx, feed)
		if err != nil {
			// При ошибке одной ленты продолжаем обработку других
			c.opts.Logger.Error("feed fetch failed", "feed", feed.ID, "url", feed.URL, "err", err)
			continue
		}
		c.opts.Logger.Info("feed fetched", "feed", feed.ID, "count", len(items))
		results = append(results, items...)
	}
	return results, nil
}

func (c *FeedCollector) fetchGoogleNews(ctx context.Context, query string) ([]news.Article, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")

	feed, err := c.fetchFeed(ctx, c.opts.GoogleNewsURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	items := feed.Items
	if len(items) > c.opts.GoogleNewsMax {
		items = items[:c.opts.GoogleNewsMax]
	}

	articles := make([]news.Article, 0, len(items))
	for _, item := range items {
		published, ok := c.published(item)
		if !ok {
			continue
		}
		title, publisher := splitPublisher(strings.TrimSpace(item.Title))
		if title == "" {
			continue
		}
		text := summary.StripHTML(item.Description)
		articles = append(articles, news.Article{
			Title:       title,
			Description: text,
			Content:     text,
			URL:         unwrapGoogleRedirect(strings.TrimSpace(item.Link)),
			Source:      publisher,
			PublishedAt: published.Format(time.RFC3339),
		})
	}
	return articles, nil
}

func (c *FeedCollector) fetchCurated(ctx context.Context, site config.Feed) ([]news.Article, error) {
	feed, err := c.fetchFeed(ctx, site.URL)
	if err != nil {
		return nil, err
	}

	// Лимит: только первые статьи ленты (обычно самые свежие)
	items := feed.Items
	if len(items) > maxItemsPerFeed {
		items = items[:maxItemsPerFeed]
	}

	source := site.Name
	if source == "" {
		source = feed.Title
	}

	articles := make([]news.Article, 0, len(items))
	for _, item := range items {
		if item.Link == "" || item.Title == "" {
			continue
		}
		published, ok := c.published(item)
		if !ok {
			continue
		}
		description := summary.StripHTML(item.Description)
		content := summary.StripHTML(item.Content)
		if content == "" {
			content = description
		}
		articles = append(articles, news.Article{
			Title:       strings.TrimSpace(item.Title),
			Description: description,
			Content:     content,
			URL:         strings.TrimSpace(item.Link),
			Source:      source,
			PublishedAt: published.Format(time.RFC3339),
		})
	}
	return articles, nil
}

func (c *FeedCollector) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	// 4xx/5xx сразу возвращаем: повтор 403 блокировку не снимет
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// published возвращает дату публикации и признак, что статья попадает в окно свежести.
// Без даты статья считается свежей.
func (c *FeedCollector) published(item *gofeed.Item) (time.Time, bool) {
	now := c.opts.Clock()
	var t time.Time
	switch {
	case item.PublishedParsed != nil:
		t = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		t = *item.UpdatedParsed
	default:
		return now, true
	}
	if c.opts.Recency > 0 && t.Before(now.Add(-c.opts.Recency)) {
		return t, false
	}
	return t, true
}

// splitPublisher отделяет издателя из заголовка Google News вида "Headline - Publisher".
func splitPublisher(title string) (string, string) {
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return title, "Google News"
	}
	publisher := strings.TrimSpace(title[i+3:])
	if publisher == "" {
		return strings.TrimSpace(title[:i]), "Google News"
	}
	return strings.TrimSpace(title[:i]), publisher
}

// unwrapGoogleRedirect достаёт исходный адрес из редиректа news.google.com с параметром url.
func unwrapGoogleRedirect(link string) string {
	if !strings.Contains(link, "news.google.com") {
		return link
	}
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if target := u.Query().Get("url"); target != "" {
		return target
	}
	return link
}

package guarantee

import (
	"fmt"
	"strings"
	"time"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// StoryID вычисляет устойчивый идентификатор истории для журнала отправок.
// Порядок: фиксированный ID кураторской истории, затем URL (если это не заглушка),
// затем заголовок + дата, чтобы аварийные истории различались между днями.
func StoryID(article news.Article, now time.Time) string {
	if id := strings.TrimSpace(article.ID); id != "" {
		return id
	}
	if u := strings.TrimSpace(article.URL); !news.IsPlaceholderURL(u) {
		return u
	}
	if title := strings.TrimSpace(article.Title); title != "" {
		runes := []rune(title)
		if len(runes) > 50 {
			runes = runes[:50]
		}
		return fmt.Sprintf("emergency_%s_%s", string(runes), now.Format("2006-01-02"))
	}
	return fmt.Sprintf("unknown_%d", now.UnixNano())
}

package filter

import (
	"regexp"
	"strings"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// CategoryRule связывает категорию со списком фраз-триггеров.
type CategoryRule struct {
	Category news.Category
	Triggers []string
}

// SafetyRules: разрешённые темы и стоп-лист.
// Порядок Categories определяет порядок категорий в вердикте.
type SafetyRules struct {
	Categories     []CategoryRule
	RejectKeywords []string
	CrisisPatterns []*regexp.Regexp
}

// SafetyClassifier пропускает только статьи хотя бы одной позитивной темы без стресс-лексики.
type SafetyClassifier struct {
	rules SafetyRules
}

var _ Classifier = (*SafetyClassifier)(nil)

// NewSafetyClassifier создаёт классификатор эмоциональной безопасности.
func NewSafetyClassifier(rules SafetyRules) *SafetyClassifier {
	return &SafetyClassifier{rules: rules}
}

// Classify реализует Classifier. Стоп-лист имеет приоритет над совпадением темы.
func (c *SafetyClassifier) Classify(article news.Article) Verdict {
	text := textBlob(article)

	for _, kw := range c.rules.RejectKeywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return Reject(ReasonUnsafeKeyword, "contains stress keyword: "+kw)
		}
	}
	for _, pattern := range c.rules.CrisisPatterns {
		if pattern.MatchString(text) {
			return Reject(ReasonCrisisFraming, "contains crisis framing pattern: "+pattern.String())
		}
	}

	matched := c.Categories(text)
	if len(matched) == 0 {
		return Reject(ReasonNoCategory, "no matching category")
	}
	return Accept(matched...)
}

// Categories возвращает все темы, триггеры которых входят в текст (текст уже в нижнем регистре).
func (c *SafetyClassifier) Categories(text string) []news.Category {
	var matched []news.Category
	for _, rule := range c.rules.Categories {
		for _, trigger := range rule.Triggers {
			if trigger != "" && strings.Contains(text, strings.ToLower(trigger)) {
				matched = append(matched, rule.Category)
				break
			}
		}
	}
	return matched
}

package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// AccuracyRules: таблицы эвристик фактической точности.
type AccuracyRules struct {
	SpeculationKeywords []string
	// SpeculationThreshold: число различных слов-спекуляций, при котором статья отклоняется.
	SpeculationThreshold      int
	ClickbaitPatterns         []*regexp.Regexp
	UnverifiedMedicalKeywords []string
	VerificationMarkers       []string
	UnknownSource             string
}

// AccuracyClassifier отсекает спекуляции, кликбейт и непроверенные медицинские заявления.
type AccuracyClassifier struct {
	rules AccuracyRules
}

var _ Classifier = (*AccuracyClassifier)(nil)

// NewAccuracyClassifier создаёт классификатор. Порог <= 0 заменяется на 3.
func NewAccuracyClassifier(rules AccuracyRules) *AccuracyClassifier {
	if rules.SpeculationThreshold <= 0 {
		rules.SpeculationThreshold = DefaultSpeculationThreshold
	}
	if rules.UnknownSource == "" {
		rules.UnknownSource = "Unknown"
	}
	return &AccuracyClassifier{rules: rules}
}

// Classify реализует Classifier.
func (c *AccuracyClassifier) Classify(article news.Article) Verdict {
	text := textBlob(article)

	if hits := countDistinct(text, c.rules.SpeculationKeywords); hits >= c.rules.SpeculationThreshold {
		return Reject(ReasonSpeculation, fmt.Sprintf("too many speculation keywords (%d)", hits))
	}

	for _, pattern := range c.rules.ClickbaitPatterns {
		if pattern.MatchString(text) {
			return Reject(ReasonClickbait, "contains clickbait pattern: "+pattern.String())
		}
	}

	if claim, ok := firstContained(text, c.rules.UnverifiedMedicalKeywords); ok {
		if _, verified := firstContained(text, c.rules.VerificationMarkers); !verified {
			return Reject(ReasonUnverifiedMedical, "medical claim without verification markers: "+claim)
		}
	}

	source := strings.TrimSpace(article.Source)
	if source == "" || strings.EqualFold(source, c.rules.UnknownSource) {
		return Reject(ReasonMissingSource, "missing legitimate source")
	}

	if strings.TrimSpace(article.URL) == "" {
		return Reject(ReasonMissingURL, "missing source URL")
	}

	return Accept()
}

// countDistinct считает, сколько разных ключевых слов встречается в тексте.
func countDistinct(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}

func firstContained(text string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return kw, true
		}
	}
	return "", false
}

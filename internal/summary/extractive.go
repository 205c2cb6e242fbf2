package summary

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

const (
	// DefaultMaxWords: предельная длина резюме в словах.
	DefaultMaxWords = 170
	// DefaultMaxSentences: сколько предложений оставляет экстрактивное резюме.
	DefaultMaxSentences = 7
	// DefaultText: текст, если из статьи ничего не удалось извлечь.
	DefaultText = "A brief update for your morning."

	minSentenceLen = 20
)

var (
	urlPattern      = regexp.MustCompile(`https?://\S+`)
	spacePattern    = regexp.MustCompile(`\s+`)
	sentenceSplit   = regexp.MustCompile(`([.?!])\s+`)
	newsAPITruncate = regexp.MustCompile(`\[\+\d+ chars\]$`)
)

// StripHTML превращает HTML-фрагмент в плоский текст с нормализованными пробелами.
// Если фрагмент не разбирается, возвращается исходная строка без тегов-угловых скобок.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapseSpaces(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpaces(fragment)
	}
	doc.Find("script, style").Remove()
	return collapseSpaces(doc.Text())
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// Extractive строит резюме из первых предложений текста статьи. Никогда не возвращает ошибку.
type Extractive struct {
	maxWords     int
	maxSentences int
}

// NewExtractive создаёт экстрактивный суммаризатор. Нулевые значения заменяются дефолтами.
func NewExtractive(maxWords, maxSentences int) *Extractive {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	return &Extractive{maxWords: maxWords, maxSentences: maxSentences}
}

// Summarize реализует Summarizer.
func (e *Extractive) Summarize(_ context.Context, article news.Article) (string, error) {
	return e.Text(article), nil
}

// Text возвращает экстрактивное резюме статьи.
func (e *Extractive) Text(article news.Article) string {
	title := strings.TrimSpace(article.Title)
	body := strings.TrimSpace(article.Content)
	if body == "" {
		body = strings.TrimSpace(article.Description)
	}
	if body == "" {
		return orDefault(title)
	}

	text := StripHTML(body)
	text = newsAPITruncate.ReplaceAllString(text, "")
	text = collapseSpaces(urlPattern.ReplaceAllString(text, ""))

	sentences := splitSentences(text)
	lowerTitle := strings.ToLower(title)
	seen := make(map[string]struct{}, len(sentences))
	selected := make([]string, 0, e.maxSentences)
	for _, s := range sentences {
		lower := strings.ToLower(s)
		if lowerTitle != "" && strings.Contains(lower, lowerTitle) {
			continue
		}
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		selected = append(selected, formatSentence(s))
		if len(selected) == e.maxSentences {
			break
		}
	}

	out := strings.Join(selected, " ")
	if out == "" {
		return orDefault(title)
	}
	return capWords(out, e.maxWords)
}

// splitSentences режет текст по концу предложения и отбрасывает короткие обрывки.
func splitSentences(text string) []string {
	marked := sentenceSplit.ReplaceAllString(text, "$1\n")
	var out []string
	for _, raw := range strings.Split(marked, "\n") {
		s := strings.TrimSpace(raw)
		if utf8.RuneCountInString(s) < minSentenceLen {
			continue
		}
		s = strings.TrimSpace(strings.TrimRight(s, ".!?"))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func formatSentence(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(r)) + s[size:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}

func capWords(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) <= limit {
		return text
	}
	out := strings.TrimSpace(strings.Join(words[:limit], " "))
	out = strings.TrimRight(out, ",;:")
	if !strings.HasSuffix(out, ".") {
		out += "."
	}
	return out
}

func orDefault(title string) string {
	if title != "" {
		return title
	}
	return DefaultText
}

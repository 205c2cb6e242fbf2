package formatter

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

const (
	// telegramMaxMessageLength - максимальная длина сообщения в Telegram (4096 символов)
	telegramMaxMessageLength = 4096
	// headerTemplate - шаблон для нумерации сообщений
	headerTemplate = "Morning Glow (%d/%d)\n\n"
	// headerReserve - место под заголовок нумерации
	headerReserve = 30
	// minMessageLength - меньший лимит не вмещает приветствие и ссылку
	minMessageLength = 200
	// ellipsis - символы, добавляемые при обрезке сообщения
	ellipsis = "..."
	// blockSeparator - разделитель между историями
	blockSeparator = "\n\n"
)

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

// MessageFormatter форматирует выпуск в Markdown-сообщения Telegram.
type MessageFormatter struct {
	maxLength int
}

// NewMessageFormatter создаёт форматтер. Слишком маленький или нулевой maxLength заменяется лимитом Telegram.
func NewMessageFormatter(maxLength int) *MessageFormatter {
	if maxLength < minMessageLength || maxLength > telegramMaxMessageLength {
		maxLength = telegramMaxMessageLength
	}
	return &MessageFormatter{maxLength: maxLength}
}

// BuildMessages реализует telegram.Formatter.
// Каждая история идёт отдельным блоком; блоки не разрываются между сообщениями.
func (f *MessageFormatter) BuildMessages(d news.Digest) ([]string, error) {
	if len(d.Stories) == 0 {
		return nil, nil
	}

	limit := f.maxLength - headerReserve
	blocks := make([]string, 0, len(d.Stories)+2)
	blocks = append(blocks, "*Good morning* ☀️\n"+d.Date.Format(dateLayout))
	for _, s := range d.Stories {
		blocks = append(blocks, storyBlock(s, limit))
	}
	if d.Affirmation != "" {
		blocks = append(blocks, "_"+fitEscaped(d.Affirmation, limit-2)+"_")
	}

	return f.split(blocks), nil
}

// storyBlock собирает блок истории не длиннее limit рун.
// Обрезаются только заголовок и резюме до экранирования, разметка остаётся целой.
func storyBlock(s news.Article, limit int) string {
	var sb strings.Builder
	linkOverhead := len("[]()") + utf8.RuneCountInString(s.URL)
	if len(s.Categories) > 0 {
		labels := make([]string, 0, len(s.Categories))
		for _, c := range s.Categories {
			labels = append(labels, c.Label())
		}
		line := "_" + markdownEscaper.Replace(strings.Join(labels, " · ")) + "_\n"
		if utf8.RuneCountInString(line)+linkOverhead+len(ellipsis) <= limit {
			sb.WriteString(line)
		}
	}
	// Формат: [Заголовок](URL)
	title := fitEscaped(s.Title, limit-utf8.RuneCountInString(sb.String())-linkOverhead)
	fmt.Fprintf(&sb, "[%s](%s)", title, s.URL)
	if s.Summary != "" {
		budget := limit - utf8.RuneCountInString(sb.String()) - 1
		if summary := fitEscaped(s.Summary, budget); summary != "" {
			sb.WriteString("\n" + summary)
		}
	}
	return sb.String()
}

// fitEscaped экранирует text так, чтобы результат уместился в budget рун.
// Лишнее отрезается от исходного текста, поэтому экранирующий \ не отрывается от своего символа.
func fitEscaped(text string, budget int) string {
	escaped := markdownEscaper.Replace(text)
	if utf8.RuneCountInString(escaped) <= budget {
		return escaped
	}
	if budget <= len(ellipsis) {
		return ""
	}
	r := []rune(text)
	n := min(budget-len(ellipsis), len(r))
	for n > 0 {
		escaped = markdownEscaper.Replace(strings.TrimRightFunc(string(r[:n]), unicode.IsSpace))
		over := utf8.RuneCountInString(escaped) + len(ellipsis) - budget
		if over <= 0 {
			return escaped + ellipsis
		}
		n -= over
	}
	return ""
}

// split раскладывает блоки по сообщениям, не превышая лимит с учётом заголовка нумерации.
func (f *MessageFormatter) split(blocks []string) []string {
	limit := f.maxLength - headerReserve
	var messages []string
	var current strings.Builder

	for _, block := range blocks {
		extra := utf8.RuneCountInString(block)
		if current.Len() > 0 {
			extra += len(blockSeparator)
		}
		if current.Len() > 0 && utf8.RuneCountInString(current.String())+extra > limit {
			messages = append(messages, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(blockSeparator)
		}
		current.WriteString(block)
	}
	if current.Len() > 0 {
		messages = append(messages, current.String())
	}

	// Добавляем нумерацию ко всем сообщениям, если их больше одного
	if len(messages) > 1 {
		total := len(messages)
		for i := range messages {
			messages[i] = fmt.Sprintf(headerTemplate, i+1, total) + messages[i]
		}
	}
	return messages
}

package formatter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

//go:embed templates/digest.html
var templatesFS embed.FS

const dateLayout = "Monday, January 2, 2006"

// Rendered: письмо в двух представлениях.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// EmailRenderer собирает HTML и текстовую версию утреннего письма.
type EmailRenderer struct {
	subject string
	tmpl    *template.Template
}

type storyView struct {
	Title      string
	URL        string
	Source     string
	Summary    string
	Categories []string
}

type digestView struct {
	Subject     string
	Date        string
	Greeting    string
	Stories     []storyView
	Affirmation string
}

// NewEmailRenderer разбирает встроенный шаблон.
func NewEmailRenderer(subject string) (*EmailRenderer, error) {
	if subject == "" {
		subject = "Your Morning Glow"
	}
	tmpl, err := template.New("digest.html").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templatesFS, "templates/digest.html")
	if err != nil {
		return nil, fmt.Errorf("parse email template: %w", err)
	}
	return &EmailRenderer{subject: subject, tmpl: tmpl}, nil
}

// Render готовит письмо с заданным приветствием.
func (r *EmailRenderer) Render(d news.Digest, greeting string) (Rendered, error) {
	view := r.view(d, greeting)

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return Rendered{}, fmt.Errorf("render email: %w", err)
	}
	return Rendered{
		Subject: view.Subject,
		HTML:    buf.String(),
		Text:    renderText(view),
	}, nil
}

func (r *EmailRenderer) view(d news.Digest, greeting string) digestView {
	stories := make([]storyView, 0, len(d.Stories))
	for _, s := range d.Stories {
		labels := make([]string, 0, len(s.Categories))
		for _, c := range s.Categories {
			labels = append(labels, c.Label())
		}
		stories = append(stories, storyView{
			Title:      s.Title,
			URL:        s.URL,
			Source:     s.Source,
			Summary:    s.Summary,
			Categories: labels,
		})
	}
	date := d.Date.Format(dateLayout)
	return digestView{
		Subject:     fmt.Sprintf("%s · %s", r.subject, d.Date.Format("January 2")),
		Date:        date,
		Greeting:    greeting,
		Stories:     stories,
		Affirmation: d.Affirmation,
	}
}

func renderText(v digestView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s\n\n", v.Greeting, v.Date)
	sb.WriteString("Here are a few gentle, hopeful stories for your morning.\n\n")
	for i, s := range v.Stories {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, s.Title)
		if s.Summary != "" {
			sb.WriteString(s.Summary + "\n")
		}
		if s.URL != "" {
			sb.WriteString(s.URL + "\n")
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Today's affirmation: %s\n", v.Affirmation)
	return sb.String()
}

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath: путь к основному конфигу относительно корня репозитория.
const DefaultPath = "configs/morningglow.yaml"

// ErrInvalidConfig возвращается Validate при противоречивых значениях.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// Root объединяет все конфигурационные блоки.
	Root struct {
		Pipeline Pipeline `yaml:"pipeline"`
		Sources  Sources  `yaml:"sources"`
		Gemini   Gemini   `yaml:"gemini"`
		History  History  `yaml:"history"`
		Email    Email    `yaml:"email"`
		Telegram Telegram `yaml:"telegram"`
		Schedule Schedule `yaml:"schedule"`
	}

	// Pipeline описывает границы выпуска и окна.
	Pipeline struct {
		MinStories           int      `yaml:"min_stories"`
		MaxStories           int      `yaml:"max_stories"`
		DedupeWindowHours    int      `yaml:"dedupe_window_hours"` // окно повторов истории
		RecencyHours         int      `yaml:"recency_hours"`       // свежесть статей при сборе
		SpeculationThreshold int      `yaml:"speculation_threshold"`
		SummaryWords         int      `yaml:"summary_words"`
		SummarySentences     int      `yaml:"summary_sentences"`
		Queries              []string `yaml:"queries"`
	}

	// Sources настраивает сбор статей.
	Sources struct {
		NewsAPIBaseURL      string `yaml:"newsapi_base_url"`
		GoogleNews          bool   `yaml:"google_news"`
		GoogleNewsMaxItems  int    `yaml:"google_news_max_items"`
		ProbeEvery          int    `yaml:"probe_every"`
		ProbeTimeoutSeconds int    `yaml:"probe_timeout_seconds"`
		HTTPTimeoutSeconds  int    `yaml:"http_timeout_seconds"`
		Feeds               []Feed `yaml:"feeds"`
	}

	// Feed: кураторская RSS/Atom-лента.
	Feed struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
		URL  string `yaml:"url"`
	}

	// Gemini содержит настройки модели суммаризации.
	Gemini struct {
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds"` // на одну попытку
	}

	// History выбирает бэкенд журнала отправок: file, sqlite или memory.
	History struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
	}

	// Email: параметры письма и предпросмотра.
	Email struct {
		Subject    string `yaml:"subject"`
		PreviewDir string `yaml:"preview_dir"`
	}

	// Telegram: необязательный второй канал доставки.
	Telegram struct {
		MaxMessageLength int `yaml:"max_message_length"`
	}

	// Schedule задаёт ежедневный запуск. Пустой Cron: одноразовый запуск.
	Schedule struct {
		Cron     string `yaml:"cron"`
		Timezone string `yaml:"timezone"`
	}
)

// Load читает конфиг, применяет переопределения из окружения (если env не nil),
// затем дефолты, и проверяет результат.
func Load(path string, env *EnvConfig) (Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Root{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Root
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Root{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if env != nil {
		env.Apply(&cfg)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Root{}, err
	}
	return cfg, nil
}

// Normalize заполняет незаданные поля значениями по умолчанию.
func (r *Root) Normalize() {
	p := &r.Pipeline
	if p.MinStories == 0 {
		p.MinStories = 3
	}
	if p.MaxStories == 0 {
		p.MaxStories = 5
	}
	if p.DedupeWindowHours == 0 {
		p.DedupeWindowHours = 7 * 24
	}
	if p.RecencyHours == 0 {
		p.RecencyHours = 24
	}
	if p.SpeculationThreshold == 0 {
		p.SpeculationThreshold = 3
	}
	if p.SummaryWords == 0 {
		p.SummaryWords = 170
	}
	if p.SummarySentences == 0 {
		p.SummarySentences = 7
	}
	if len(p.Queries) == 0 {
		p.Queries = []string{
			"environmental conservation success",
			"medical breakthrough hope",
			"community kindness volunteers",
			"education achievement students",
			"renewable energy innovation",
		}
	}

	s := &r.Sources
	if s.NewsAPIBaseURL == "" {
		s.NewsAPIBaseURL = "https://newsapi.org"
	}
	if s.GoogleNewsMaxItems == 0 {
		s.GoogleNewsMaxItems = 50
	}
	if s.ProbeEvery == 0 {
		s.ProbeEvery = 5
	}
	if s.ProbeTimeoutSeconds == 0 {
		s.ProbeTimeoutSeconds = 3
	}
	if s.HTTPTimeoutSeconds == 0 {
		s.HTTPTimeoutSeconds = 15
	}

	if r.Gemini.Model == "" {
		r.Gemini.Model = "gemini-2.0-flash"
	}
	if r.Gemini.TimeoutSeconds == 0 {
		r.Gemini.TimeoutSeconds = 30
	}

	if r.History.Backend == "" {
		r.History.Backend = "file"
	}
	if r.History.Path == "" {
		switch r.History.Backend {
		case "sqlite":
			r.History.Path = "state/history.db"
		default:
			r.History.Path = "state/sent_stories.ndjson"
		}
	}

	if r.Email.Subject == "" {
		r.Email.Subject = "Your Morning Glow"
	}
	if r.Email.PreviewDir == "" {
		r.Email.PreviewDir = "preview"
	}
	if r.Telegram.MaxMessageLength == 0 {
		r.Telegram.MaxMessageLength = 4096
	}
	if r.Schedule.Timezone == "" {
		r.Schedule.Timezone = "UTC"
	}
}

// Validate проверяет значения после Normalize.
func (r Root) Validate() error {
	p := r.Pipeline
	if p.MinStories < 1 {
		return fmt.Errorf("%w: min_stories must be at least 1, got %d", ErrInvalidConfig, p.MinStories)
	}
	if p.MaxStories < p.MinStories {
		return fmt.Errorf("%w: max_stories (%d) is less than min_stories (%d)", ErrInvalidConfig, p.MaxStories, p.MinStories)
	}
	if p.DedupeWindowHours < 0 || p.RecencyHours < 0 {
		return fmt.Errorf("%w: windows must not be negative", ErrInvalidConfig)
	}
	switch r.History.Backend {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("%w: unknown history backend %q", ErrInvalidConfig, r.History.Backend)
	}
	if _, err := time.LoadLocation(r.Schedule.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, r.Schedule.Timezone, err)
	}
	for i, f := range r.Sources.Feeds {
		if f.URL == "" {
			return fmt.Errorf("%w: feed %d (%s) has no url", ErrInvalidConfig, i, f.ID)
		}
	}
	return nil
}

// DedupeWindow возвращает окно повторов как time.Duration.
func (p Pipeline) DedupeWindow() time.Duration {
	return time.Duration(p.DedupeWindowHours) * time.Hour
}

// Recency возвращает окно свежести статей.
func (p Pipeline) Recency() time.Duration {
	return time.Duration(p.RecencyHours) * time.Hour
}

// Timeout возвращает дедлайн одной попытки запроса к модели.
func (g Gemini) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// Location возвращает часовой пояс расписания. Вызывать после Validate.
func (s Schedule) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

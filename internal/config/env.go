package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingEnv: не задана обязательная переменная окружения.
var ErrMissingEnv = errors.New("missing required environment variable")

// EnvConfig содержит секреты и переключатели из окружения.
type EnvConfig struct {
	NewsAPIKey   string
	GeminiAPIKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string
	Recipients   []string

	OwnerEmail string
	OwnerName  string

	TelegramBotToken string
	TelegramChatIDs  []string

	SkipGemini  bool // суммаризация только экстрактивная
	PreviewMode bool // ничего не отправлять, только сохранить HTML

	CronSchedule   string
	LogLevel       string
	HistoryBackend string
	HistoryPath    string
	ConfigPath     string
}

// LoadDotEnv подгружает .env, если он есть. Уже заданные переменные не перетираются.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LoadEnvOverrides читает только переопределения файлового конфига и уровень логов.
// Секреты не требуются (используется сервером предпросмотра).
func LoadEnvOverrides() *EnvConfig {
	return &EnvConfig{
		CronSchedule:   strings.TrimSpace(os.Getenv("CRON_SCHEDULE")),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		HistoryBackend: os.Getenv("HISTORY_BACKEND"),
		HistoryPath:    os.Getenv("HISTORY_PATH"),
		ConfigPath:     os.Getenv("MORNINGGLOW_CONFIG"),
	}
}

// LoadEnvConfig читает переменные окружения и возвращает конфигурацию.
// GEMINI_API_KEY обязателен, если не задан SKIP_GEMINI=1.
func LoadEnvConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{
		NewsAPIKey:       os.Getenv("NEWSAPI_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		EmailFrom:        os.Getenv("EMAIL_FROM"),
		Recipients:       splitList(os.Getenv("RECIPIENTS")),
		OwnerEmail:       strings.TrimSpace(os.Getenv("OWNER_EMAIL")),
		OwnerName:        strings.TrimSpace(os.Getenv("OWNER_NAME")),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatIDs:  splitList(os.Getenv("TELEGRAM_CHAT_IDS")),
		SkipGemini:       os.Getenv("SKIP_GEMINI") == "1",
		PreviewMode:      os.Getenv("PREVIEW_MODE") == "1",
	}
	overrides := LoadEnvOverrides()
	cfg.CronSchedule = overrides.CronSchedule
	cfg.LogLevel = overrides.LogLevel
	cfg.HistoryBackend = overrides.HistoryBackend
	cfg.HistoryPath = overrides.HistoryPath
	cfg.ConfigPath = overrides.ConfigPath

	if !cfg.SkipGemini && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY (or set SKIP_GEMINI=1)", ErrMissingEnv)
	}

	cfg.SMTPPort = 587
	if raw := strings.TrimSpace(os.Getenv("SMTP_PORT")); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 {
			return nil, fmt.Errorf("SMTP_PORT: invalid value %q", raw)
		}
		cfg.SMTPPort = port
	}

	// Владелец всегда получает письмо, даже если не указан в RECIPIENTS.
	if cfg.OwnerEmail != "" && !containsFold(cfg.Recipients, cfg.OwnerEmail) {
		cfg.Recipients = append(cfg.Recipients, cfg.OwnerEmail)
	}
	return cfg, nil
}

// SMTPConfigured сообщает, что заданы все параметры для отправки писем.
func (c *EnvConfig) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.EmailFrom != "" && len(c.Recipients) > 0
}

// TelegramConfigured сообщает, что задан бот и хотя бы один чат.
func (c *EnvConfig) TelegramConfigured() bool {
	return c.TelegramBotToken != "" && len(c.TelegramChatIDs) > 0
}

// Apply переносит переопределения из окружения в файловый конфиг.
func (c *EnvConfig) Apply(root *Root) {
	if c.HistoryBackend != "" {
		root.History.Backend = c.HistoryBackend
	}
	if c.HistoryPath != "" {
		root.History.Path = c.HistoryPath
	}
	if c.CronSchedule != "" {
		root.Schedule.Cron = c.CronSchedule
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsFold(list []string, value string) bool {
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

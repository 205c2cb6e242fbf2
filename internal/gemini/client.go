package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiClient определяет интерфейс для работы с Gemini API.
// Это позволяет легко создавать моки для тестирования.
type GeminiClient interface {
	GenerateText(ctx context.Context, model string, prompt string) (string, error)
}

// ErrQuotaExceeded: дневная квота исчерпана, повторять бессмысленно.
var ErrQuotaExceeded = errors.New("gemini quota exceeded")

// RetryPolicy задаёт число попыток и паузы между ними.
type RetryPolicy struct {
	MaxAttempts      int
	BaseDelay        time.Duration // линейный рост для временных ошибок
	MaxDelay         time.Duration
	RateLimitDelay   time.Duration // 429 RPM/TPM
	UnavailableDelay time.Duration // 503, модель перегружена
	AttemptTimeout   time.Duration // дедлайн одной попытки, паузы между попытками в него не входят
}

// DefaultRetryPolicy рассчитана на ежедневный запуск: ждать можно, но не бесконечно.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:      3,
		BaseDelay:        5 * time.Second,
		MaxDelay:         30 * time.Second,
		RateLimitDelay:   time.Minute,
		UnavailableDelay: 2 * time.Minute,
		AttemptTimeout:   30 * time.Second,
	}
}

type generateFunc func(ctx context.Context, model, prompt string) (string, error)

// Client инкапсулирует работу с Gemini API через официальный SDK.
type Client struct {
	generate generateFunc
	policy   RetryPolicy
	logger   *slog.Logger
}

// Убеждаемся, что Client реализует интерфейс GeminiClient.
var _ GeminiClient = (*Client)(nil)

// NewClient создаёт клиент Gemini API с явно переданным ключом.
func NewClient(ctx context.Context, apiKey string, policy RetryPolicy, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	generate := func(ctx context.Context, model, prompt string) (string, error) {
		result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err != nil {
			return "", err
		}
		text, err := result.Text()
		if err != nil {
			return "", fmt.Errorf("get text from result: %w", err)
		}
		return text, nil
	}
	return newClient(generate, policy, logger), nil
}

func newClient(generate generateFunc, policy RetryPolicy, logger *slog.Logger) *Client {
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{generate: generate, policy: policy, logger: logger}
}

// GenerateText отправляет промпт модели и возвращает текстовый ответ.
// Временные ошибки (429 RPM/TPM, 5xx) повторяются, исчерпанная квота: нет.
func (c *Client) GenerateText(ctx context.Context, model string, prompt string) (string, error) {
	var lastErr error
	var delay time.Duration
	for attempt := 0; attempt < c.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			c.logger.Info("retrying gemini request", "attempt", attempt+1, "max", c.policy.MaxAttempts, "delay", delay)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		text, err := c.attempt(ctx, model, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		class := classify(err.Error())
		if errors.Is(err, context.DeadlineExceeded) {
			// истёк дедлайн попытки, а не вызывающего
			class = errTemporary
		}
		switch class {
		case errQuota:
			c.logger.Error("gemini quota exhausted, not retrying", "err", err)
			return "", fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		case errRateLimit:
			c.logger.Warn("gemini rate limited", "err", err)
			delay = c.policy.RateLimitDelay
		case errUnavailable:
			c.logger.Warn("gemini model overloaded", "err", err)
			delay = c.policy.UnavailableDelay
		case errTemporary:
			c.logger.Warn("gemini temporary error", "err", err)
			delay = c.policy.BaseDelay * time.Duration(attempt+1)
			if delay > c.policy.MaxDelay {
				delay = c.policy.MaxDelay
			}
		default:
			return "", fmt.Errorf("generate content: %w", err)
		}
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) attempt(ctx context.Context, model, prompt string) (string, error) {
	if c.policy.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.policy.AttemptTimeout)
		defer cancel()
	}
	return c.generate(ctx, model, prompt)
}

type errClass int

const (
	errPermanent errClass = iota
	errQuota
	errRateLimit
	errUnavailable
	errTemporary
)

// classify раскладывает ошибку SDK по тексту: у genai нет типизированных кодов для всех случаев.
func classify(errStr string) errClass {
	s := strings.ToLower(errStr)
	switch {
	case containsAny(s, "429", "rate limit", "too many requests", "resource exhausted"):
		// Дневной лимит бесплатного тарифа тоже приходит как 429.
		if containsAny(s, "generate_content_free_tier_requests", "limit: 20", "per day", "daily") {
			return errQuota
		}
		return errRateLimit
	case containsAny(s, "503", "service unavailable", "overloaded"):
		return errUnavailable
	case containsAny(s, "500", "502", "504", "internal server error", "bad gateway", "gateway timeout"):
		return errTemporary
	case containsAny(s, "quota", "daily limit"):
		return errQuota
	default:
		return errPermanent
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

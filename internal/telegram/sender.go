package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

const (
	// telegramRateLimit - лимит Telegram Bot API: 30 сообщений в секунду
	telegramRateLimitPerSecond = 30
	// retryAttempts - количество попыток отправки при ошибке
	retryAttempts = 3
	// retryDelay - задержка между попытками
	retryDelay = 2 * time.Second
	// rateLimitDelay - минимальная задержка между сообщениями для соблюдения rate limit
	rateLimitDelay = time.Second / telegramRateLimitPerSecond // ~33ms между сообщениями
)

// Formatter превращает выпуск в набор сообщений.
type Formatter interface {
	BuildMessages(d news.Digest) ([]string, error)
}

// Sender доставляет выпуск в Telegram-чаты. Результат по каждому чату
// попадает в DeliveryReport с ключом "telegram:<chat_id>".
type Sender struct {
	client    TelegramClient
	formatter Formatter
	chatIDs   []string
	logger    *slog.Logger

	retryDelay     time.Duration
	rateLimitDelay time.Duration
}

// NewSender создаёт новый экземпляр отправителя.
func NewSender(client TelegramClient, formatter Formatter, chatIDs []string, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{
		client:         client,
		formatter:      formatter,
		chatIDs:        chatIDs,
		logger:         logger,
		retryDelay:     retryDelay,
		rateLimitDelay: rateLimitDelay,
	}
}

// ReportKey возвращает ключ чата в DeliveryReport.
func ReportKey(chatID string) string {
	return "telegram:" + chatID
}

// Deliver реализует app.Deliverer.
// Отправляет каждое сообщение каждому чату с учётом rate limits и retry-логики.
// Ошибка одного чата не прерывает отправку остальным.
func (s *Sender) Deliver(ctx context.Context, d news.Digest) (news.DeliveryReport, error) {
	if len(s.chatIDs) == 0 {
		return nil, fmt.Errorf("no telegram chats configured")
	}
	messages, err := s.formatter.BuildMessages(d)
	if err != nil {
		return nil, fmt.Errorf("build messages: %w", err)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages to send")
	}

	report := make(news.DeliveryReport, len(s.chatIDs))
	lastSentTime := time.Time{}

	for _, chatID := range s.chatIDs {
		ok := true
		for _, message := range messages {
			// Контроль rate limit: минимальная задержка между сообщениями
			if wait := s.rateLimitDelay - time.Since(lastSentTime); wait > 0 {
				select {
				case <-ctx.Done():
					return report, ctx.Err()
				case <-time.After(wait):
				}
			}

			if err := s.sendWithRetry(ctx, chatID, message); err != nil {
				s.logger.Error("telegram send failed", "chat_id", chatID, "err", err)
				ok = false
				break
			}
			lastSentTime = time.Now()
		}
		report[ReportKey(chatID)] = ok
	}

	s.logger.Info("telegram delivery finished", "chats", len(s.chatIDs), "delivered", report.Delivered(), "messages", len(messages))
	return report, nil
}

// sendWithRetry отправляет сообщение с повторными попытками при ошибках.
func (s *Sender) sendWithRetry(ctx context.Context, chatID string, message string) error {
	var lastErr error

	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			// Задержка перед повтором (линейная с максимумом)
			delay := s.retryDelay * time.Duration(attempt)
			if delay > 10*time.Second {
				delay = 10 * time.Second
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := s.client.SendMessage(ctx, chatID, message, "Markdown")
		if err == nil {
			return nil
		}

		lastErr = err

		// Для некоторых ошибок (чат не найден, бот заблокирован) повтор не поможет
		if !isRetryableError(err) {
			return err
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// isRetryableError определяет, можно ли повторить отправку при данной ошибке.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Ошибки, при которых повтор не поможет
	nonRetryableErrors := []string{
		"chat not found",
		"bot was blocked",
		"user is deactivated",
		"chat_id is empty",
		"message is too long",
		"bad request",
		"unauthorized",
	}

	for _, nonRetryable := range nonRetryableErrors {
		if strings.Contains(errStr, nonRetryable) {
			return false
		}
	}

	// По умолчанию считаем ошибку повторяемой (сетевые ошибки, временные проблемы API)
	return true
}

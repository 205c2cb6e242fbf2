package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// mockTelegramClient - мок для тестирования Sender
type mockTelegramClient struct {
	mu              sync.Mutex
	calls           int
	sendMessageFunc func(ctx context.Context, chatID string, text string, parseMode string) error
}

func (m *mockTelegramClient) SendMessage(ctx context.Context, chatID string, text string, parseMode string) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.sendMessageFunc != nil {
		return m.sendMessageFunc(ctx, chatID, text, parseMode)
	}
	return nil
}

type staticFormatter struct {
	messages []string
	err      error
}

func (f staticFormatter) BuildMessages(news.Digest) ([]string, error) { return f.messages, f.err }

func newTestSender(client TelegramClient, messages []string, chatIDs ...string) *Sender {
	s := NewSender(client, staticFormatter{messages: messages}, chatIDs, nil)
	s.retryDelay = time.Millisecond
	s.rateLimitDelay = 0
	return s
}

func TestSender_Deliver(t *testing.T) {
	tests := []struct {
		name      string
		chatIDs   []string
		messages  []string
		mockFunc  func(ctx context.Context, chatID string, text string, parseMode string) error
		wantErr   bool
		want      news.DeliveryReport
		wantCalls int
	}{
		{
			name:     "no chats",
			messages: []string{"test"},
			wantErr:  true,
		},
		{
			name:     "no messages",
			chatIDs:  []string{"123"},
			messages: nil,
			wantErr:  true,
		},
		{
			name:      "successful send",
			chatIDs:   []string{"123", "456"},
			messages:  []string{"Message 1", "Message 2"},
			want:      news.DeliveryReport{"telegram:123": true, "telegram:456": true},
			wantCalls: 4,
		},
		{
			name:     "retryable error exhausts attempts",
			chatIDs:  []string{"123"},
			messages: []string{"Message 1"},
			mockFunc: func(context.Context, string, string, string) error {
				return errors.New("network timeout")
			},
			want:      news.DeliveryReport{"telegram:123": false},
			wantCalls: retryAttempts,
		},
		{
			name:     "non-retryable error fails one chat only",
			chatIDs:  []string{"bad", "good"},
			messages: []string{"Message 1", "Message 2"},
			mockFunc: func(_ context.Context, chatID string, _ string, _ string) error {
				if chatID == "bad" {
					return errors.New("telegram api status 400: Bad Request: chat not found")
				}
				return nil
			},
			want:      news.DeliveryReport{"telegram:bad": false, "telegram:good": true},
			wantCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := &mockTelegramClient{sendMessageFunc: tt.mockFunc}
			sender := newTestSender(mockClient, tt.messages, tt.chatIDs...)

			got, err := sender.Deliver(context.Background(), news.Digest{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Deliver() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Deliver() report = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("report[%s] = %v, want %v", k, got[k], v)
				}
			}
			if mockClient.calls != tt.wantCalls {
				t.Errorf("SendMessage calls = %d, want %d", mockClient.calls, tt.wantCalls)
			}
		})
	}
}

func TestSender_Deliver_FormatterError(t *testing.T) {
	s := NewSender(&mockTelegramClient{}, staticFormatter{err: errors.New("template")}, []string{"1"}, nil)
	if _, err := s.Deliver(context.Background(), news.Digest{}); err == nil {
		t.Error("Deliver() should fail when messages cannot be built")
	}
}

func TestSender_Deliver_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mockClient := &mockTelegramClient{}
	s := NewSender(mockClient, staticFormatter{messages: []string{"a", "b"}}, []string{"1"}, nil)
	s.rateLimitDelay = time.Hour

	if _, err := s.Deliver(ctx, news.Digest{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Deliver() error = %v, want context.Canceled", err)
	}
}

func TestSender_isRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "retryable network error",
			err:  errors.New("network timeout"),
			want: true,
		},
		{
			name: "non-retryable chat not found",
			err:  errors.New("Bad Request: chat not found"),
			want: false,
		},
		{
			name: "non-retryable bot blocked",
			err:  errors.New("Forbidden: bot was blocked by the user"),
			want: false,
		},
		{
			name: "non-retryable message too long",
			err:  errors.New("message is too long"),
			want: false,
		},
		{
			name: "non-retryable bad token",
			err:  errors.New("telegram api status 401: Unauthorized"),
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isRetryableError(tt.err)
			if got != tt.want {
				t.Errorf("isRetryableError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSender_RateLimit(t *testing.T) {
	// Тест проверяет, что rate limiting работает
	mockClient := &mockTelegramClient{}
	sender := NewSender(mockClient, staticFormatter{messages: []string{"Message 1", "Message 2", "Message 3"}}, []string{"123", "456"}, nil)

	start := time.Now()
	if _, err := sender.Deliver(context.Background(), news.Digest{}); err != nil {
		t.Errorf("Deliver() error = %v", err)
	}
	duration := time.Since(start)

	// rateLimitDelay = ~33ms, для 6 сообщений минимум ~165ms
	if duration < 100*time.Millisecond {
		t.Errorf("Deliver() should respect rate limit, duration = %v", duration)
	}
}

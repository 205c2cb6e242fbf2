package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/Amulyanrao7777/MorningGlow/internal/formatter"
	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// Transport отправляет готовое письмо одному адресату.
type Transport interface {
	Send(ctx context.Context, from, to string, msg []byte) error
}

// SMTPConfig: параметры SMTP-сервера.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPTransport отправляет письма через net/smtp (STARTTLS, PLAIN-авторизация).
type SMTPTransport struct {
	cfg SMTPConfig
}

// NewSMTPTransport создаёт транспорт.
func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPTransport{cfg: cfg}
}

// Send реализует Transport. net/smtp не принимает контекст, поэтому проверяется только отмена до отправки.
func (t *SMTPTransport) Send(ctx context.Context, from, to string, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if t.cfg.Username != "" {
		auth = smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
	}
	addr := net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.Port))
	if err := smtp.SendMail(addr, auth, from, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// Owner: владелец рассылки, которому достаётся персональное приветствие.
type Owner struct {
	Email string
	Name  string
}

// Sender рендерит и отправляет утреннее письмо каждому получателю отдельно.
type Sender struct {
	transport  Transport
	renderer   *formatter.EmailRenderer
	from       string
	recipients []string
	owner      Owner
	clock      func() time.Time
	logger     *slog.Logger
}

// NewSender создаёт отправителя писем.
func NewSender(transport Transport, renderer *formatter.EmailRenderer, from string, recipients []string, owner Owner, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{
		transport:  transport,
		renderer:   renderer,
		from:       from,
		recipients: recipients,
		owner:      owner,
		clock:      time.Now,
		logger:     logger,
	}
}

// Deliver реализует app.Deliverer: результат по каждому адресату, ошибка одного не мешает остальным.
func (s *Sender) Deliver(ctx context.Context, d news.Digest) (news.DeliveryReport, error) {
	if len(s.recipients) == 0 {
		return nil, errors.New("no email recipients configured")
	}

	report := make(news.DeliveryReport, len(s.recipients))
	for _, to := range s.recipients {
		if err := s.sendOne(ctx, d, to); err != nil {
			s.logger.Error("email delivery failed", "recipient", to, "err", err)
			report[to] = false
			continue
		}
		s.logger.Info("email delivered", "recipient", to)
		report[to] = true
	}
	return report, nil
}

func (s *Sender) sendOne(ctx context.Context, d news.Digest, to string) error {
	greeting := formatter.Greeting(to, s.owner.Email, s.owner.Name)
	rendered, err := s.renderer.Render(d, greeting)
	if err != nil {
		return err
	}
	msg, err := buildMessage(s.from, to, rendered, s.clock())
	if err != nil {
		return err
	}
	return s.transport.Send(ctx, s.from, to, msg)
}

package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-leave/internal/events"
	"go-leave/internal/shared/config"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// ErrPermanent marks delivery errors that will not go away on retry.
var ErrPermanent = errors.New("permanent delivery failure")

// Client is the part of *gomail.Client the sender needs.
type Client interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

func NewSMTPClient(cfg config.SMTPConfig) (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTimeout(cfg.DialTimeout),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	if cfg.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	return gomail.NewClient(cfg.Host, opts...)
}

type Sender struct {
	client  Client
	from    string
	timeout time.Duration
	logger  *zap.Logger
}

func NewSender(client Client, from string, timeout time.Duration, logger ...*zap.Logger) *Sender {
	l := zap.L().Named("mail.sender")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("mail.sender")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Sender{client: client, from: from, timeout: timeout, logger: l}
}

func (s *Sender) Send(ctx context.Context, event events.LeaveMailRequestedEvent) error {
	msg, err := s.build(event)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.DialAndSendWithContext(sendCtx, msg); err != nil {
		return fmt.Errorf("send %s mail: %w", event.Kind, err)
	}
	s.logger.Debug("mail delivered", zap.String("kind", event.Kind), zap.String("to", event.To))
	return nil
}

func (s *Sender) build(event events.LeaveMailRequestedEvent) (*gomail.Msg, error) {
	subject, body, err := Render(event)
	if err != nil {
		return nil, err
	}

	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("%w: sender address: %v", ErrPermanent, err)
	}
	if event.RecipientName != "" {
		err = msg.AddToFormat(event.RecipientName, event.To)
	} else {
		err = msg.To(event.To)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: recipient address: %v", ErrPermanent, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)
	return msg, nil
}

package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

var ErrSMTPNotConfigured = errors.New("smtp not configured")

// SMTPOptions configures the SMTP sender. Port 465 uses implicit TLS, any
// other port upgrades with STARTTLS when the server offers it.
type SMTPOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
	Timeout  time.Duration
}

// SMTPSender sends HTML email through an authenticated SMTP relay.
type SMTPSender struct {
	client   *mail.Client
	from     string
	fromName string
}

var _ EmailSender = (*SMTPSender)(nil)

func NewSMTPSender(opts SMTPOptions) (*SMTPSender, error) {
	if opts.Host == "" || opts.Username == "" || opts.Password == "" {
		return nil, ErrSMTPNotConfigured
	}
	if opts.Port == 0 {
		opts.Port = 465
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	clientOpts := []mail.Option{
		mail.WithPort(opts.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(opts.Username),
		mail.WithPassword(opts.Password),
		mail.WithTimeout(opts.Timeout),
	}
	if opts.Port == 465 {
		clientOpts = append(clientOpts, mail.WithSSL())
	} else {
		clientOpts = append(clientOpts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(opts.Host, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: opts.Username, fromName: opts.FromName}, nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, html string) error {
	msg, err := s.message(to, subject, html)
	if err != nil {
		return err
	}
	return s.client.DialAndSendWithContext(ctx, msg)
}

func (s *SMTPSender) message(to, subject, html string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if s.fromName != "" {
		if err := msg.FromFormat(s.fromName, s.from); err != nil {
			return nil, fmt.Errorf("from address: %w", err)
		}
	} else if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)
	return msg, nil
}

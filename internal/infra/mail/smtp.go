package mail

import (
	"context"
	"fmt"

	gomail "github.com/go-mail/mail/v2"
	"go.uber.org/zap"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/infra/config"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/infra/logger"
)

// SMTPMailer delivers mail over SMTP using go-mail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

// NewSMTPMailer configures the SMTP dialer from mail settings.
func NewSMTPMailer(cfg config.MailSettings, log *zap.Logger) *SMTPMailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.Timeout > 0 {
		dialer.Timeout = cfg.Timeout
	}

	return &SMTPMailer{
		dialer: dialer,
		from:   cfg.FromAddress,
		log:    log,
	}
}

// Send delivers a single message, honouring context cancellation while the
// SMTP dial is in flight.
func (m *SMTPMailer) Send(ctx context.Context, mail port.Mail) error {
	msg := gomail.NewMessage()

	from := mail.From
	if from == "" {
		from = m.from
	}

	msg.SetHeader("From", from)
	msg.SetHeader("To", mail.To...)
	msg.SetHeader("Subject", mail.Subject)
	msg.SetBody("text/plain", mail.Body)

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	masked := make([]string, 0, len(mail.To))
	for _, addr := range mail.To {
		masked = append(masked, logger.MaskEmail(addr))
	}

	m.log.Info("mail delivered",
		zap.Strings("to", masked),
		zap.String("subject", mail.Subject),
	)

	return nil
}

var _ port.Mailer = (*SMTPMailer)(nil)

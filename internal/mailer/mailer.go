// Package mailer delivers password reset codes over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
)

// ErrNotConfigured is returned when a code must be sent but no SMTP
// credentials are available.
var ErrNotConfigured = errors.New("smtp username and password must be configured to send reset codes")

const resetSubject = "Your Admin Password Reset Code"

// Config holds the SMTP settings for the reset channel.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// From defaults to "Portfolio Admin <Username>".
	From string
}

// SMTPSender sends reset codes through an SMTP relay. Port 465 uses implicit
// TLS; any other port negotiates STARTTLS when the server offers it.
type SMTPSender struct {
	cfg    Config
	ttl    time.Duration
	dial   func() (gomail.SendCloser, error)
	logger *slog.Logger
}

// New creates an SMTPSender. ttl is the code validity quoted in the message
// body. A missing Username falls back to fallbackUser, which is normally the
// reset target address.
func New(cfg Config, fallbackUser string, ttl time.Duration, logger *slog.Logger) *SMTPSender {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == 0 {
		cfg.Port = 465
	}
	if cfg.Username == "" {
		cfg.Username = fallbackUser
	}
	if cfg.From == "" {
		cfg.From = (&mail.Address{Name: "Portfolio Admin", Address: cfg.Username}).String()
	}

	s := &SMTPSender{cfg: cfg, ttl: ttl, logger: logger}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.Port == 465
	s.dial = d.Dial
	return s
}

// SendResetCode mails code to the given address.
func (s *SMTPSender) SendResetCode(ctx context.Context, to, code string) error {
	if s.cfg.Username == "" || s.cfg.Password == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := s.resetMessage(to, code)

	conn, err := s.dial()
	if err != nil {
		return fmt.Errorf("dial smtp %s:%d: %w", s.cfg.Host, s.cfg.Port, err)
	}
	defer conn.Close()

	if err := gomail.Send(conn, msg); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}

	s.logger.Info("reset code sent", "to", to, "smtp_host", s.cfg.Host)
	return nil
}

func (s *SMTPSender) resetMessage(to, code string) *gomail.Message {
	minutes := int(s.ttl / time.Minute)
	expiry := fmt.Sprintf("This code will expire in %d minutes.", minutes)

	msg := gomail.NewMessage()
	msg.SetHeader("Date", msg.FormatDate(time.Now()))
	msg.SetHeader("Message-ID", messageID(s.cfg.Username))
	msg.SetHeader("From", s.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", resetSubject)

	msg.SetBody("text/plain", fmt.Sprintf(
		"Your password reset code is: %s\n\n%s\n\nIf you did not request this, you can ignore this email.",
		code, expiry))
	msg.AddAlternative("text/html", fmt.Sprintf(`<p>Your password reset code is:</p>
<p style="font-size: 24px; font-weight: bold; letter-spacing: 4px;">%s</p>
<p>%s</p>
<p>If you did not request this, you can ignore this email.</p>`, code, expiry))
	return msg
}

func messageID(sender string) string {
	domain := "localhost"
	if parts := strings.Split(sender, "@"); len(parts) > 1 && parts[1] != "" {
		domain = parts[1]
	}
	return "<" + strconv.FormatInt(time.Now().UnixNano(), 10) + "@" + domain + ">"
}

// Package notifier delivers HTML email through SMTP.
package notifier

import (
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// Notifier sends one message and reports success as a boolean. Delivery
// problems, including missing credentials, are never fatal.
type Notifier interface {
	Send(to, subject, htmlBody string) bool
}

// SMTPNotifier sends mail through a single SMTP account.
type SMTPNotifier struct {
	host   string
	port   int
	user   string
	pass   string
	logger *zap.Logger
}

func NewSMTP(host string, port int, user, pass string, logger *zap.Logger) *SMTPNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPNotifier{host: host, port: port, user: user, pass: pass, logger: logger}
}

func (n *SMTPNotifier) Send(to, subject, htmlBody string) bool {
	if n.user == "" || n.pass == "" {
		n.logger.Warn("email credentials not configured, skipping send",
			zap.String("to", to))
		return false
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.user)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(n.host, n.port, n.user, n.pass)
	if err := d.DialAndSend(m); err != nil {
		n.logger.Warn("failed to send email", zap.String("to", to), zap.Error(err))
		return false
	}

	n.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return true
}

package service

import (
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Notifier delivers a message to a user. Sending is fire-and-forget, a
// failed delivery never fails the request that triggered it.
type Notifier interface {
	Send(to, subject, body string)
}

type MailSink struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailSink(host string, port int, username, password, from string) *MailSink {
	return &MailSink{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *MailSink) Send(to, subject, body string) {
	if to == m.from {
		zap.L().Warn("Refusing to send mail to the sender address", zap.String("to", to))
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	go func() {
		if err := m.dialer.DialAndSend(msg); err != nil {
			zap.L().Error("Failed to send mail", zap.Error(err), zap.String("to", to), zap.String("subject", subject))
			return
		}

		zap.L().Debug("Mail sent", zap.String("to", to), zap.String("subject", subject))
	}()
}

// LogSink is used when mail is disabled. Bodies carry live verification and
// reset links so they are only logged at debug level.
type LogSink struct{}

func (LogSink) Send(to, subject, body string) {
	zap.L().Info("Mail disabled, notification not delivered",
		zap.String("to", to),
		zap.String("subject", subject))

	zap.L().Debug("Undelivered notification body",
		zap.String("to", to),
		zap.String("body", body))
}

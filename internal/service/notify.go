package service

import (
	"fmt"
	"net/smtp"

	"github.com/soloviev/wearshop/internal/config"
)

// Notifier отправляет пользователю письмо. Доставка fire-and-forget:
// ошибка отправки не откатывает уже сохранённый код.
type Notifier interface {
	Send(to, subject, body string) error
}

type smtpNotifier struct {
	addr string
	from string
}

// NewSMTPNotifier создаёт отправителя поверх обычного SMTP
func NewSMTPNotifier(cfg config.SMTPConfig) Notifier {
	return &smtpNotifier{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from: cfg.From,
	}
}

func (s *smtpNotifier) Send(to, subject, body string) error {
	msg := "From: " + s.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n" +
		body

	return smtp.SendMail(s.addr, nil, s.from, []string{to}, []byte(msg))
}

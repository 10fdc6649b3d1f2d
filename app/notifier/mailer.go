package notifier

import (
	"fmt"

	"github.com/zemen-travel/ms-go-payments/config"
	gomail "gopkg.in/gomail.v2"
)

type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendConfirmation(c Confirmation) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.Sender)
	msg.SetHeader("To", c.Email)
	msg.SetHeader("Subject", "Your travel booking payment is confirmed")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Your payment of %s %s (reference %s) has been received. Thank you for booking with us.",
		c.Amount.String(), c.Currency, c.TxRef,
	))

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	return dialer.DialAndSend(msg)
}

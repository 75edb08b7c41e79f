package config

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail/v2"
)

// SendMail delivers an HTML message through the configured SMTP relay.
func SendMail(to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	if !App.MailEnabled() {
		return fmt.Errorf("smtp not configured (SMTP_HOST/SMTP_FROM)")
	}

	m := mail.NewMessage()
	m.SetHeader("From", App.SMTPFrom)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := mail.NewDialer(App.SMTPHost, App.SMTPPort, App.SMTPUser, App.SMTPPass)

	// STARTTLS is mandatory on 587 for the usual relays.
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         App.SMTPHost,
		InsecureSkipVerify: App.SMTPSkipTLSVerify, // dev only
	}

	return d.DialAndSend(m)
}

package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPProvider implements Provider over plain SMTP.
type SMTPProvider struct {
	config *SMTPConfig
	auth   smtp.Auth
}

func NewSMTPProvider(config *SMTPConfig) *SMTPProvider {
	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	return &SMTPProvider{
		config: config,
		auth:   auth,
	}
}

func (p *SMTPProvider) Send(to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", p.config.Host, p.config.Port)

	msg := strings.Builder{}
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", p.config.FromName, p.config.FromEmail))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	msg.WriteString(body)

	if !p.config.UseTLS {
		return smtp.SendMail(addr, p.auth, p.config.FromEmail, to, []byte(msg.String()))
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: p.config.Host})
	if err != nil {
		return fmt.Errorf("smtp tls dial failed: %w", err)
	}
	client, err := smtp.NewClient(conn, p.config.Host)
	if err != nil {
		return fmt.Errorf("smtp client failed: %w", err)
	}
	defer client.Close()

	if p.auth != nil {
		if err := client.Auth(p.auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}
	if err := client.Mail(p.config.FromEmail); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(msg.String())); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

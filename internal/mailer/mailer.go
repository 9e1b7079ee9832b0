package mailer

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"gopkg.in/gomail.v2"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the process log instead of delivering them.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("INFO [mailer.LogMailer] to=%s subject=%q body=%q", msg.To, msg.Subject, msg.Body)
	return nil
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", msg.To)
	message.SetHeader("Subject", msg.Subject)
	message.SetBody("text/html", msg.Body)

	if err := m.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// PasswordResetMessage builds the mail carrying a raw reset token.
func PasswordResetMessage(to, appURL, token string) Message {
	link := fmt.Sprintf("%s/reset-password?token=%s", appURL, url.QueryEscape(token))
	return Message{
		To:      to,
		Subject: "Réinitialisation de votre mot de passe",
		Body: fmt.Sprintf(
			`<p>Bonjour,</p><p>Pour choisir un nouveau mot de passe, suivez ce lien (valable une heure) :</p><p><a href="%s">%s</a></p>`,
			link, link,
		),
	}
}

// Package mail sends plain-text email over SMTP.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Message is one outbound email.
type Message struct {
	From    string
	ReplyTo string
	To      string
	Subject string
	Body    string
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends mail through a single SMTP server with plain auth.
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
}

// NewSMTPMailer constructs an SMTPMailer.
func NewSMTPMailer(host, port, username, password string) *SMTPMailer {
	return &SMTPMailer{Host: host, Port: port, Username: username, Password: password}
}

// Send delivers the message. The context bounds are advisory only; net/smtp
// has no context support, so cancellation is checked up front.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.Host == "" || msg.To == "" {
		return fmt.Errorf("mailer not configured")
	}

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	return smtp.SendMail(m.Host+":"+m.Port, auth, msg.From, []string{msg.To}, render(msg))
}

// render assembles the wire form of the message. Header values come from
// request input, so CR/LF is stripped before they join the header block;
// otherwise a crafted subject or address could smuggle extra headers.
func render(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", headerValue(msg.From))
	fmt.Fprintf(&b, "To: %s\r\n", headerValue(msg.To))
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", headerValue(msg.ReplyTo))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", headerValue(msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

var headerSanitizer = strings.NewReplacer("\r", " ", "\n", " ")

func headerValue(v string) string {
	return strings.TrimSpace(headerSanitizer.Replace(v))
}

var _ Mailer = (*SMTPMailer)(nil)

// Package mail delivers contact form submissions by email.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strings"

	"github.com/joestump/portfolio/internal/contact"
)

// SMTPSender emails each contact message to a fixed inbox through an
// authenticated SMTP relay.
type SMTPSender struct {
	Host     string
	Port     string
	User     string
	Password string
	To       string

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender returns a sender for the given relay.
func NewSMTPSender(host, port, user, password, to string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, User: user, Password: password, To: to, sendMail: smtp.SendMail}
}

// Send implements contact.Sender. net/smtp has no context support, so a
// cancelled ctx abandons the wait but not the in-flight dial.
func (s *SMTPSender) Send(ctx context.Context, m contact.Message) error {
	msg := s.compose(m)
	auth := smtp.PlainAuth("", s.User, s.Password, s.Host)
	addr := net.JoinHostPort(s.Host, s.Port)

	done := make(chan error, 1)
	go func() { done <- s.sendMail(addr, auth, s.User, []string{s.To}, msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		log.Printf("contact email sent for %s", headerSafe(m.Email))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SMTPSender) compose(m contact.Message) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "To: %s\r\n", s.To)
	fmt.Fprintf(&b, "From: %s\r\n", s.User)
	fmt.Fprintf(&b, "Reply-To: %s\r\n", headerSafe(m.Email))
	fmt.Fprintf(&b, "Subject: Portfolio Contact: %s\r\n", headerSafe(m.Subject))
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString("New contact form submission from your portfolio:\r\n\r\n")
	fmt.Fprintf(&b, "Name: %s\r\n", headerSafe(m.Name))
	fmt.Fprintf(&b, "Email: %s\r\n", headerSafe(m.Email))
	b.WriteString("Message:\r\n")
	b.WriteString(strings.ReplaceAll(m.Message, "\n", "\r\n"))
	b.WriteString("\r\n\r\n---\r\nSent from your portfolio contact form\r\n")
	return b.Bytes()
}

// headerSafe collapses line breaks so visitor input cannot add headers.
func headerSafe(s string) string {
	return strings.Join(strings.Fields(strings.NewReplacer("\r", " ", "\n", " ").Replace(s)), " ")
}

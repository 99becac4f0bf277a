package jobs

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer delivers outbound mail.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay such as Mailpit.
type SMTPMailer struct {
	Host string
	Port int
	From string
}

// Send delivers a single text message.
func (m SMTPMailer) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	var msg strings.Builder
	msg.WriteString("From: " + m.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")
	return smtp.SendMail(addr, nil, m.From, []string{to}, []byte(msg.String()))
}

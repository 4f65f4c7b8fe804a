package email

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net/smtp"
	"sort"
	"strings"
)

type Config struct {
	SMTPServer   string
	SMTPPort     int
	Username     string
	Password     string
	FromEmail    string
	FromName     string
	TLSEnabled   bool
	SkipTLSCheck bool
}

// Enabled reports whether enough is configured to send anything.
func (c Config) Enabled() bool {
	return c.SMTPServer != "" && c.FromEmail != ""
}

type Message struct {
	To      []string
	CC      []string
	Subject string
	Body    string
	IsHTML  bool
}

// Mailer sends messages through one SMTP server.
type Mailer struct {
	Config Config
	send   func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(config Config) *Mailer {
	m := &Mailer{Config: config}
	m.send = m.deliver
	return m
}

// Send delivers message to its To and CC recipients.
func (m *Mailer) Send(message Message) error {
	if !m.Config.Enabled() {
		return fmt.Errorf("smtp is not configured")
	}
	if len(message.To) == 0 {
		return fmt.Errorf("message has no recipients")
	}

	var recipients []string
	recipients = append(recipients, message.To...)
	recipients = append(recipients, message.CC...)

	var auth smtp.Auth
	if m.Config.Username != "" {
		auth = smtp.PlainAuth("", m.Config.Username, m.Config.Password, m.Config.SMTPServer)
	}
	addr := fmt.Sprintf("%s:%d", m.Config.SMTPServer, m.Config.SMTPPort)
	return m.send(addr, auth, m.Config.FromEmail, recipients, m.compose(message))
}

func (m *Mailer) compose(message Message) []byte {
	headers := map[string]string{
		"From":    fmt.Sprintf("%s <%s>", encodeWord(m.Config.FromName), headerValue(m.Config.FromEmail)),
		"To":      headerValue(strings.Join(message.To, ", ")),
		"Subject": encodeWord(message.Subject),
	}
	if len(message.CC) > 0 {
		headers["Cc"] = headerValue(strings.Join(message.CC, ", "))
	}
	if message.IsHTML {
		headers["MIME-Version"] = "1.0"
		headers["Content-Type"] = "text/html; charset=UTF-8"
	} else {
		headers["Content-Type"] = "text/plain; charset=UTF-8"
	}

	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var body strings.Builder
	for _, key := range keys {
		body.WriteString(fmt.Sprintf("%s: %s\r\n", key, headers[key]))
	}
	body.WriteString("\r\n")
	body.WriteString(message.Body)
	return []byte(body.String())
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// headerValue folds line breaks so a value cannot start a new header.
func headerValue(value string) string {
	return lineBreaks.Replace(value)
}

// encodeWord is headerValue plus RFC 2047 encoding for non-ASCII text.
func encodeWord(value string) string {
	return mime.QEncoding.Encode("utf-8", headerValue(value))
}

func (m *Mailer) deliver(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	if !m.Config.TLSEnabled {
		return smtp.SendMail(addr, auth, from, to, msg)
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{
		ServerName:         m.Config.SMTPServer,
		InsecureSkipVerify: m.Config.SkipTLSCheck,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.Config.SMTPServer)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}
	if err = client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, recipient := range to {
		if err = client.Rcpt(recipient); err != nil {
			return fmt.Errorf("failed to add recipient %s: %w", recipient, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data connection: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data connection: %w", err)
	}
	return client.Quit()
}

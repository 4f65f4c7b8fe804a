package email

import (
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	addr string
	from string
	to   []string
	msg  string
}

func testMailer(out *captured) *Mailer {
	m := NewMailer(Config{
		SMTPServer: "smtp.example.com",
		SMTPPort:   587,
		FromEmail:  "hub@example.com",
		FromName:   "Co-Hub",
	})
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		*out = captured{addr: addr, from: from, to: to, msg: string(msg)}
		return nil
	}
	return m
}

func TestSendInvite(t *testing.T) {
	var out captured
	m := testMailer(&out)

	err := m.SendInvite(Invite{To: "bob@example.com", Invitee: "Bob", Inviter: "Alice", Project: "Apollo <1>"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", out.addr)
	assert.Equal(t, "hub@example.com", out.from)
	assert.Equal(t, []string{"bob@example.com"}, out.to)
	assert.Contains(t, out.msg, "Subject: You were added to Apollo <1>\r\n")
	assert.Contains(t, out.msg, "Content-Type: text/html; charset=UTF-8\r\n")
	assert.Contains(t, out.msg, "Apollo &lt;1&gt;")

	headers := strings.SplitN(out.msg, "\r\n\r\n", 2)[0]
	assert.True(t, strings.HasPrefix(headers, "Content-Type:"), "headers are written in a stable order")
}

func TestSendRequiresConfig(t *testing.T) {
	m := NewMailer(Config{})
	assert.Error(t, m.Send(Message{To: []string{"a@example.com"}}))

	var out captured
	assert.Error(t, testMailer(&out).Send(Message{Subject: "empty"}))
}

func TestSendInviteSkipsMissingAddress(t *testing.T) {
	var out captured
	m := testMailer(&out)
	require.NoError(t, m.SendInvite(Invite{Invitee: "Carol", Inviter: "Alice", Project: "Apollo"}))
	assert.Empty(t, out.addr, "nothing is sent")
}

func TestComposeKeepsHeadersOnOneLine(t *testing.T) {
	var out captured
	m := testMailer(&out)

	err := m.SendInvite(Invite{
		To:      "bob@example.com\r\nBcc: spy@evil.test",
		Invitee: "Bob",
		Inviter: "Alice",
		Project: "Apollo\r\nReply-To: attacker@evil.test",
	})
	require.NoError(t, err)

	headers := strings.SplitN(out.msg, "\r\n\r\n", 2)[0]
	for _, line := range strings.Split(headers, "\r\n") {
		assert.False(t, strings.HasPrefix(line, "Reply-To:"), line)
		assert.False(t, strings.HasPrefix(line, "Bcc:"), line)
	}
	assert.Contains(t, headers, "Subject: You were added to Apollo Reply-To: attacker@evil.test")
	assert.Len(t, strings.Split(headers, "\r\n"), 5)
}

func TestComposeEncodesNonASCIISubject(t *testing.T) {
	m := NewMailer(Config{SMTPServer: "smtp.example.com", FromEmail: "hub@example.com", FromName: "Café"})
	msg := string(m.compose(Message{To: []string{"a@example.com"}, Subject: "Réunion"}))
	assert.Contains(t, msg, "Subject: =?utf-8?q?R=C3=A9union?=\r\n")
	assert.Contains(t, msg, "From: =?utf-8?q?Caf=C3=A9?= <hub@example.com>\r\n")
}

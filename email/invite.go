package email

import (
	"fmt"
	"html/template"
	"strings"
)

var inviteTemplate = template.Must(template.New("invite").Parse(`<p>Hi {{.Invitee}},</p>
<p>{{.Inviter}} added you to the project <strong>{{.Project}}</strong> on Co-Hub.</p>
<p>Sign in to see its board and start tracking your work.</p>`))

// Invite is the notice sent to a user who was added to a project.
type Invite struct {
	To      string
	Invitee string
	Inviter string
	Project string
}

func (i Invite) Message() (Message, error) {
	var body strings.Builder
	if err := inviteTemplate.Execute(&body, i); err != nil {
		return Message{}, fmt.Errorf("render invite: %w", err)
	}
	return Message{
		To:      []string{i.To},
		Subject: fmt.Sprintf("You were added to %s", i.Project),
		Body:    body.String(),
		IsHTML:  true,
	}, nil
}

// SendInvite renders and sends an invitation notice. Invitees without an
// address are skipped.
func (m *Mailer) SendInvite(invite Invite) error {
	if invite.To == "" {
		return nil
	}
	message, err := invite.Message()
	if err != nil {
		return err
	}
	return m.Send(message)
}

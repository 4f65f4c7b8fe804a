package Slack

import (
	"context"
	"fmt"
	"time"

	"github.com/slack-go/slack"

	"CoHub/email"
)

const postTimeout = 10 * time.Second

// Notifier posts project membership changes to a Slack incoming webhook.
type Notifier struct {
	WebhookURL string
	Channel    string

	post func(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

func NewNotifier(webhookURL, channel string) *Notifier {
	return &Notifier{WebhookURL: webhookURL, Channel: channel, post: slack.PostWebhookContext}
}

// SendInvite announces that a user joined a project.
func (n *Notifier) SendInvite(invite email.Invite) error {
	if n.WebhookURL == "" {
		return fmt.Errorf("slack webhook URL is not configured")
	}
	ctx, cancel := context.WithTimeout(context.Background(), postTimeout)
	defer cancel()

	msg := &slack.WebhookMessage{
		Channel: n.Channel,
		Text:    inviteText(invite),
	}
	if err := n.post(ctx, n.WebhookURL, msg); err != nil {
		return fmt.Errorf("post slack invite: %w", err)
	}
	return nil
}

func inviteText(invite email.Invite) string {
	return fmt.Sprintf(":wave: *%s* added *%s* to *%s*", invite.Inviter, invite.Invitee, invite.Project)
}

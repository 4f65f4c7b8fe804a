package Slack

import (
	"context"
	"errors"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoHub/email"
)

func TestSendInvitePostsToWebhook(t *testing.T) {
	n := NewNotifier("https://hooks.slack.test/T000/B000/XXX", "#cohub")
	var gotURL string
	var got *slack.WebhookMessage
	n.post = func(_ context.Context, url string, msg *slack.WebhookMessage) error {
		gotURL, got = url, msg
		return nil
	}

	err := n.SendInvite(email.Invite{Invitee: "Bob", Inviter: "Alice", Project: "Apollo"})
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.slack.test/T000/B000/XXX", gotURL)
	require.NotNil(t, got)
	assert.Equal(t, "#cohub", got.Channel)
	assert.Equal(t, ":wave: *Alice* added *Bob* to *Apollo*", got.Text)
}

func TestSendInviteErrors(t *testing.T) {
	assert.Error(t, NewNotifier("", "").SendInvite(email.Invite{}))

	n := NewNotifier("https://hooks.slack.test/x", "")
	n.post = func(context.Context, string, *slack.WebhookMessage) error {
		return errors.New("status 500")
	}
	err := n.SendInvite(email.Invite{Invitee: "Bob", Inviter: "Alice", Project: "Apollo"})
	assert.ErrorContains(t, err, "status 500")
}

package notify

import (
	"fmt"

	slackapi "github.com/slack-go/slack"
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// SlackNotifier posts digests to a Slack channel.
type SlackNotifier struct {
	client    slackClient
	channelID string
}

// SlackOpts holds parameters for creating a SlackNotifier.
type SlackOpts struct {
	Token     string
	ChannelID string
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// NewSlack creates a SlackNotifier.
func NewSlack(opts SlackOpts) (*SlackNotifier, error) {
	if opts.Client == nil && opts.Token == "" {
		return nil, fmt.Errorf("notify: slack token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("notify: slack channel is required")
	}
	client := opts.Client
	if client == nil {
		client = slackapi.New(opts.Token)
	}
	return &SlackNotifier{client: client, channelID: opts.ChannelID}, nil
}

// Post sends text to the configured channel.
func (s *SlackNotifier) Post(text string) error {
	_, _, err := s.client.PostMessage(s.channelID, slackapi.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("notify: slack post: %w", err)
	}
	return nil
}

package bot

import (
	"context"
	"errors"

	"github.com/slack-go/slack"

	"github.com/Broodje2/kudos-bot/internal/logger"
)

var errNoTrigger = errors.New("interaction has no trigger id")

// Context is what a handler gets to work with: the interaction itself and
// the platform capabilities scoped to it.
type Context struct {
	Interaction

	platform Platform
	log      *logger.Logger
}

func (c *Context) Log() *logger.Logger { return c.log }

// Say posts to the channel the interaction came from, or to the user's DM
// when there is none.
func (c *Context) Say(ctx context.Context, text string, blocks ...slack.Block) error {
	target := c.ChannelID
	if target == "" {
		target = c.UserID
	}
	return c.platform.PostMessage(ctx, target, text, blocks...)
}

func (c *Context) PostTo(ctx context.Context, channelID, text string, blocks ...slack.Block) error {
	return c.platform.PostMessage(ctx, channelID, text, blocks...)
}

// Whisper shows text only to the invoking user.
func (c *Context) Whisper(ctx context.Context, channelID, text string) error {
	if channelID == "" {
		return c.platform.PostMessage(ctx, c.UserID, text)
	}
	return c.platform.PostEphemeral(ctx, channelID, c.UserID, text)
}

func (c *Context) DisplayName(ctx context.Context, userID string) (string, error) {
	return c.platform.DisplayName(ctx, userID)
}

func (c *Context) OpenView(ctx context.Context, view slack.ModalViewRequest) error {
	if c.TriggerID == "" {
		return errNoTrigger
	}
	return c.platform.OpenView(ctx, c.TriggerID, view)
}

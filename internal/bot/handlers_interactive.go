package bot

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

func (h *Handler) handleKudosSubmit(ctx context.Context, c *Context) error {
	state, err := h.kudos.Submit(ctx, c)
	c.Log().Debug("kudos submission finished", "state", state)
	return err
}

func (h *Handler) handleGreeting(ctx context.Context, c *Context) error {
	text := fmt.Sprintf(msgGreeting, c.UserID)
	return c.Say(ctx, text, GreetingBlocks(c.UserID)...)
}

func (h *Handler) handleGreetingClick(ctx context.Context, c *Context) error {
	return c.Say(ctx, fmt.Sprintf(msgButtonClicked, c.UserID))
}

func GreetingBlocks(userID string) []slack.Block {
	button := slack.NewButtonBlockElement(ActionGreeting, "",
		slack.NewTextBlockObject(slack.PlainTextType, msgGreetingButton, false, false))
	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf(msgGreeting, userID), false, false),
			nil,
			slack.NewAccessory(button),
		),
	}
}

package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/Broodje2/kudos-bot/internal/domain"
)

// handleGetUser shows the ledger name of the caller, or of the user
// mentioned in the command text.
func (h *Handler) handleGetUser(ctx context.Context, c *Context) error {
	id := c.UserID
	if ref, ok := ParseUserRef(c.Text); ok {
		id = ref
	}
	u, err := h.ledger.GetUser(ctx, id)
	if err != nil {
		c.Log().Warn("get user", "target", id, "error", err)
		return c.Say(ctx, msgGetUserFailed)
	}
	return c.Say(ctx, fmt.Sprintf(msgGetUser, id, u.SlackName))
}

func (h *Handler) handleRegister(ctx context.Context, c *Context) error {
	name := strings.TrimSpace(c.UserName)
	if name == "" {
		n, err := c.DisplayName(ctx, c.UserID)
		if err != nil {
			c.Log().Warn("lookup caller name", "error", err)
			return c.Say(ctx, fmt.Sprintf(msgRegisterFailed, c.UserID))
		}
		name = n
	}
	c.Log().Info("registering account", "slack_name", name)

	if err := h.ledger.UpsertUser(ctx, domain.User{SlackID: c.UserID, SlackName: name}); err != nil {
		c.Log().Error("register account", "slack_name", name, "error", err)
		return c.Say(ctx, fmt.Sprintf(msgRegisterFailed, name))
	}
	return c.Say(ctx, fmt.Sprintf(msgRegistered, name))
}

func (h *Handler) handleHelp(ctx context.Context, c *Context) error {
	return c.Say(ctx, "All the commands", HelpBlocks()...)
}

func (h *Handler) handleGiveKudos(ctx context.Context, c *Context) error {
	return h.kudos.Open(ctx, c)
}

func (h *Handler) handleLeaderboard(ctx context.Context, c *Context) error {
	return h.board.Render(ctx, c.ChannelID)
}

func (h *Handler) handleSync(ctx context.Context, c *Context) error {
	_, err := h.sync.Run(ctx, c.ChannelID)
	return err
}

var helpCommands = []struct{ name, desc string }{
	{"/givekudos", "Send kudos to a teammate"},
	{"/leaderboard", "Check the leaderboard"},
	{"/registeraccount", "Add yourself to the kudos ledger"},
	{"/getuser", "Show your ledger name, or someone else's with `/getuser @user`"},
	{"/sync", "Add every member of this channel to the ledger"},
	{"/help", "Show this list"},
}

func HelpBlocks() []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "All the commands", false, false)),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "_Here's a list of all available commands and what they do:_", false, false),
			nil, nil,
		),
	}
	for _, cmd := range helpCommands {
		blocks = append(blocks,
			slack.NewDividerBlock(),
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*• `%s`* - %s", cmd.name, cmd.desc), false, false),
				nil, nil,
			),
		)
	}
	return blocks
}

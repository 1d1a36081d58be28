package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/Broodje2/kudos-bot/internal/domain"
	"github.com/Broodje2/kudos-bot/internal/logger"
)

const (
	EventMemberJoined = "member_joined_channel"
	ActionGreeting    = "button_click"
)

type Options struct {
	Ledger   Ledger
	Platform Platform
	Journal  Journal
	Logger   *logger.Logger
	Location *time.Location // leaderboard timestamps
	Keyword  string         // greeting trigger, "hello" when empty
}

// Handler owns the bot's commands, actions and events.
type Handler struct {
	ledger   Ledger
	identity *BotIdentity
	sync     *Synchronizer
	kudos    *KudosFlow
	board    *Leaderboard
	keyword  string
	log      *logger.Logger
}

func NewHandler(o Options) *Handler {
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	if o.Journal == nil {
		o.Journal = NopJournal
	}
	if o.Keyword == "" {
		o.Keyword = "hello"
	}
	id := NewBotIdentity(o.Platform.BotUserID)
	return &Handler{
		ledger:   o.Ledger,
		identity: id,
		sync:     NewSynchronizer(o.Ledger, o.Platform, id, o.Journal, o.Logger),
		kudos:    NewKudosFlow(o.Ledger, o.Journal, o.Logger),
		board:    NewLeaderboard(o.Ledger, o.Platform, o.Location, o.Logger),
		keyword:  o.Keyword,
		log:      o.Logger,
	}
}

func (h *Handler) Synchronizer() *Synchronizer { return h.sync }

func (h *Handler) Register(r *Router) {
	r.Command("getuser", h.handleGetUser)
	r.Command("registeraccount", h.handleRegister)
	r.Command("help", h.handleHelp)
	r.Command("givekudos", h.handleGiveKudos)
	r.Command("leaderboard", h.handleLeaderboard)
	r.Command("sync", h.handleSync)

	r.View(KudosModalID, h.handleKudosSubmit)
	r.Hear(h.keyword, h.handleGreeting)
	r.Action(ActionGreeting, h.handleGreetingClick)
	r.Event(EventMemberJoined, h.handleMemberJoined)
}

// handleMemberJoined reconciles the whole channel when the bot itself was
// added, otherwise registers just the new member.
func (h *Handler) handleMemberJoined(ctx context.Context, c *Context) error {
	botID, err := h.identity.ID(ctx)
	if err != nil {
		c.Log().Error("resolve bot identity", "error", err)
		return c.Say(ctx, fmt.Sprintf(msgWelcomeFailed, c.UserID))
	}
	if c.UserID == botID {
		c.Log().Info("bot joined channel, syncing", "channel", c.ChannelID)
		_, err := h.sync.Run(ctx, c.ChannelID)
		return err
	}

	name, err := c.DisplayName(ctx, c.UserID)
	if err != nil {
		c.Log().Warn("lookup joined member", "error", err)
		return c.Say(ctx, fmt.Sprintf(msgWelcomeFailed, c.UserID))
	}
	if err := h.ledger.UpsertUser(ctx, domain.User{SlackID: c.UserID, SlackName: name}); err != nil {
		c.Log().Error("register joined member", "slack_name", name, "error", err)
		return c.Say(ctx, fmt.Sprintf(msgWelcomeFailed, c.UserID))
	}
	c.Log().Info("added user", "slack_name", name)
	return c.Say(ctx, fmt.Sprintf(msgWelcome, c.UserID))
}

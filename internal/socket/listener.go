// Package socket receives Slack envelopes over Socket Mode and hands them to
// the router.
package socket

import (
	"context"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"golang.org/x/sync/errgroup"

	"github.com/Broodje2/kudos-bot/internal/bot"
	"github.com/Broodje2/kudos-bot/internal/logger"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, in bot.Interaction, ack bot.AckFunc) error
}

type acker interface {
	Ack(req socketmode.Request, payload ...interface{})
}

type Listener struct {
	run    func(ctx context.Context) error
	events <-chan socketmode.Event
	acker  acker
	router Dispatcher
	log    *logger.Logger
}

func New(client *socketmode.Client, router Dispatcher, log *logger.Logger) *Listener {
	if log == nil {
		log = logger.Nop()
	}
	return &Listener{
		run:    client.RunContext,
		events: client.Events,
		acker:  client,
		router: router,
		log:    log.With("component", "socket"),
	}
}

// Run keeps the websocket open and dispatches envelopes until ctx is done.
func (l *Listener) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.run(ctx) })
	g.Go(func() error { return l.consume(ctx) })
	return g.Wait()
}

func (l *Listener) consume(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-l.events:
			if !ok {
				return nil
			}
			l.handle(ctx, evt)
		}
	}
}

func (l *Listener) handle(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		l.log.Info("connecting to slack")
		return
	case socketmode.EventTypeConnected:
		l.log.Info("connected to slack")
		return
	case socketmode.EventTypeConnectionError:
		l.log.Warn("slack connection failed, retrying", "data", evt.Data)
		return
	case socketmode.EventTypeDisconnect:
		l.log.Warn("slack asked to reconnect")
		return
	}
	if evt.Request == nil {
		return
	}
	req := *evt.Request
	ack := func() error {
		l.acker.Ack(req)
		return nil
	}

	in, ok := toInteraction(evt)
	if !ok {
		// Unhandled envelopes are still acked so Slack does not redeliver.
		_ = ack()
		l.log.Debug("ignored envelope", "type", evt.Type)
		return
	}
	in.ID = req.EnvelopeID
	in.ReceivedAt = time.Now()
	if err := l.router.Dispatch(ctx, in, ack); err != nil {
		l.log.Error("dispatch", "envelope", req.EnvelopeID, "error", err)
	}
}

// toInteraction maps an envelope to a routable interaction. The bool is
// false for envelope types the bot does not handle.
func toInteraction(evt socketmode.Event) (bot.Interaction, bool) {
	switch evt.Type {
	case socketmode.EventTypeSlashCommand:
		cmd, ok := evt.Data.(slack.SlashCommand)
		if !ok {
			return bot.Interaction{}, false
		}
		return bot.Interaction{
			Kind:      bot.KindCommand,
			Name:      cmd.Command,
			UserID:    cmd.UserID,
			UserName:  cmd.UserName,
			ChannelID: cmd.ChannelID,
			TriggerID: cmd.TriggerID,
			Text:      cmd.Text,
		}, true

	case socketmode.EventTypeInteractive:
		cb, ok := evt.Data.(slack.InteractionCallback)
		if !ok {
			return bot.Interaction{}, false
		}
		return fromCallback(cb)

	case socketmode.EventTypeEventsAPI:
		ev, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok || ev.Type != slackevents.CallbackEvent {
			return bot.Interaction{}, false
		}
		return fromInnerEvent(ev.InnerEvent)
	}
	return bot.Interaction{}, false
}

func fromCallback(cb slack.InteractionCallback) (bot.Interaction, bool) {
	in := bot.Interaction{
		UserID:    cb.User.ID,
		UserName:  cb.User.Name,
		TriggerID: cb.TriggerID,
	}
	switch cb.Type {
	case slack.InteractionTypeBlockActions:
		if len(cb.ActionCallback.BlockActions) == 0 {
			return bot.Interaction{}, false
		}
		action := cb.ActionCallback.BlockActions[0]
		in.Kind = bot.KindAction
		in.Name = action.ActionID
		in.Text = action.Value
		in.ChannelID = cb.Channel.ID
		if in.ChannelID == "" {
			in.ChannelID = cb.Container.ChannelID
		}
		return in, true

	case slack.InteractionTypeViewSubmission:
		in.Kind = bot.KindView
		in.Name = cb.View.CallbackID
		in.Values = viewValues(cb.View.State)
		return in, true
	}
	return bot.Interaction{}, false
}

// viewValues flattens modal state to action id -> value.
func viewValues(state *slack.ViewState) map[string]string {
	out := map[string]string{}
	if state == nil {
		return out
	}
	for _, block := range state.Values {
		for actionID, a := range block {
			switch {
			case a.SelectedUser != "":
				out[actionID] = a.SelectedUser
			case a.SelectedConversation != "":
				out[actionID] = a.SelectedConversation
			case a.SelectedChannel != "":
				out[actionID] = a.SelectedChannel
			default:
				out[actionID] = a.Value
			}
		}
	}
	return out
}

func fromInnerEvent(inner slackevents.EventsAPIInnerEvent) (bot.Interaction, bool) {
	switch ev := inner.Data.(type) {
	case *slackevents.MessageEvent:
		if ev.BotID != "" || ev.SubType != "" {
			return bot.Interaction{}, false
		}
		return bot.Interaction{
			Kind:      bot.KindMessage,
			UserID:    ev.User,
			ChannelID: ev.Channel,
			Text:      ev.Text,
		}, true
	case *slackevents.MemberJoinedChannelEvent:
		return bot.Interaction{
			Kind:      bot.KindEvent,
			Name:      bot.EventMemberJoined,
			UserID:    ev.User,
			ChannelID: ev.Channel,
		}, true
	}
	return bot.Interaction{}, false
}

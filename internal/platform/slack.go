// Package platform adapts the Slack Web API to bot.Platform.
package platform

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"
	"golang.org/x/time/rate"

	"github.com/Broodje2/kudos-bot/internal/logger"
)

// API is the subset of *slack.Client the adapter calls.
type API interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	PostEphemeralContext(ctx context.Context, channelID, userID string, options ...slack.MsgOption) (string, error)
	OpenViewContext(ctx context.Context, triggerID string, view slack.ModalViewRequest) (*slack.ViewResponse, error)
	GetUserInfoContext(ctx context.Context, user string) (*slack.User, error)
	GetUsersInConversationContext(ctx context.Context, params *slack.GetUsersInConversationParameters) ([]string, string, error)
	AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error)
}

const membersPageSize = 200

type Slack struct {
	api     API
	lookups *rate.Limiter
	log     *logger.Logger
}

// New wraps api. lookupRate and burst bound users.info calls, which the
// leaderboard and membership sync issue once per user.
func New(api API, lookupRate float64, burst int, log *logger.Logger) *Slack {
	if burst < 1 {
		burst = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Slack{
		api:     api,
		lookups: rate.NewLimiter(rate.Limit(lookupRate), burst),
		log:     log.With("client", "slack"),
	}
}

func (s *Slack) PostMessage(ctx context.Context, channelID, text string, blocks ...slack.Block) error {
	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if len(blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(blocks...))
	}
	if _, _, err := s.api.PostMessageContext(ctx, channelID, opts...); err != nil {
		return fmt.Errorf("post message to %s: %w", channelID, err)
	}
	return nil
}

func (s *Slack) PostEphemeral(ctx context.Context, channelID, userID, text string) error {
	if _, err := s.api.PostEphemeralContext(ctx, channelID, userID, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("post ephemeral to %s in %s: %w", userID, channelID, err)
	}
	return nil
}

func (s *Slack) OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	if _, err := s.api.OpenViewContext(ctx, triggerID, view); err != nil {
		return fmt.Errorf("open view %s: %w", view.CallbackID, err)
	}
	return nil
}

// DisplayName prefers the profile display name, then the real name, then the
// account name.
func (s *Slack) DisplayName(ctx context.Context, userID string) (string, error) {
	if err := s.lookups.Wait(ctx); err != nil {
		return "", fmt.Errorf("lookup %s: %w", userID, err)
	}
	u, err := s.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", userID, err)
	}
	return displayName(u), nil
}

func displayName(u *slack.User) string {
	for _, n := range []string{u.Profile.DisplayName, u.Profile.RealName, u.RealName, u.Name} {
		if n = strings.TrimSpace(n); n != "" {
			return n
		}
	}
	return u.ID
}

// ChannelMembers follows the pagination cursor until the listing is complete.
func (s *Slack) ChannelMembers(ctx context.Context, channelID string) ([]string, error) {
	var out []string
	params := &slack.GetUsersInConversationParameters{ChannelID: channelID, Limit: membersPageSize}
	for {
		page, next, err := s.api.GetUsersInConversationContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("list members of %s: %w", channelID, err)
		}
		out = append(out, page...)
		if next == "" {
			break
		}
		params.Cursor = next
	}
	s.log.Debug("listed channel members", "channel", channelID, "count", len(out))
	return out, nil
}

func (s *Slack) BotUserID(ctx context.Context) (string, error) {
	resp, err := s.api.AuthTestContext(ctx)
	if err != nil {
		return "", fmt.Errorf("auth test: %w", err)
	}
	return resp.UserID, nil
}

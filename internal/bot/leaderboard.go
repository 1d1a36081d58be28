package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/slack-go/slack"

	"github.com/Broodje2/kudos-bot/internal/domain"
	"github.com/Broodje2/kudos-bot/internal/logger"
)

type leaderboardReader interface {
	Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// Leaderboard posts the ranking as a header followed by one line per entry,
// in the order the ledger returned them.
type Leaderboard struct {
	ledger   leaderboardReader
	platform Platform
	loc      *time.Location
	now      func() time.Time
	log      *logger.Logger
}

func NewLeaderboard(l leaderboardReader, p Platform, loc *time.Location, log *logger.Logger) *Leaderboard {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Leaderboard{ledger: l, platform: p, loc: loc, now: time.Now, log: log.With("component", "leaderboard")}
}

// Render posts the leaderboard to channelID. Names are resolved one entry at
// a time. Any failure stops rendering and posts one failure message; lines
// already posted stay.
func (b *Leaderboard) Render(ctx context.Context, channelID string) error {
	entries, err := b.ledger.Leaderboard(ctx)
	if err != nil {
		return b.fail(ctx, channelID, "fetch leaderboard", err)
	}

	title := fmt.Sprintf(msgLeaderboardTitle, b.now().In(b.loc).Format(leaderboardTimeLayout))
	header := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, false, false)),
		slack.NewDividerBlock(),
	}
	if err := b.platform.PostMessage(ctx, channelID, title, header...); err != nil {
		return b.fail(ctx, channelID, "post header", err)
	}
	if len(entries) == 0 {
		return b.platform.PostMessage(ctx, channelID, msgLeaderboardEmpty)
	}

	for i, e := range entries {
		name, err := b.platform.DisplayName(ctx, e.SlackID)
		if err != nil {
			return b.fail(ctx, channelID, fmt.Sprintf("resolve entry %d (%s)", i, e.SlackID), err)
		}
		if err := b.platform.PostMessage(ctx, channelID, fmt.Sprintf(msgLeaderboardLine, name, e.TotalKudos)); err != nil {
			return b.fail(ctx, channelID, fmt.Sprintf("post entry %d", i), err)
		}
	}
	return nil
}

func (b *Leaderboard) fail(ctx context.Context, channelID, step string, err error) error {
	b.log.Error("leaderboard failed", "channel", channelID, "step", step, "error", err)
	return b.platform.PostMessage(ctx, channelID, msgLeaderboardError)
}

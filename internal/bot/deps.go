package bot

import (
	"context"

	"github.com/slack-go/slack"

	"github.com/Broodje2/kudos-bot/internal/domain"
)

// Platform is the part of the chat platform the handlers use.
type Platform interface {
	PostMessage(ctx context.Context, channelID, text string, blocks ...slack.Block) error
	PostEphemeral(ctx context.Context, channelID, userID, text string) error
	OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error
	DisplayName(ctx context.Context, userID string) (string, error)
	ChannelMembers(ctx context.Context, channelID string) ([]string, error)
	BotUserID(ctx context.Context) (string, error)
}

// Ledger is the kudos ledger as seen by the handlers.
type Ledger interface {
	GetUser(ctx context.Context, slackID string) (domain.User, error)
	UpsertUser(ctx context.Context, u domain.User) error
	CreateTransaction(ctx context.Context, tx domain.Transaction) error
	Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// Journal keeps an audit trail of syncs and kudos submissions. Writes are
// best effort.
type Journal interface {
	RecordSync(ctx context.Context, run domain.SyncRun) error
	RecordKudos(ctx context.Context, a domain.KudosAttempt) error
}

type nopJournal struct{}

func (nopJournal) RecordSync(context.Context, domain.SyncRun) error      { return nil }
func (nopJournal) RecordKudos(context.Context, domain.KudosAttempt) error { return nil }

// NopJournal drops every record.
var NopJournal Journal = nopJournal{}

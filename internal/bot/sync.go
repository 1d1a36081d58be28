package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Broodje2/kudos-bot/internal/domain"
	"github.com/Broodje2/kudos-bot/internal/logger"
	"github.com/Broodje2/kudos-bot/internal/metrics"
)

type userUpserter interface {
	UpsertUser(ctx context.Context, u domain.User) error
}

// SyncReport describes one reconciliation of a channel against the ledger.
type SyncReport struct {
	ChannelID string
	Members   int      // as listed by the platform, bot included
	Synced    []string // upserted, in listing order
	Failed    []string // lookup or upsert failed, in listing order
}

// Synchronizer upserts every human member of a channel into the ledger.
type Synchronizer struct {
	ledger   userUpserter
	platform Platform
	identity *BotIdentity
	journal  Journal
	log      *logger.Logger
	now      func() time.Time
}

func NewSynchronizer(l userUpserter, p Platform, id *BotIdentity, j Journal, log *logger.Logger) *Synchronizer {
	if j == nil {
		j = NopJournal
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Synchronizer{
		ledger:   l,
		platform: p,
		identity: id,
		journal:  j,
		log:      log.With("component", "sync"),
		now:      time.Now,
	}
}

// Reconcile lists the channel and upserts each member except the bot. A
// member that fails is recorded and skipped. Only failing to learn the bot
// id or to list the channel returns an error.
func (s *Synchronizer) Reconcile(ctx context.Context, channelID string) (SyncReport, error) {
	started := s.now()
	rep := SyncReport{ChannelID: channelID}

	botID, err := s.identity.ID(ctx)
	if err != nil {
		return rep, fmt.Errorf("resolve bot identity: %w", err)
	}
	members, err := s.platform.ChannelMembers(ctx, channelID)
	if err != nil {
		s.identity.Invalidate()
		return rep, fmt.Errorf("list members of %s: %w", channelID, err)
	}
	rep.Members = len(members)
	s.log.Info("syncing channel", "channel", channelID, "members", len(members))

	for _, id := range members {
		if id == botID {
			continue
		}
		name, err := s.platform.DisplayName(ctx, id)
		if err != nil {
			s.log.Warn("member lookup failed", "channel", channelID, "user", id, "error", err)
			metrics.RecordSyncedMember("lookup_failed")
			rep.Failed = append(rep.Failed, id)
			continue
		}
		if err := s.ledger.UpsertUser(ctx, domain.User{SlackID: id, SlackName: name}); err != nil {
			s.log.Warn("member upsert failed", "channel", channelID, "user", id, "name", name, "error", err)
			metrics.RecordSyncedMember("upsert_failed")
			rep.Failed = append(rep.Failed, id)
			continue
		}
		metrics.RecordSyncedMember("ok")
		rep.Synced = append(rep.Synced, id)
	}

	run := domain.SyncRun{
		ID:         uuid.NewString(),
		ChannelID:  channelID,
		Members:    rep.Members,
		Synced:     len(rep.Synced),
		Failed:     rep.Failed,
		StartedAt:  started,
		FinishedAt: s.now(),
	}
	if err := s.journal.RecordSync(ctx, run); err != nil {
		s.log.Warn("journal sync run", "channel", channelID, "error", err)
	}
	return rep, nil
}

// Run reconciles the channel and posts exactly one outcome message to it.
func (s *Synchronizer) Run(ctx context.Context, channelID string) (SyncReport, error) {
	rep, err := s.Reconcile(ctx, channelID)
	if err != nil {
		s.log.Error("sync failed", "channel", channelID, "error", err)
		return rep, s.platform.PostMessage(ctx, channelID, fmt.Sprintf(msgSyncFailed, err.Error()))
	}
	return rep, s.platform.PostMessage(ctx, channelID, rep.Summary())
}

// Summary is the channel message for a finished reconciliation.
func (r SyncReport) Summary() string {
	if len(r.Failed) == 0 {
		return msgSynced
	}
	mentions := make([]string, 0, len(r.Failed))
	for _, id := range r.Failed {
		mentions = append(mentions, "<@"+id+">")
	}
	total := len(r.Synced) + len(r.Failed)
	return fmt.Sprintf(msgSyncedPartial, len(r.Synced), total, strings.Join(mentions, ", "))
}

package repo

import (
	"context"
	"fmt"

	"github.com/Broodje2/kudos-bot/internal/db"
	"github.com/Broodje2/kudos-bot/internal/domain"
)

// Journal stores sync runs and kudos attempts in Postgres.
type Journal struct{ conn db.Conn }

func NewJournal(c db.Conn) *Journal { return &Journal{conn: c} }

func (r *Journal) RecordSync(ctx context.Context, run domain.SyncRun) error {
	failed := run.Failed
	if failed == nil {
		failed = []string{}
	}
	_, err := r.conn.Exec(ctx, `
		INSERT INTO sync_runs(id, channel_id, members, synced, failed, started_at, finished_at)
		VALUES($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO NOTHING
	`, run.ID, run.ChannelID, run.Members, run.Synced, failed, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert sync run %s: %w", run.ID, err)
	}
	return nil
}

func (r *Journal) RecordKudos(ctx context.Context, a domain.KudosAttempt) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO kudos_attempts(id, interaction_id, origin_id, destination_id, channel_id, amount, state, error, created_at)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO NOTHING
	`, a.ID, a.InteractionID, a.OriginID, a.DestinationID, a.ChannelID, a.Amount, a.State, a.Error, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert kudos attempt %s: %w", a.ID, err)
	}
	return nil
}

// RecentSyncRuns returns the newest runs first. An empty channelID matches
// every channel.
func (r *Journal) RecentSyncRuns(ctx context.Context, channelID string, limit int) ([]domain.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.conn.Query(ctx, `
		SELECT id, channel_id, members, synced, failed, started_at, finished_at
		FROM sync_runs
		WHERE $1 = '' OR channel_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`, channelID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SyncRun
	for rows.Next() {
		var s domain.SyncRun
		if err := rows.Scan(&s.ID, &s.ChannelID, &s.Members, &s.Synced, &s.Failed, &s.StartedAt, &s.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

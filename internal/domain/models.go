package domain

import "time"

// KudosType tags which side of the ledger a transaction touches.
type KudosType string

const (
	// KudosGiveaway is the spendable allowance a user gives from.
	KudosGiveaway KudosType = "giveaway"
	// KudosReceived is the balance a user collects.
	KudosReceived KudosType = "kudos"
)

// User is keyed by the Slack id; Name is a cache of the Slack display name.
type User struct {
	SlackID   string
	SlackName string
}

type Transaction struct {
	OriginID        string
	OriginKind      KudosType
	DestinationID   string
	DestinationKind KudosType
	Amount          int64
	Reason          string
	CreatedAt       time.Time // assigned by the ledger
}

type LeaderboardEntry struct {
	SlackID    string
	TotalKudos int64
}

// SyncRun is the journal record of one membership reconciliation.
type SyncRun struct {
	ID         string
	ChannelID  string
	Members    int
	Synced     int
	Failed     []string
	StartedAt  time.Time
	FinishedAt time.Time
}

// KudosAttempt is the journal record of one give-kudos submission.
type KudosAttempt struct {
	ID            string
	InteractionID string
	OriginID      string
	DestinationID string
	ChannelID     string
	Amount        int64
	State         string
	Error         string
	CreatedAt     time.Time
}

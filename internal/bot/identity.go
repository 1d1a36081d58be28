package bot

import (
	"context"
	"sync"
)

// BotIdentity caches the bot's own user id for the life of the process.
// It is filled on first use and dropped by Invalidate, after which the next
// ID call asks the platform again.
type BotIdentity struct {
	resolve func(ctx context.Context) (string, error)

	mu sync.Mutex
	id string
}

func NewBotIdentity(resolve func(ctx context.Context) (string, error)) *BotIdentity {
	return &BotIdentity{resolve: resolve}
}

func (b *BotIdentity) ID(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.id != "" {
		return b.id, nil
	}
	id, err := b.resolve(ctx)
	if err != nil {
		return "", err
	}
	b.id = id
	return id, nil
}

func (b *BotIdentity) Invalidate() {
	b.mu.Lock()
	b.id = ""
	b.mu.Unlock()
}

package presence

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// StatusSetter updates the bot's activity status text.
type StatusSetter interface {
	SetWatching(ctx context.Context, text string) error
}

// Tracker keeps a live count of the guilds the bot serves. The count is
// rebuilt from the gateway on every connection, never persisted. Handlers
// run concurrently, so all access goes through a single atomic.
type Tracker struct {
	count  atomic.Int64
	status StatusSetter
	logger *zap.Logger
}

// NewTracker creates a guild count tracker.
func NewTracker(status StatusSetter, logger *zap.Logger) *Tracker {
	return &Tracker{
		status: status,
		logger: logger.Named("presence"),
	}
}

// Init seeds the counter from the gateway's reported guild count and
// publishes the initial status.
func (t *Tracker) Init(ctx context.Context, guilds int) {
	t.count.Store(int64(guilds))
	t.logger.Info("Serving guilds", zap.Int("count", guilds))
	t.publish(ctx)
}

// Join records a confirmed new guild membership.
func (t *Tracker) Join(ctx context.Context) {
	count := t.count.Add(1)
	t.logger.Info("Joined a new guild", zap.Int64("count", count))
	t.publish(ctx)
}

// Leave records a guild departure. The counter never goes below zero even
// if departure events arrive before the initial count is seeded.
func (t *Tracker) Leave(ctx context.Context) {
	count := t.count.Add(-1)
	if count < 0 {
		t.count.CompareAndSwap(count, 0)
		count = 0
	}

	t.logger.Info("Left a guild", zap.Int64("count", count))
	t.publish(ctx)
}

// Count returns the current guild count.
func (t *Tracker) Count() int64 {
	return t.count.Load()
}

// publish pushes the status text. Status updates are cosmetic; failures are
// logged and never propagate.
func (t *Tracker) publish(ctx context.Context) {
	text := fmt.Sprintf("%d server(s) - OwO", t.count.Load())

	if err := t.status.SetWatching(ctx, text); err != nil {
		t.logger.Warn("Failed to update activity status", zap.Error(err))
	}
}

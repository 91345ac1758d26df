package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cyberbun/cyberbun/internal/database/types"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// DefaultPollInterval is how often the scheduler scans for due reminders
// when no interval is configured.
const DefaultPollInterval = 30 * time.Second

// maxConcurrentDeliveries bounds how many reminders a single tick sends at once.
const maxConcurrentDeliveries = 4

// Store is the durable reminder queue the scheduler drains.
type Store interface {
	GetDueReminders(ctx context.Context, now time.Time) ([]*types.Reminder, error)
	MarkCompleted(ctx context.Context, id int64) error
}

// Notifier delivers reminder messages to their destination channel.
type Notifier interface {
	CreateMessage(ctx context.Context, channelID snowflake.ID, message discord.MessageCreate) (*discord.Message, error)
}

// Scheduler drains due reminders on a fixed interval for the lifetime of the
// process. Delivery is at-least-once: a reminder is only marked completed
// after a successful send, so a failed send leaves it pending for the next
// tick. There is deliberately no backoff and no retry cutoff.
type Scheduler struct {
	store    Store
	notifier Notifier
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger

	done      chan struct{}
	stopOnce  sync.Once
	startOnce sync.Once
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval overrides the poll interval.
func WithInterval(interval time.Duration) Option {
	return func(s *Scheduler) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// New creates a reminder scheduler.
func New(store Store, notifier Notifier, logger *zap.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:    store,
		notifier: notifier,
		interval: DefaultPollInterval,
		now:      time.Now,
		logger:   logger.Named("reminder"),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start launches the polling loop in its own goroutine. Tick failures are
// logged and never stop the loop. Safe to call more than once; only the
// first call starts the loop.
func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		go s.run()
	})
}

// Stop terminates the polling loop. Idempotent.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

func (s *Scheduler) run() {
	s.logger.Info("Reminder scheduler started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			s.logger.Info("Reminder scheduler stopped")
			return
		case <-ticker.C:
			if err := s.Tick(context.Background()); err != nil {
				s.logger.Error("Reminder tick failed", zap.Error(err))
			}
		}
	}
}

// Tick performs one scan-and-deliver pass. Exported so the loop body can be
// driven directly in tests.
func (s *Scheduler) Tick(ctx context.Context) error {
	due, err := s.store.GetDueReminders(ctx, s.now())
	if err != nil {
		return fmt.Errorf("failed to fetch due reminders: %w", err)
	}

	if len(due) == 0 {
		return nil
	}

	s.logger.Debug("Delivering due reminders", zap.Int("count", len(due)))

	// Reminders are independent of each other, so deliveries run
	// concurrently; one failure never blocks the rest.
	p := pool.New().WithMaxGoroutines(maxConcurrentDeliveries)

	for _, reminder := range due {
		p.Go(func() {
			s.deliver(ctx, reminder)
		})
	}

	p.Wait()

	return nil
}

// deliver sends one reminder and marks it completed on success. Any failure
// leaves the row pending so the next tick retries it.
func (s *Scheduler) deliver(ctx context.Context, reminder *types.Reminder) {
	content := fmt.Sprintf("%s - Reminder; %s", discord.UserMention(reminder.UserID), reminder.Message)

	_, err := s.notifier.CreateMessage(ctx, reminder.ChannelID,
		discord.NewMessageCreateBuilder().SetContent(content).Build())
	if err != nil {
		s.logger.Warn("Failed to deliver reminder, will retry next tick",
			zap.Int64("id", reminder.ID),
			zap.Error(err))

		return
	}

	if err := s.store.MarkCompleted(ctx, reminder.ID); err != nil {
		// The send went out but the completion write failed; the reminder
		// will be delivered again next tick. Duplicate delivery is the
		// accepted trade-off of at-least-once.
		s.logger.Warn("Failed to mark reminder completed",
			zap.Int64("id", reminder.ID),
			zap.Error(err))

		return
	}

	s.logger.Info("Delivered reminder",
		zap.Int64("id", reminder.ID),
		zap.Uint64("userID", uint64(reminder.UserID)),
		zap.Uint64("channelID", uint64(reminder.ChannelID)))
}

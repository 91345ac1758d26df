package starboard

import (
	"context"
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

const (
	// seenKeyPrefix identifies promoted-message entries in Redis.
	seenKeyPrefix = "starred_message:"

	// DefaultSeenTTL bounds how long a seen entry lives when no TTL is configured.
	DefaultSeenTTL = 24 * time.Hour
)

// SeenCache is a Redis-backed fast path in front of the starred-message
// ledger. It avoids a database round trip for messages that keep collecting
// stars after promotion. Misses and Redis failures just fall through to the
// ledger, so every method swallows errors after logging them.
type SeenCache struct {
	client rueidis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSeenCache initializes the seen-cache on top of an existing Redis client.
func NewSeenCache(client rueidis.Client, ttl time.Duration, logger *zap.Logger) *SeenCache {
	if ttl <= 0 {
		ttl = DefaultSeenTTL
	}

	return &SeenCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("starboard_cache"),
	}
}

// Contains reports whether a message is known to be promoted already.
// A Redis failure reads as a miss.
func (c *SeenCache) Contains(ctx context.Context, messageID snowflake.ID) bool {
	key := seenKey(messageID)

	exists, err := c.client.Do(ctx, c.client.B().Exists().Key(key).Build()).AsBool()
	if err != nil {
		if !rueidis.IsRedisNil(err) {
			c.logger.Warn("Failed to check seen-cache",
				zap.Uint64("messageID", uint64(messageID)),
				zap.Error(err))
		}

		return false
	}

	return exists
}

// Add records a promoted message with the configured TTL.
func (c *SeenCache) Add(ctx context.Context, messageID snowflake.ID) {
	key := seenKey(messageID)

	err := c.client.Do(ctx, c.client.B().Set().Key(key).Value("1").
		Ex(c.ttl).Build()).Error()
	if err != nil {
		c.logger.Warn("Failed to update seen-cache",
			zap.Uint64("messageID", uint64(messageID)),
			zap.Error(err))
	}
}

func seenKey(messageID snowflake.ID) string {
	return seenKeyPrefix + strconv.FormatUint(uint64(messageID), 10)
}

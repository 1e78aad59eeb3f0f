package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/persistence"
)

const statsTTL = 30 * time.Second

// TicketStatsCache keeps per-owner stats in Redis for a short window.
// Every method degrades to a no-op when Redis is unreachable; the database
// remains the source of truth.
type TicketStatsCache struct {
	redis  *persistence.Redis
	logger *zap.Logger
}

// NewTicketStatsCache builds the cache. A nil redis wrapper disables it.
func NewTicketStatsCache(redis *persistence.Redis, logger *zap.Logger) *TicketStatsCache {
	return &TicketStatsCache{redis: redis, logger: logger}
}

func (c *TicketStatsCache) key(ownerID string) string {
	return "ticket:stats:" + ownerID
}

// Get returns cached stats for the owner, or nil on miss.
func (c *TicketStatsCache) Get(ctx context.Context, ownerID string) *domain.TicketStats {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return nil
	}
	payload, err := c.redis.Client.Get(ctx, c.key(ownerID)).Bytes()
	if err != nil {
		return nil
	}
	var stats domain.TicketStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		c.logger.Warn("corrupt stats cache entry", zap.String("owner_id", ownerID), zap.Error(err))
		return nil
	}
	return &stats
}

// Set stores stats for the owner with a short TTL.
func (c *TicketStatsCache) Set(ctx context.Context, ownerID string, stats domain.TicketStats) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.redis.Client.Set(ctx, c.key(ownerID), payload, statsTTL).Err(); err != nil {
		c.logger.Warn("stats cache write failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

// Invalidate drops the cached stats after any ticket mutation by the owner.
func (c *TicketStatsCache) Invalidate(ctx context.Context, ownerID string) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return
	}
	if err := c.redis.Client.Del(ctx, c.key(ownerID)).Err(); err != nil {
		c.logger.Warn("stats cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

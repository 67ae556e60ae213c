package scanner

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const alertLogTTL = 48 * time.Hour

// RedisAlertLog implements AlertLog on Redis, so a process restarted on
// the trigger day doesn't re-send the same aggregate message. Keys expire
// on their own; nothing is ever cleaned up manually.
type RedisAlertLog struct {
	rdb *redis.Client
}

func NewRedisAlertLog(rdb *redis.Client) *RedisAlertLog {
	return &RedisAlertLog{rdb: rdb}
}

// MarkSent records an alert for the given day via SETNX.
func (a *RedisAlertLog) MarkSent(ctx context.Context, day time.Time) (bool, error) {
	key := "overdue_alert:" + day.Format("2006-01-02")
	return a.rdb.SetNX(ctx, key, "1", alertLogTTL).Result()
}

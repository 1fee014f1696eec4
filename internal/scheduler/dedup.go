package scheduler

import (
	"fmt"
	"time"

	"github.com/nimasrn/verse-gateway/pkg/logger"
	"github.com/nimasrn/verse-gateway/pkg/redis"
)

const dedupTTL = 24 * time.Hour

// Deduper guards against double sends when the process restarts mid-day or
// a reload re-registers a job. The guard key lives in redis for one day.
type Deduper struct {
	redis redis.RedisAdapter
}

func NewDeduper(adapter redis.RedisAdapter) *Deduper {
	return &Deduper{redis: adapter}
}

func dedupKey(phone string, day time.Time) string {
	return fmt.Sprintf("delivered:%s:%s", phone, day.Format("2006-01-02"))
}

// Acquire claims today's delivery for a phone number. It returns false when
// another attempt already claimed it.
func (d *Deduper) Acquire(phone string, day time.Time) (bool, error) {
	return d.redis.SetNX(dedupKey(phone, day), []byte("1"), dedupTTL)
}

// Release frees the claim so a later attempt can retry after a failure.
func (d *Deduper) Release(phone string, day time.Time) {
	if err := d.redis.Del(dedupKey(phone, day)); err != nil {
		logger.Warn("Failed to release delivery claim", "error", err, "phone", phone)
	}
}

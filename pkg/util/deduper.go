package util

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper suppresses repeated submissions of the same key within ttl.
// A nil *Deduper allows everything.
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduper{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// AcquireOnce returns true the first time scope+parts is seen within ttl,
// false for a duplicate. Redis errors fail open.
func (d *Deduper) AcquireOnce(ctx context.Context, scope string, parts ...string) bool {
	if d == nil || d.rdb == nil {
		return true
	}

	key := dedupKey(scope, parts)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		d.logger.Warn("Redis dedup check failed, allowing request",
			zap.String("scope", scope),
			zap.Error(err),
		)
		return true
	}

	if !ok {
		d.logger.Info("Skipped duplicated request",
			zap.String("scope", scope),
			zap.String("dedup_key", key),
		)
	}
	return ok
}

// Release forgets scope+parts so the next AcquireOnce succeeds. Callers use it
// when the work guarded by AcquireOnce did not complete.
func (d *Deduper) Release(ctx context.Context, scope string, parts ...string) {
	if d == nil || d.rdb == nil {
		return
	}

	if err := d.rdb.Del(ctx, dedupKey(scope, parts)).Err(); err != nil {
		d.logger.Warn("Redis dedup release failed",
			zap.String("scope", scope),
			zap.Error(err),
		)
	}
}

func dedupKey(scope string, parts []string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "\x00")))
	return "dedup:" + scope + ":" + hex.EncodeToString(sum[:])
}

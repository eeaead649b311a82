package redisx

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	// Publish counter per origin warehouse: seq:pub:{warehouse} -> int64
	KeySeqPublish = "seq:pub:%s"

	// Last applied sequence on the subscriber side: seq:applied:{warehouse}
	KeySeqApplied = "seq:applied:%s"
)

// SeqCounter issues the per-origin publish sequence via INCR, so it is
// monotonic across gateway restarts as long as redis survives.
type SeqCounter struct{ R *redis.Client }

func (s SeqCounter) Next(ctx context.Context, origin string) (int64, error) {
	return s.R.Incr(ctx, fmt.Sprintf(KeySeqPublish, origin)).Result()
}

// SeqTracker persists the subscriber's last applied sequence per origin.
type SeqTracker struct{ R *redis.Client }

func (t SeqTracker) LastApplied(ctx context.Context, origin string) (int64, error) {
	v, err := t.R.Get(ctx, fmt.Sprintf(KeySeqApplied, origin)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (t SeqTracker) SetLastApplied(ctx context.Context, origin string, seq int64) error {
	return t.R.Set(ctx, fmt.Sprintf(KeySeqApplied, origin), seq, 0).Err()
}

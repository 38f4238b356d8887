package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/skinrec/internal/db"
)

// IncrBy increments key and sets ttl only when the key has none (EXPIRE NX),
// pipelined in one round trip.
func (s *Store) IncrBy(ctx context.Context, key string, val int64, ttl time.Duration) (int64, error) {
	cmds := rueidis.Commands{s.client.B().Incrby().Key(key).Increment(val).Build()}
	if ttl > 0 {
		cmds = append(cmds, s.client.B().Expire().Key(key).Seconds(int64(ttl.Seconds())).Nx().Build())
	}

	results := s.client.DoMulti(ctx, cmds...)
	n, err := results[0].AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpIncrBy, Err: err}
	}
	if len(results) > 1 {
		if err := results[1].Error(); err != nil {
			return n, &db.Error{Op: db.OpExpire, Err: err}
		}
	}
	return n, nil
}

// GetInt reads an integer counter.
func (s *Store) GetInt(ctx context.Context, key string) (int64, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, &db.Error{Op: db.OpGet, Err: err}
	}
	return n, nil
}

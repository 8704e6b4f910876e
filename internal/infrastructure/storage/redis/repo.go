package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"nvcompare/internal/application/port"
	"nvcompare/internal/domain/model"
)

// Repo keeps upstream bodies (port.Cache), the latest snapshots (port.Repository) and the
// analytics stream (port.Analytics) in one Redis keyspace.
type Repo struct {
	rdb          *redis.Client
	prefix       string
	ttl          time.Duration
	keyLatest    string // prefix + ":latest"
	eventStream  string
	eventChannel string
}

func New(rdb *redis.Client, prefix string, ttl time.Duration, eventStream, eventChannel string) *Repo {
	if strings.TrimSpace(eventStream) == "" {
		eventStream = prefix + ":events"
	}
	if strings.TrimSpace(eventChannel) == "" {
		eventChannel = prefix + ":events:pub"
	}
	return &Repo{
		rdb:          rdb,
		prefix:       prefix,
		ttl:          ttl,
		keyLatest:    prefix + ":latest",
		eventStream:  eventStream,
		eventChannel: eventChannel,
	}
}

func (r *Repo) key(k string) string { return r.prefix + ":" + k }

func (r *Repo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *Repo) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, r.key(key), val, ttl).Err()
}

func (r *Repo) setLatest(ctx context.Context, field string, v any, ts int64) error {
	b, err := json.Marshal(struct {
		Value any   `json:"value"`
		Ts    int64 `json:"ts_ms"`
	}{v, ts})
	if err != nil {
		return err
	}

	// Hash: field = "quote" | "crypto" | "comparison" -> json
	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, r.keyLatest, field, string(b))
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyLatest, r.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *Repo) SaveQuote(ctx context.Context, q *model.QuoteSnapshot, ts int64) error {
	return r.setLatest(ctx, "quote", q, ts)
}

func (r *Repo) SaveCrypto(ctx context.Context, c *model.CryptoAggregate, ts int64) error {
	return r.setLatest(ctx, "crypto", c, ts)
}

func (r *Repo) InsertComparison(ctx context.Context, ts int64, c *model.ComparisonResult) error {
	return r.setLatest(ctx, "comparison", c, ts)
}

func (r *Repo) Record(ctx context.Context, ev model.Event) error {
	params, err := json.Marshal(ev.Params)
	if err != nil {
		return err
	}

	// 1) Stream: XADD <stream> * ts name params
	_, err = r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.eventStream,
		Values: map[string]any{
			"ts_ms":  ev.Ts,
			"name":   ev.Name,
			"params": string(params),
		},
	}).Result()
	if err != nil {
		return err
	}

	// 2) PubSub: PUBLISH <channel> json
	msg, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, r.eventChannel, msg).Err()
}

// Close is a no-op; the client is owned by the service context.
func (r *Repo) Close() error { return nil }

var (
	_ port.Cache      = (*Repo)(nil)
	_ port.Repository = (*Repo)(nil)
	_ port.Analytics  = (*Repo)(nil)
)

// Package cache keeps dashboard stats in Redis for a short TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/shehrozeikram/ERP-sub009/internal/identity"
	"github.com/shehrozeikram/ERP-sub009/internal/tasks"
	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
)

const (
	DefaultPrefix = "erpflow:stats"
	DefaultTTL    = 30 * time.Second
)

// Config of the stats cache. An empty RedisURL disables caching.
type Config struct {
	RedisURL string `json:"redis_url,optional"`
	Prefix   string `json:"prefix,optional"`
	TTL      int    `json:"ttl,default=30"` // seconds
}

// Generation identifies the cache epoch a lookup ran in. Set stores under
// the generation its Get saw, so stats computed across an Invalidate land in
// the stale epoch and are never served.
type Generation int64

// NoGeneration makes Set a no-op.
const NoGeneration Generation = -1

// StatsCache is consulted by the stats endpoint and flushed by transitions.
type StatsCache interface {
	Get(ctx context.Context, scope string) (*tasks.Stats, Generation, bool)
	Set(ctx context.Context, scope string, gen Generation, s *tasks.Stats)
	Invalidate(ctx context.Context) error
}

// Scope names the set of documents a caller's stats are computed over.
// Callers sharing a scope see identical numbers.
func Scope(c identity.Caller, a identity.Assignment, filter workflow.Status) string {
	switch {
	case a.Assigned:
		return "assigned:" + string(a.Status)
	case a.Elevated:
		if filter == "" {
			return "elevated:*"
		}
		return "elevated:" + string(filter)
	case c.ID == "":
		return "anonymous"
	default:
		return "creator:" + c.ID
	}
}

// New returns a Redis cache, or Disabled when c has no RedisURL.
func New(c Config) (StatsCache, error) {
	if strings.TrimSpace(c.RedisURL) == "" {
		return Disabled{}, nil
	}
	opt, err := redis.ParseURL(c.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse stats cache url: %w", err)
	}
	ttl := DefaultTTL
	if c.TTL > 0 {
		ttl = time.Duration(c.TTL) * time.Second
	}
	prefix := c.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Redis{cli: redis.NewClient(opt), prefix: prefix, ttl: ttl}, nil
}

// Disabled never hits.
type Disabled struct{}

func (Disabled) Get(context.Context, string) (*tasks.Stats, Generation, bool) {
	return nil, NoGeneration, false
}

func (Disabled) Set(context.Context, string, Generation, *tasks.Stats) {}

func (Disabled) Invalidate(context.Context) error { return nil }

// Redis stores one JSON blob per scope. Keys embed a generation counter so
// Invalidate is a single INCR rather than a key scan.
type Redis struct {
	cli    *redis.Client
	prefix string
	ttl    time.Duration
}

func (r *Redis) genKey() string { return r.prefix + ":gen" }

func (r *Redis) generation(ctx context.Context) (Generation, error) {
	gen, err := r.cli.Get(ctx, r.genKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return NoGeneration, err
	}
	return Generation(gen), nil
}

func (r *Redis) key(gen Generation, scope string) string {
	return fmt.Sprintf("%s:%d:%s", r.prefix, gen, scope)
}

func (r *Redis) Get(ctx context.Context, scope string) (*tasks.Stats, Generation, bool) {
	gen, err := r.generation(ctx)
	if err != nil {
		logx.WithContext(ctx).Errorf("stats cache: %v", err)
		return nil, NoGeneration, false
	}
	k := r.key(gen, scope)
	b, err := r.cli.Get(ctx, k).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logx.WithContext(ctx).Errorf("stats cache get %s: %v", k, err)
		}
		return nil, gen, false
	}
	var s tasks.Stats
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, gen, false
	}
	return &s, gen, true
}

func (r *Redis) Set(ctx context.Context, scope string, gen Generation, s *tasks.Stats) {
	if s == nil || gen == NoGeneration {
		return
	}
	k := r.key(gen, scope)
	b, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := r.cli.Set(ctx, k, b, r.ttl).Err(); err != nil {
		logx.WithContext(ctx).Errorf("stats cache set %s: %v", k, err)
	}
}

func (r *Redis) Invalidate(ctx context.Context) error {
	return r.cli.Incr(ctx, r.genKey()).Err()
}

func (r *Redis) Close() error { return r.cli.Close() }

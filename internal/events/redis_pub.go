package events

import (
	"context"
	"encoding/json"

	"github.com/zeromicro/go-zero/core/logx"

	redis "github.com/redis/go-redis/v9"
)

type redisPublisher struct {
	cli          *redis.Client
	stream       string
	maxLen       int64
	maxLenApprox bool
}

// NewRedis appends transition events to a Redis stream.
func NewRedis(url, stream string, maxLen int64, approx bool) Publisher {
	opt, err := redis.ParseURL(url)
	if err != nil {
		logx.Errorf("[workflow-events] redis parse url: %v", err)
		return NewNoop()
	}
	if stream == "" {
		stream = DefaultStream
	}
	return &redisPublisher{cli: redis.NewClient(opt), stream: stream, maxLen: maxLen, maxLenApprox: approx}
}

func (p *redisPublisher) PublishTransition(ctx context.Context, evt TransitionEvent) error {
	// single 'data' field keeps the stream schema flexible
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	args := &redis.XAddArgs{Stream: p.stream, Values: map[string]any{"data": string(b), "module": evt.Module}}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = p.maxLenApprox
	}
	return p.cli.XAdd(ctx, args).Err()
}

func (p *redisPublisher) Close() error { return p.cli.Close() }

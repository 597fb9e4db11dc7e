package events

import (
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
)

const (
	DefaultTopic  = "workflow.transitions"
	DefaultStream = "workflow:transitions"
)

// Config selects the publisher backend.
type Config struct {
	Type         string   `json:"type,optional"` // kafka|redis|noop
	Brokers      []string `json:"brokers,optional"`
	Topic        string   `json:"topic,optional"`
	RedisURL     string   `json:"redis_url,optional"`
	Stream       string   `json:"stream,optional"`
	MaxLen       int64    `json:"max_len,default=100000"`
	MaxLenApprox bool     `json:"max_len_approx,default=true"`
}

// New builds a Publisher from c, falling back to noop for anything it does
// not recognise.
func New(c Config) Publisher {
	switch strings.ToLower(strings.TrimSpace(c.Type)) {
	case "kafka":
		logx.Infof("[workflow-events] kafka publisher enabled: brokers=%v topic=%s", c.Brokers, c.Topic)
		return NewKafka(c.Brokers, c.Topic)
	case "redis":
		url := c.RedisURL
		if url == "" {
			url = "redis://localhost:6379/0"
		}
		logx.Infof("[workflow-events] redis publisher enabled: stream=%s", c.Stream)
		return NewRedis(url, c.Stream, c.MaxLen, c.MaxLenApprox)
	case "", "noop":
		return NewNoop()
	default:
		logx.Errorf("[workflow-events] unsupported type %q; using noop", c.Type)
		return NewNoop()
	}
}

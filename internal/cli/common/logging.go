package common

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/spf13/viper"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// LogOptions configure the CLI logger. An empty File logs to stderr.
type LogOptions struct {
	Level      string // debug|info|warn|error
	Format     string // console|json
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// LogOptionsFrom reads the log.* keys of v.
func LogOptionsFrom(v *viper.Viper) LogOptions {
	return LogOptions{
		Level:      v.GetString("log.level"),
		Format:     v.GetString("log.format"),
		File:       v.GetString("log.file"),
		MaxSizeMB:  v.GetInt("log.max_size"),
		MaxBackups: v.GetInt("log.max_backups"),
		MaxAgeDays: v.GetInt("log.max_age"),
		Compress:   v.GetBool("log.compress"),
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger builds a slog logger writing to w, or to a rotating file when
// o.File is set.
func NewLogger(o LogOptions, w io.Writer) *slog.Logger {
	if strings.TrimSpace(o.File) != "" {
		w = &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    o.MaxSizeMB,
			MaxBackups: o.MaxBackups,
			MaxAge:     o.MaxAgeDays,
			Compress:   o.Compress,
		}
	}
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: parseLevel(o.Level)}
	var h slog.Handler
	if strings.EqualFold(o.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(&countHandler{next: h})
}

// SetupLogger installs NewLogger as the slog default and points the std
// logger at the same writer.
func SetupLogger(o LogOptions) *slog.Logger {
	logger := NewLogger(o, os.Stderr)
	slog.SetDefault(logger)
	if strings.EqualFold(o.Format, "json") {
		log.SetFlags(0)
	} else {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	}
	return logger
}

var cntDebug, cntInfo, cntWarn, cntError atomic.Int64

type countHandler struct{ next slog.Handler }

func (c *countHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return c.next.Enabled(ctx, lvl)
}

func (c *countHandler) Handle(ctx context.Context, rec slog.Record) error {
	switch {
	case rec.Level >= slog.LevelError:
		cntError.Add(1)
	case rec.Level >= slog.LevelWarn:
		cntWarn.Add(1)
	case rec.Level >= slog.LevelInfo:
		cntInfo.Add(1)
	default:
		cntDebug.Add(1)
	}
	return c.next.Handle(ctx, rec)
}

func (c *countHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &countHandler{next: c.next.WithAttrs(attrs)}
}

func (c *countHandler) WithGroup(name string) slog.Handler {
	return &countHandler{next: c.next.WithGroup(name)}
}

// LogCounters returns how many records were written per level.
func LogCounters() map[string]int64 {
	d, i, w, e := cntDebug.Load(), cntInfo.Load(), cntWarn.Load(), cntError.Load()
	return map[string]int64{"debug": d, "info": i, "warn": w, "error": e, "total": d + i + w + e}
}

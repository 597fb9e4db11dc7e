package common

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

var (
	logLevels  = map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "error": {}}
	logFormats = map[string]struct{}{"console": {}, "json": {}}
)

// ValidateLogConfig rejects unknown log levels and formats.
func ValidateLogConfig(v *viper.Viper) error {
	if lvl := strings.ToLower(v.GetString("log.level")); lvl != "" {
		if _, ok := logLevels[lvl]; !ok {
			return fmt.Errorf("log.level: unknown level %q", lvl)
		}
	}
	if f := strings.ToLower(v.GetString("log.format")); f != "" {
		if _, ok := logFormats[f]; !ok {
			return fmt.Errorf("log.format: unknown format %q", f)
		}
	}
	if v.GetInt("log.max_size") < 0 || v.GetInt("log.max_backups") < 0 || v.GetInt("log.max_age") < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	return nil
}

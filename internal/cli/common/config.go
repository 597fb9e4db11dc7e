package common

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. ERPFLOW_DSN.
const EnvPrefix = "ERPFLOW"

// NewViper returns a viper instance bound to the ERPFLOW_* environment and,
// when base is set, loaded from base and the includes in order.
func NewViper(base string, includes ...string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	if base != "" {
		v.SetConfigFile(base)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", base, err)
		}
	}
	for _, inc := range includes {
		iv := viper.New()
		iv.SetConfigFile(inc)
		if err := iv.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("include %s: %w", inc, err)
		}
		if err := v.MergeConfigMap(iv.AllSettings()); err != nil {
			return nil, fmt.Errorf("merge %s: %w", inc, err)
		}
	}
	return v, nil
}

// mergeMaps recursively merges b into a.
func mergeMaps(a, b map[string]any) map[string]any {
	for k, vb := range b {
		if ma, ok := a[k].(map[string]any); ok {
			if mb, ok2 := vb.(map[string]any); ok2 {
				a[k] = mergeMaps(ma, mb)
				continue
			}
		}
		a[k] = vb
	}
	return a
}

// ApplyProfile overlays profiles.<name> onto v. An empty name returns v.
func ApplyProfile(v *viper.Viper, profile string) (*viper.Viper, error) {
	if profile == "" {
		return v, nil
	}
	prof := v.Sub("profiles")
	if prof == nil {
		return nil, fmt.Errorf("profiles not found in config")
	}
	p := prof.Sub(profile)
	if p == nil {
		return nil, fmt.Errorf("profile %s not found", profile)
	}
	base := v.AllSettings()
	delete(base, "profiles")
	nv := viper.New()
	nv.SetEnvPrefix(EnvPrefix)
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	nv.AutomaticEnv()
	if err := nv.MergeConfigMap(mergeMaps(base, p.AllSettings())); err != nil {
		return nil, err
	}
	return nv, nil
}

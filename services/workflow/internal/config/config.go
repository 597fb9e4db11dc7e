package config

import (
	"github.com/zeromicro/go-zero/rest"

	"github.com/shehrozeikram/ERP-sub009/internal/cache"
	"github.com/shehrozeikram/ERP-sub009/internal/events"
	"github.com/shehrozeikram/ERP-sub009/internal/telemetry"
)

type Config struct {
	rest.RestConf
	Database   DatabaseConfig   `json:"database,optional" yaml:"database"`
	Auth       AuthConfig       `json:"auth,optional" yaml:"auth"`
	Workflow   WorkflowConfig   `json:"workflow,optional" yaml:"workflow"`
	Events     events.Config    `json:"events,optional" yaml:"events"`
	StatsCache cache.Config     `json:"stats_cache,optional" yaml:"stats_cache"`
	Otel       telemetry.Config `json:"otel,optional" yaml:"otel"`
}

type DatabaseConfig struct {
	// DataSource selects the driver by prefix; empty means data/erp.db.
	DataSource  string `json:"datasource,optional" yaml:"datasource,optional"`
	AutoMigrate bool   `json:"auto_migrate,default=true" yaml:"auto_migrate"`
}

type AuthConfig struct {
	JWTSecret  string `json:"jwt_secret,optional" yaml:"jwt_secret,optional"`
	RBACModel  string `json:"rbac_model,optional" yaml:"rbac_model,optional"`
	RBACPolicy string `json:"rbac_policy,optional" yaml:"rbac_policy,optional"`
	// DevMode accepts every request as a local super_admin.
	DevMode bool `json:"dev_mode,optional" yaml:"dev_mode,optional"`
}

type WorkflowConfig struct {
	RulesPath   string `json:"rules_path,optional" yaml:"rules_path,optional"`
	Store       string `json:"store,default=sql,options=sql|memory" yaml:"store"`
	FetchLimit  int    `json:"fetch_limit,default=50" yaml:"fetch_limit"`
	Concurrency int    `json:"concurrency,default=4" yaml:"concurrency"`
	// AuditLog appends every transition to a hash-chained file when set.
	AuditLog string `json:"audit_log,optional" yaml:"audit_log,optional"`
}

// Package rbac decides which ERP roles may call which dashboard endpoints.
package rbac

import (
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/zeromicro/go-zero/core/logx"
)

// Permissions checked by the workflow service.
const (
	PermTasksRead  = "admin.payment_settlement:read"
	PermTransition = "admin.workflow:transition"
	PermApprove    = "admin.workflow:approve"
)

//go:embed default_model.conf
var defaultModel string

//go:embed default_policy.csv
var defaultPolicy string

// CasbinPolicy wraps a Casbin enforcer. Subjects are "user:<id>" and
// "role:<name>"; objects and actions come from "object:action" permissions.
type CasbinPolicy struct {
	enforcer *casbin.Enforcer
}

// NewCasbinPolicy loads model and policy from files.
func NewCasbinPolicy(modelPath, policyPath string) (*CasbinPolicy, error) {
	e, err := casbin.NewEnforcer(modelPath, policyPath)
	if err != nil {
		return nil, err
	}
	return &CasbinPolicy{enforcer: e}, nil
}

// NewDefaultPolicy uses the built-in model and role grants.
func NewDefaultPolicy() (*CasbinPolicy, error) {
	m, err := model.NewModelFromString(defaultModel)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(m, stringadapter.NewAdapter(defaultPolicy))
	if err != nil {
		return nil, err
	}
	// grants added at runtime stay in memory
	e.EnableAutoSave(false)
	return &CasbinPolicy{enforcer: e}, nil
}

// Load prefers the files and falls back to the default policy when no path
// is configured.
func Load(modelPath, policyPath string) (*CasbinPolicy, error) {
	if strings.TrimSpace(modelPath) == "" || strings.TrimSpace(policyPath) == "" {
		return NewDefaultPolicy()
	}
	return NewCasbinPolicy(modelPath, policyPath)
}

// Can reports whether the user, directly or through any role, holds perm.
func (p *CasbinPolicy) Can(user string, roles []string, perm string) bool {
	obj, act := parsePermission(perm)
	subjects := make([]string, 0, len(roles)+1)
	if user != "" {
		subjects = append(subjects, "user:"+user)
	}
	for _, r := range roles {
		if r = strings.TrimSpace(r); r != "" {
			subjects = append(subjects, "role:"+r)
		}
	}
	for _, sub := range subjects {
		ok, err := p.enforcer.Enforce(sub, obj, act)
		if err != nil {
			logx.Errorf("[rbac] enforce %s %s:%s: %v", sub, obj, act, err)
			continue
		}
		if ok {
			return true
		}
	}
	logx.Debugf("[rbac] denied: user=%s roles=%v perm=%s", user, roles, perm)
	return false
}

// AddRoleGrant grants perm to role at runtime (tests, CLI checks).
func (p *CasbinPolicy) AddRoleGrant(role, perm string) error {
	obj, act := parsePermission(perm)
	_, err := p.enforcer.AddPolicy("role:"+role, obj, act)
	return err
}

func parsePermission(perm string) (string, string) {
	if perm == "*" {
		return "*", "*"
	}
	i := strings.LastIndex(perm, ":")
	if i < 0 {
		return perm, "read"
	}
	return perm[:i], perm[i+1:]
}

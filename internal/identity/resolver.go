// Package identity maps an authenticated caller to the workflow status they
// are responsible for.
package identity

import (
	"strings"

	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
)

// Caller is the authenticated user behind a request.
type Caller struct {
	ID    string
	Email string
	Role  string
	Name  string
}

// Config holds the assignment tables. Role entries with an empty status mean
// "no assignment" and are mostly used for the elevated roles.
type Config struct {
	Emails   map[string]workflow.Status
	Roles    map[string]workflow.Status
	Elevated []string
}

// DefaultElevatedRoles see every document regardless of status.
var DefaultElevatedRoles = []string{"super_admin", "admin", "higher_management", "hr_manager"}

// DefaultConfig is the assignment table shipped with the service.
func DefaultConfig() Config {
	return Config{
		Emails: map[string]workflow.Status{
			"rizwan@tovus.net": workflow.StatusSendToAMAdmin,
		},
		Roles: map[string]workflow.Status{
			"audit_manager":   workflow.StatusSendToAudit,
			"auditor":         workflow.StatusSendToAudit,
			"finance_manager": workflow.StatusSendToFinance,
		},
		Elevated: DefaultElevatedRoles,
	}
}

// Resolver answers assignment lookups. It is immutable once built and safe
// for concurrent use.
type Resolver struct {
	emails   map[string]workflow.Status
	roles    map[string]workflow.Status
	elevated map[string]struct{}
}

func NewResolver(c Config) *Resolver {
	r := &Resolver{
		emails:   make(map[string]workflow.Status, len(c.Emails)),
		roles:    make(map[string]workflow.Status, len(c.Roles)),
		elevated: make(map[string]struct{}, len(c.Elevated)),
	}
	for email, st := range c.Emails {
		r.emails[normalize(email)] = st
	}
	for role, st := range c.Roles {
		r.roles[strings.TrimSpace(role)] = st
	}
	for _, role := range c.Elevated {
		r.elevated[strings.TrimSpace(role)] = struct{}{}
	}
	return r
}

func normalize(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// AssignedStatus returns the status the caller works on. The email table
// always wins over the role table. ok is false when the caller has no
// assignment, which for elevated roles means unrestricted visibility.
func (r *Resolver) AssignedStatus(email, role string) (workflow.Status, bool) {
	if email = normalize(email); email != "" {
		if st, ok := r.emails[email]; ok && st != "" {
			return st, true
		}
	}
	if st, ok := r.roles[strings.TrimSpace(role)]; ok && st != "" {
		return st, true
	}
	return "", false
}

// Elevated reports whether the role sees every document.
func (r *Resolver) Elevated(role string) bool {
	_, ok := r.elevated[strings.TrimSpace(role)]
	return ok
}

// Assignment is the resolved view of a caller used by the aggregators.
type Assignment struct {
	Status   workflow.Status
	Assigned bool
	Elevated bool
}

// Resolve combines AssignedStatus and Elevated for a caller.
func (r *Resolver) Resolve(c Caller) Assignment {
	st, ok := r.AssignedStatus(c.Email, c.Role)
	return Assignment{Status: st, Assigned: ok, Elevated: r.Elevated(c.Role)}
}

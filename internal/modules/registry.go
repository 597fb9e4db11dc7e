// Package modules describes the workflow-enabled submodules and the generic
// record access the aggregators use to read them.
package modules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Descriptor maps the generic task fields onto one submodule's own field
// names. Field names double as column names for table-backed stores.
type Descriptor struct {
	Key              string `json:"key" yaml:"key"`
	Name             string `json:"name" yaml:"name"`
	Table            string `json:"table" yaml:"table"`
	StatusField      string `json:"status_field" yaml:"status_field"`
	TitleField       string `json:"title_field" yaml:"title_field"`
	DescriptionField string `json:"description_field" yaml:"description_field"`
	AmountField      string `json:"amount_field" yaml:"amount_field"`
	DateField        string `json:"date_field" yaml:"date_field"`
	HistoryField     string `json:"history_field" yaml:"history_field"`
	// LegacyStatusField is the plain Approved/Rejected column some modules
	// still carry. Accessors expose it as the "status" field.
	LegacyStatusField string `json:"legacy_status_field,omitempty" yaml:"legacy_status_field"`
	RoutePath         string `json:"route_path" yaml:"route_path"`
	Icon              string `json:"icon" yaml:"icon"`
}

// LegacyStatusKey is the Document.Fields key of the legacy status column.
const LegacyStatusKey = "status"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var (
	ErrDuplicateModule = errors.New("duplicate module key")
	ErrNoAccessor      = errors.New("module has no accessor")
	ErrInvalidField    = errors.New("invalid field name")
)

// Validate checks the descriptor and fills defaults for the status and
// history fields.
func (d *Descriptor) Validate() error {
	d.Key = strings.TrimSpace(d.Key)
	if d.Key == "" {
		return fmt.Errorf("%w: empty module key", ErrInvalidField)
	}
	if d.Name == "" {
		d.Name = d.Key
	}
	if d.StatusField == "" {
		d.StatusField = "workflow_status"
	}
	if d.HistoryField == "" {
		d.HistoryField = "workflow_history"
	}
	fields := map[string]string{
		"table":             d.Table,
		"status_field":      d.StatusField,
		"title_field":       d.TitleField,
		"description_field": d.DescriptionField,
		"amount_field":      d.AmountField,
		"date_field":        d.DateField,
		"history_field":     d.HistoryField,
		"legacy_status":     d.LegacyStatusField,
	}
	for name, v := range fields {
		if v == "" {
			continue
		}
		if !identPattern.MatchString(v) {
			return fmt.Errorf("%w: %s.%s=%q", ErrInvalidField, d.Key, name, v)
		}
	}
	return nil
}

// EditPath is the UI route for editing a document of this module.
func (d Descriptor) EditPath(id string) string {
	if id == "" || d.RoutePath == "" {
		return ""
	}
	return strings.TrimRight(d.RoutePath, "/") + "/edit/" + id
}

// Module binds a descriptor to the accessor that reads its records.
type Module struct {
	Descriptor
	Accessor Accessor
}

// Registry is the static module table built at startup. It is read-only
// afterwards.
type Registry struct {
	modules []Module
	byKey   map[string]int
}

// NewRegistry validates the modules and keeps them in the given order. A
// module without an accessor is kept: the aggregators report it as failed.
func NewRegistry(mods ...Module) (*Registry, error) {
	r := &Registry{byKey: make(map[string]int, len(mods))}
	for _, m := range mods {
		if err := m.Descriptor.Validate(); err != nil {
			return nil, err
		}
		if _, ok := r.byKey[m.Key]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateModule, m.Key)
		}
		r.byKey[m.Key] = len(r.modules)
		r.modules = append(r.modules, m)
	}
	return r, nil
}

// Modules returns a copy of the registered modules.
func (r *Registry) Modules() []Module {
	out := make([]Module, len(r.modules))
	copy(out, r.modules)
	return out
}

func (r *Registry) Get(key string) (Module, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return Module{}, false
	}
	return r.modules[i], true
}

func (r *Registry) Len() int { return len(r.modules) }

// AccessorOf returns the module's accessor or ErrNoAccessor.
func (m Module) AccessorOf() (Accessor, error) {
	if m.Accessor == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoAccessor, m.Key)
	}
	return m.Accessor, nil
}

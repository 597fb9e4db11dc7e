// Package workflowconf loads the workflow rules file: who is assigned which
// status, which roles are elevated, the transition table and the module
// registry.
package workflowconf

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/shehrozeikram/ERP-sub009/internal/identity"
	"github.com/shehrozeikram/ERP-sub009/internal/modules"
	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
)

//go:embed schema.json
var schemaJSON []byte

var ErrInvalidRules = errors.New("invalid workflow rules")

type Assignments struct {
	Emails map[string]string `yaml:"emails"`
	Roles  map[string]string `yaml:"roles"`
}

// Rules is the parsed rules file. Empty sections fall back to the built-in
// defaults.
type Rules struct {
	ElevatedRoles []string             `yaml:"elevated_roles"`
	Assignments   *Assignments         `yaml:"assignments"`
	Transitions   map[string][]string  `yaml:"transitions"`
	Modules       []modules.Descriptor `yaml:"modules"`
}

// Load reads and validates path.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse validates data against the rules schema, then checks that every
// status it names is part of the transition vocabulary.
func Parse(data []byte) (*Rules, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	if err := r.check(); err != nil {
		return nil, err
	}
	return &r, nil
}

func validateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(js))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	if !res.Valid() {
		var msgs []string
		for i, e := range res.Errors() {
			if i >= 5 {
				break
			}
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidRules, strings.Join(msgs, "; "))
	}
	return nil
}

func (r *Rules) check() error {
	g := r.Graph()
	if r.Assignments != nil {
		for who, st := range r.Assignments.Emails {
			if st != "" && !g.Known(workflow.Status(st)) {
				return fmt.Errorf("%w: email %s assigned unknown status %q", ErrInvalidRules, who, st)
			}
		}
		for who, st := range r.Assignments.Roles {
			if st != "" && !g.Known(workflow.Status(st)) {
				return fmt.Errorf("%w: role %s assigned unknown status %q", ErrInvalidRules, who, st)
			}
		}
	}
	seen := map[string]struct{}{}
	for i := range r.Modules {
		if err := r.Modules[i].Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRules, err)
		}
		if _, dup := seen[r.Modules[i].Key]; dup {
			return fmt.Errorf("%w: %v: %s", ErrInvalidRules, modules.ErrDuplicateModule, r.Modules[i].Key)
		}
		seen[r.Modules[i].Key] = struct{}{}
	}
	return nil
}

// IdentityConfig builds the resolver configuration.
func (r *Rules) IdentityConfig() identity.Config {
	c := identity.DefaultConfig()
	if len(r.ElevatedRoles) > 0 {
		c.Elevated = append([]string(nil), r.ElevatedRoles...)
	}
	if r.Assignments != nil {
		c.Emails = toStatuses(r.Assignments.Emails)
		c.Roles = toStatuses(r.Assignments.Roles)
	}
	return c
}

func toStatuses(in map[string]string) map[string]workflow.Status {
	out := make(map[string]workflow.Status, len(in))
	for k, v := range in {
		out[k] = workflow.Status(v)
	}
	return out
}

// Graph is the configured transition table, or the default one.
func (r *Rules) Graph() *workflow.Graph {
	if len(r.Transitions) == 0 {
		return workflow.DefaultGraph
	}
	adj := make(map[workflow.Status][]workflow.Status, len(r.Transitions))
	for from, tos := range r.Transitions {
		for _, to := range tos {
			adj[workflow.Status(from)] = append(adj[workflow.Status(from)], workflow.Status(to))
		}
	}
	return workflow.NewGraph(adj)
}

// Descriptors returns the configured modules, or fallback when the file
// lists none.
func (r *Rules) Descriptors(fallback []modules.Descriptor) []modules.Descriptor {
	if len(r.Modules) == 0 {
		return fallback
	}
	return append([]modules.Descriptor(nil), r.Modules...)
}

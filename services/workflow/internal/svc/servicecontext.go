package svc

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/gorm"

	"github.com/shehrozeikram/ERP-sub009/internal/audit/chain"
	"github.com/shehrozeikram/ERP-sub009/internal/auth/rbac"
	"github.com/shehrozeikram/ERP-sub009/internal/cache"
	"github.com/shehrozeikram/ERP-sub009/internal/db"
	"github.com/shehrozeikram/ERP-sub009/internal/events"
	"github.com/shehrozeikram/ERP-sub009/internal/identity"
	"github.com/shehrozeikram/ERP-sub009/internal/modules"
	documentsgorm "github.com/shehrozeikram/ERP-sub009/internal/repo/gorm/documents"
	usersgorm "github.com/shehrozeikram/ERP-sub009/internal/repo/gorm/users"
	"github.com/shehrozeikram/ERP-sub009/internal/tasks"
	"github.com/shehrozeikram/ERP-sub009/internal/transition"
	"github.com/shehrozeikram/ERP-sub009/internal/workflowconf"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/config"
)

const (
	StoreSQL    = "sql"
	StoreMemory = "memory"
)

type ServiceContext struct {
	Config config.Config

	DB          *gorm.DB
	Users       *usersgorm.Repo
	Registry    *modules.Registry
	Resolver    *identity.Resolver
	Aggregator  *tasks.Aggregator
	Transitions *transition.Service
	Publisher   events.Publisher
	StatsCache  cache.StatsCache

	// Stores is set when the service keeps documents in memory.
	Stores map[string]*modules.MemStore

	authenticator Authenticator
	authorizer    Authorizer
}

// NewServiceContext builds the context or exits.
func NewServiceContext(c config.Config) *ServiceContext {
	ctx, err := Build(c)
	logx.Must(err)
	return ctx
}

// Build wires storage, rules, aggregation, transitions and auth from c.
func Build(c config.Config) (*ServiceContext, error) {
	rules := &workflowconf.Rules{}
	if p := strings.TrimSpace(c.Workflow.RulesPath); p != "" {
		loaded, err := workflowconf.Load(p)
		if err != nil {
			return nil, fmt.Errorf("load workflow rules: %w", err)
		}
		rules = loaded
	}
	descs := rules.Descriptors(documentsgorm.DefaultDescriptors())

	s := &ServiceContext{Config: c}
	mods, err := s.buildModules(c, descs)
	if err != nil {
		return nil, err
	}
	s.Registry, err = modules.NewRegistry(mods...)
	if err != nil {
		return nil, err
	}
	s.Resolver = identity.NewResolver(rules.IdentityConfig())
	s.Aggregator = tasks.NewAggregator(s.Registry, s.Resolver,
		tasks.WithFetchLimit(c.Workflow.FetchLimit),
		tasks.WithConcurrency(c.Workflow.Concurrency))

	s.StatsCache, err = cache.New(c.StatsCache)
	if err != nil {
		return nil, err
	}
	s.Publisher, err = newPublisher(c)
	if err != nil {
		return nil, err
	}
	s.Transitions = transition.NewService(s.Registry, s.Resolver,
		transition.WithGraph(rules.Graph()),
		transition.WithPublisher(s.Publisher),
		transition.WithInvalidator(s.StatsCache))

	if err := s.initAuth(c.Auth); err != nil {
		return nil, err
	}
	logx.Infof("workflow service: %d modules, store=%s, events=%s", s.Registry.Len(), storeKind(c), c.Events.Type)
	return s, nil
}

func newPublisher(c config.Config) (events.Publisher, error) {
	pub := events.New(c.Events)
	path := strings.TrimSpace(c.Workflow.AuditLog)
	if path == "" {
		return pub, nil
	}
	w, err := chain.NewWriter(path)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return events.Fanout{w, pub}, nil
}

func storeKind(c config.Config) string {
	if strings.EqualFold(c.Workflow.Store, StoreMemory) {
		return StoreMemory
	}
	return StoreSQL
}

func (s *ServiceContext) buildModules(c config.Config, descs []modules.Descriptor) ([]modules.Module, error) {
	mods := make([]modules.Module, 0, len(descs))
	if storeKind(c) == StoreMemory {
		s.Stores = make(map[string]*modules.MemStore, len(descs))
		for _, d := range descs {
			st := modules.NewMemStore()
			s.Stores[d.Key] = st
			mods = append(mods, modules.Module{Descriptor: d, Accessor: st})
		}
		return mods, nil
	}

	gdb, err := db.Open(c.Database.DataSource)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if c.Database.AutoMigrate {
		if err := documentsgorm.AutoMigrate(gdb); err != nil {
			return nil, fmt.Errorf("migrate documents: %w", err)
		}
		if err := usersgorm.AutoMigrate(gdb); err != nil {
			return nil, fmt.Errorf("migrate users: %w", err)
		}
	}
	s.DB = gdb
	s.Users = usersgorm.New(gdb)
	for _, d := range descs {
		acc, err := documentsgorm.New(gdb, d, s.Users)
		if err != nil {
			// the module stays registered and is reported as failed
			logx.Errorf("module %s: %v", d.Key, err)
			mods = append(mods, modules.Module{Descriptor: d})
			continue
		}
		mods = append(mods, modules.Module{Descriptor: d, Accessor: acc})
	}
	return mods, nil
}

func (s *ServiceContext) initAuth(c config.AuthConfig) error {
	policy, err := rbac.Load(strings.TrimSpace(c.RBACModel), strings.TrimSpace(c.RBACPolicy))
	if err != nil {
		return fmt.Errorf("load rbac policy: %w", err)
	}
	s.authorizer = policy
	if c.DevMode {
		logx.Infof("auth dev mode: every request runs as %s", devCaller.Email)
		s.authenticator = devAuthenticator{}
		return nil
	}
	auth, err := newJWTAuthenticator(c.JWTSecret)
	if err != nil {
		return err
	}
	s.authenticator = auth
	return nil
}

// Authenticate validates the incoming request and returns its caller.
func (s *ServiceContext) Authenticate(r *http.Request) (identity.Caller, bool) {
	if s.authenticator == nil {
		return identity.Caller{}, false
	}
	return s.authenticator.Authenticate(r)
}

// EnforcePermission checks whether the caller holds perm.
func (s *ServiceContext) EnforcePermission(c identity.Caller, perm string) bool {
	if strings.TrimSpace(perm) == "" {
		return true
	}
	if s.authorizer == nil {
		return false
	}
	return s.authorizer.Can(c.ID, []string{c.Role}, perm)
}

// Close releases the publisher and the database.
func (s *ServiceContext) Close() error {
	var errs []error
	if s.Publisher != nil {
		errs = append(errs, s.Publisher.Close())
	}
	if c, ok := s.StatsCache.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

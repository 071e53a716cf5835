package searchcore

import (
	"fmt"

	"github.com/goliatone/go-searchcore/adapters/gocommand"
	searchcommand "github.com/goliatone/go-searchcore/command"
	"github.com/goliatone/go-searchcore/core"
	"github.com/goliatone/go-searchcore/engine"
	searchquery "github.com/goliatone/go-searchcore/query"
)

// ResolutionService is the part of *Service the facade needs.
type ResolutionService interface {
	searchquery.ConnectionResolver
	searchcommand.MutationGuard
}

type Commands struct {
	WarmDirectory *searchcommand.WarmDirectoryCommand
	SetOverride   *searchcommand.SetOverrideCommand
	ClearOverride *searchcommand.ClearOverrideCommand
	GuardMutation *searchcommand.GuardMutationCommand
}

type Queries struct {
	ResolveConnection *searchquery.ResolveConnectionQuery
	LoadOverride      *searchquery.LoadOverrideQuery
	ListCores         *searchquery.ListCoresQuery
	GetKeys           *searchquery.GetKeysQuery
}

type Facade struct {
	service  ResolutionService
	deps     facadeOptions
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	directory core.DirectoryLister
	keys      core.KeyLister
	warmer    core.DirectoryWarmer
	overrides core.OverrideStore
}

// WithDirectoryClient exposes a directory client on the facade. It fills
// the key and warm handlers when the client also implements them.
func WithDirectoryClient(directory core.DirectoryLister) FacadeOption {
	return func(options *facadeOptions) {
		options.directory = directory
	}
}

func WithKeyLister(keys core.KeyLister) FacadeOption {
	return func(options *facadeOptions) {
		options.keys = keys
	}
}

func WithDirectoryWarmer(warmer core.DirectoryWarmer) FacadeOption {
	return func(options *facadeOptions) {
		options.warmer = warmer
	}
}

func WithOverrideStore(store core.OverrideStore) FacadeOption {
	return func(options *facadeOptions) {
		options.overrides = store
	}
}

// NewFacade wires command and query handlers around a resolution service.
// Dependencies not passed as options are taken from the service when it
// exposes them; handlers without a dependency report it on first use.
func NewFacade(service ResolutionService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("searchcore: resolution service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	resolveFacadeDependencies(service, &cfg)

	facade := &Facade{service: service, deps: cfg}
	facade.commands = Commands{
		WarmDirectory: searchcommand.NewWarmDirectoryCommand(cfg.warmer),
		SetOverride:   searchcommand.NewSetOverrideCommand(cfg.overrides),
		ClearOverride: searchcommand.NewClearOverrideCommand(cfg.overrides),
		GuardMutation: searchcommand.NewGuardMutationCommand(service),
	}
	facade.queries = Queries{
		ResolveConnection: searchquery.NewResolveConnectionQuery(service),
		LoadOverride:      searchquery.NewLoadOverrideQuery(overrideSource(cfg.overrides)),
		ListCores:         searchquery.NewListCoresQuery(cfg.directory),
		GetKeys:           searchquery.NewGetKeysQuery(cfg.keys),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() ResolutionService {
	if f == nil {
		return nil
	}
	return f.service
}

// Handlers lists the facade dependencies for registration on a go-command
// bus. Missing dependencies stay nil so the bus skips their handlers.
func (f *Facade) Handlers() gocommand.Handlers {
	if f == nil || f.service == nil {
		return gocommand.Handlers{}
	}
	return gocommand.Handlers{
		Resolver:  f.service,
		Guard:     f.service,
		Warmer:    f.deps.warmer,
		Directory: f.deps.directory,
		Keys:      f.deps.keys,
		Overrides: f.deps.overrides,
	}
}

// GuardUpdater wraps a query-engine updater so every write first resolves
// the current decision and passes the read-only gate of this facade.
func (f *Facade) GuardUpdater(next engine.Updater) (*engine.GuardedUpdater, error) {
	if f == nil || f.service == nil {
		return nil, fmt.Errorf("searchcore: facade is not configured")
	}
	return engine.NewGuardedUpdater(next, engine.ResolvedDecision(f.service), engine.WithGuard(f.service))
}

func resolveFacadeDependencies(service ResolutionService, cfg *facadeOptions) {
	provider, ok := service.(interface {
		Dependencies() core.ServiceDependencies
	})
	if ok {
		deps := provider.Dependencies()
		if cfg.directory == nil {
			cfg.directory = deps.Directory
		}
		if cfg.overrides == nil {
			if store, ok := deps.OverrideSource.(core.OverrideStore); ok {
				cfg.overrides = store
			}
		}
	}
	if cfg.keys == nil {
		if keys, ok := cfg.directory.(core.KeyLister); ok {
			cfg.keys = keys
		}
	}
	if cfg.warmer == nil {
		if warmer, ok := cfg.directory.(core.DirectoryWarmer); ok {
			cfg.warmer = warmer
		}
	}
}

// overrideSource keeps a nil store a nil interface.
func overrideSource(store core.OverrideStore) core.OverrideSource {
	if store == nil {
		return nil
	}
	return store
}

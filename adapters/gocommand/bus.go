// Package gocommand exposes the searchcore commands and queries on the
// go-command dispatcher.
package gocommand

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	searchcommand "github.com/goliatone/go-searchcore/command"
	"github.com/goliatone/go-searchcore/core"
	searchquery "github.com/goliatone/go-searchcore/query"
)

// QueueResolverKey is the registry resolver that mirrors commands into a
// go-job queue registry.
const QueueResolverKey = "queue"

// Handlers lists the searchcore dependencies to expose. Nil fields skip the
// handlers that need them.
type Handlers struct {
	Resolver  searchquery.ConnectionResolver
	Guard     searchcommand.MutationGuard
	Warmer    core.DirectoryWarmer
	Directory core.DirectoryLister
	Keys      core.KeyLister
	Overrides core.OverrideStore
}

type BusOption func(*Bus)

// WithRunnerOptions applies go-command runner options (timeouts, retries)
// to every subscription.
func WithRunnerOptions(opts ...runner.Option) BusOption {
	return func(b *Bus) {
		b.runnerOpts = append(b.runnerOpts, opts...)
	}
}

// Bus owns the registry entries and dispatcher subscriptions for one
// searchcore instance. The dispatcher is process global, so Close must be
// called before a second Bus registers the same message types.
type Bus struct {
	mu         sync.Mutex
	registry   *command.Registry
	runnerOpts []runner.Option
	subs       []commanddispatcher.Subscription
}

func NewBus(registry *command.Registry, opts ...BusOption) *Bus {
	if registry == nil {
		registry = command.NewRegistry()
	}
	bus := &Bus{registry: registry}
	for _, opt := range opts {
		if opt != nil {
			opt(bus)
		}
	}
	return bus
}

func (b *Bus) Registry() *command.Registry {
	if b == nil {
		return nil
	}
	return b.registry
}

func (b *Bus) HasResolver(key string) bool {
	if b == nil || b.registry == nil {
		return false
	}
	return b.registry.HasResolver(strings.TrimSpace(key))
}

// MirrorToQueue makes every registered command runnable from go-job
// workers once Start has run.
func (b *Bus) MirrorToQueue(queueRegistry *jobqueuecommand.Registry) error {
	if b == nil || b.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	if b.registry.HasResolver(QueueResolverKey) {
		return nil
	}
	return b.registry.AddResolver(QueueResolverKey, jobqueuecommand.QueueResolver(queueRegistry))
}

// Register subscribes every handler whose dependency is present. On error
// the subscriptions made by this call are released.
func (b *Bus) Register(handlers Handlers) error {
	if b == nil || b.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var added []commanddispatcher.Subscription
	add := func(sub commanddispatcher.Subscription, err error) error {
		if err != nil {
			unsubscribeAll(added)
			return err
		}
		added = append(added, sub)
		return nil
	}

	steps := []func() error{}
	if handlers.Resolver != nil {
		steps = append(steps, func() error {
			return add(subscribeQuery(b, searchquery.NewResolveConnectionQuery(handlers.Resolver)))
		})
	}
	if handlers.Guard != nil {
		steps = append(steps, func() error {
			return add(subscribeCommand(b, searchcommand.NewGuardMutationCommand(handlers.Guard)))
		})
	}
	if handlers.Warmer != nil {
		steps = append(steps, func() error {
			return add(subscribeCommand(b, searchcommand.NewWarmDirectoryCommand(handlers.Warmer)))
		})
	}
	if handlers.Directory != nil {
		steps = append(steps, func() error {
			return add(subscribeQuery(b, searchquery.NewListCoresQuery(handlers.Directory)))
		})
	}
	if handlers.Keys != nil {
		steps = append(steps, func() error {
			return add(subscribeQuery(b, searchquery.NewGetKeysQuery(handlers.Keys)))
		})
	}
	if handlers.Overrides != nil {
		steps = append(steps,
			func() error {
				return add(subscribeCommand(b, searchcommand.NewSetOverrideCommand(handlers.Overrides)))
			},
			func() error {
				return add(subscribeCommand(b, searchcommand.NewClearOverrideCommand(handlers.Overrides)))
			},
			func() error {
				return add(subscribeQuery(b, searchquery.NewLoadOverrideQuery(handlers.Overrides)))
			},
		)
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	b.subs = append(b.subs, added...)
	return nil
}

// Start initializes the registry, running resolvers such as the queue mirror.
func (b *Bus) Start() error {
	if b == nil || b.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return b.registry.Initialize()
}

// Subscriptions reports how many handlers are live.
func (b *Bus) Subscriptions() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()
	unsubscribeAll(subs)
}

func subscribeCommand[T any](b *Bus, cmd command.Commander[T]) (commanddispatcher.Subscription, error) {
	if err := checkMessageType[T](); err != nil {
		return nil, err
	}
	sub := commanddispatcher.SubscribeCommand(cmd, b.runnerOpts...)
	if err := b.registry.RegisterCommand(cmd); err != nil {
		if sub != nil {
			sub.Unsubscribe()
		}
		return nil, fmt.Errorf("gocommand: register command: %w", err)
	}
	return sub, nil
}

func subscribeQuery[T any, R any](b *Bus, qry command.Querier[T, R]) (commanddispatcher.Subscription, error) {
	if err := checkMessageType[T](); err != nil {
		return nil, err
	}
	sub := commanddispatcher.SubscribeQuery(qry, b.runnerOpts...)
	if err := b.registry.RegisterCommand(qry); err != nil {
		if sub != nil {
			sub.Unsubscribe()
		}
		return nil, fmt.Errorf("gocommand: register query: %w", err)
	}
	return sub, nil
}

func checkMessageType[T any]() error {
	var zero T
	msg, ok := any(zero).(command.Message)
	if !ok || strings.TrimSpace(msg.Type()) == "" {
		return fmt.Errorf("gocommand: %T must declare a message type", zero)
	}
	return nil
}

func unsubscribeAll(subs []commanddispatcher.Subscription) {
	for _, sub := range subs {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
}

// WarmDirectory dispatches a warm for one network.
func WarmDirectory(ctx context.Context, networkID string) error {
	return commanddispatcher.Dispatch(ctx, searchcommand.WarmDirectoryMessage{NetworkID: networkID})
}

// GuardMutation asks the subscribed gate whether op may run under decision.
func GuardMutation(ctx context.Context, decision core.ConnectionDecision, op core.MutationKind) error {
	return commanddispatcher.Dispatch(ctx, searchcommand.GuardMutationMessage{Decision: decision, Operation: op})
}

func SetOverride(ctx context.Context, override core.OverrideConfig) error {
	return commanddispatcher.Dispatch(ctx, searchcommand.SetOverrideMessage{Override: override})
}

func ClearOverride(ctx context.Context) error {
	return commanddispatcher.Dispatch(ctx, searchcommand.ClearOverrideMessage{})
}

func ResolveConnection(ctx context.Context) (core.Resolution, error) {
	return commanddispatcher.Query[searchquery.ResolveConnectionMessage, core.Resolution](ctx, searchquery.ResolveConnectionMessage{})
}

func LoadOverride(ctx context.Context) (searchquery.OverrideStatus, error) {
	return commanddispatcher.Query[searchquery.LoadOverrideMessage, searchquery.OverrideStatus](ctx, searchquery.LoadOverrideMessage{})
}

func ListCores(ctx context.Context, networkID string) ([]core.CoreDescriptor, error) {
	return commanddispatcher.Query[searchquery.ListCoresMessage, []core.CoreDescriptor](ctx, searchquery.ListCoresMessage{NetworkID: networkID})
}

func GetKeys(ctx context.Context, networkID string, coreID string) (core.KeySet, error) {
	return commanddispatcher.Query[searchquery.GetKeysMessage, core.KeySet](ctx, searchquery.GetKeysMessage{NetworkID: networkID, CoreID: coreID})
}

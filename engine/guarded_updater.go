package engine

import (
	"context"
	"fmt"

	"github.com/goliatone/go-searchcore/core"
)

// Document is one index document as handed to the query engine.
type Document map[string]any

// Updater is the mutating surface of the external query engine.
type Updater interface {
	Update(ctx context.Context, docs []Document) error
	Delete(ctx context.Context, ids []string) error
	Commit(ctx context.Context) error
}

// Guard decides whether a mutation may proceed. *core.Service satisfies it
// and records rejections.
type Guard interface {
	BeforeMutation(ctx context.Context, decision core.ConnectionDecision, op core.MutationKind) error
}

// DecisionSource yields the decision in force for the next mutation.
type DecisionSource interface {
	Decision(ctx context.Context) (core.ConnectionDecision, error)
}

type DecisionSourceFunc func(ctx context.Context) (core.ConnectionDecision, error)

func (f DecisionSourceFunc) Decision(ctx context.Context) (core.ConnectionDecision, error) {
	return f(ctx)
}

// StaticDecision always reports the same decision.
func StaticDecision(decision core.ConnectionDecision) DecisionSource {
	return DecisionSourceFunc(func(context.Context) (core.ConnectionDecision, error) {
		return decision, nil
	})
}

// ResolvedDecision re-runs the resolution pipeline for every mutation.
func ResolvedDecision(resolver interface {
	Resolve(ctx context.Context) (core.Resolution, error)
}) DecisionSource {
	return DecisionSourceFunc(func(ctx context.Context) (core.ConnectionDecision, error) {
		resolution, err := resolver.Resolve(ctx)
		if err != nil {
			return core.ConnectionDecision{}, err
		}
		return resolution.Decision, nil
	})
}

type gateGuard struct {
	gate core.ReadOnlyGate
}

func (g gateGuard) BeforeMutation(_ context.Context, decision core.ConnectionDecision, op core.MutationKind) error {
	return g.gate.BeforeMutation(decision, op)
}

type Option func(*GuardedUpdater)

// WithGuard replaces the bare read-only gate.
func WithGuard(guard Guard) Option {
	return func(u *GuardedUpdater) {
		if guard != nil {
			u.guard = guard
		}
	}
}

// GuardedUpdater wraps an Updater. A rejected or undecidable mutation never
// reaches the wrapped updater.
type GuardedUpdater struct {
	next      Updater
	decisions DecisionSource
	guard     Guard
}

func NewGuardedUpdater(next Updater, decisions DecisionSource, opts ...Option) (*GuardedUpdater, error) {
	if next == nil {
		return nil, fmt.Errorf("engine: updater is required")
	}
	if decisions == nil {
		return nil, fmt.Errorf("engine: decision source is required")
	}
	updater := &GuardedUpdater{
		next:      next,
		decisions: decisions,
		guard:     gateGuard{gate: core.NewReadOnlyGate()},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(updater)
	}
	return updater, nil
}

func (u *GuardedUpdater) Update(ctx context.Context, docs []Document) error {
	if err := u.check(ctx, core.MutationUpdate); err != nil {
		return err
	}
	return u.next.Update(ctx, docs)
}

func (u *GuardedUpdater) Delete(ctx context.Context, ids []string) error {
	if err := u.check(ctx, core.MutationDelete); err != nil {
		return err
	}
	return u.next.Delete(ctx, ids)
}

func (u *GuardedUpdater) Commit(ctx context.Context) error {
	if err := u.check(ctx, core.MutationCommit); err != nil {
		return err
	}
	return u.next.Commit(ctx)
}

// check fails closed: a decision source error blocks the write.
func (u *GuardedUpdater) check(ctx context.Context, op core.MutationKind) error {
	if u == nil || u.next == nil || u.decisions == nil || u.guard == nil {
		return fmt.Errorf("engine: guarded updater is not configured")
	}
	decision, err := u.decisions.Decision(ctx)
	if err != nil {
		return fmt.Errorf("engine: resolve decision before %s: %w", op, err)
	}
	return u.guard.BeforeMutation(ctx, decision, op)
}

var (
	_ Updater = (*GuardedUpdater)(nil)
	_ Guard   = (*core.Service)(nil)
)

package command

import (
	"context"
	"strings"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-searchcore/core"
)

type MutationGuard interface {
	BeforeMutation(ctx context.Context, decision core.ConnectionDecision, op core.MutationKind) error
}

type WarmDirectoryCommand struct {
	warmer core.DirectoryWarmer
}

func NewWarmDirectoryCommand(warmer core.DirectoryWarmer) *WarmDirectoryCommand {
	return &WarmDirectoryCommand{warmer: warmer}
}

func (c *WarmDirectoryCommand) Execute(ctx context.Context, msg WarmDirectoryMessage) error {
	if c == nil || c.warmer == nil {
		return commandDependencyError("command: directory warmer is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return c.warmer.Warm(ctx, strings.TrimSpace(msg.NetworkID))
}

type SetOverrideCommand struct {
	store core.OverrideStore
}

func NewSetOverrideCommand(store core.OverrideStore) *SetOverrideCommand {
	return &SetOverrideCommand{store: store}
}

func (c *SetOverrideCommand) Execute(ctx context.Context, msg SetOverrideMessage) error {
	if c == nil || c.store == nil {
		return commandDependencyError("command: override store is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	override := msg.Override.Clone()
	if err := c.store.SetOverride(ctx, override); err != nil {
		return commandStoreError(err)
	}
	storeResult(ctx, override)
	return nil
}

type ClearOverrideCommand struct {
	store core.OverrideStore
}

func NewClearOverrideCommand(store core.OverrideStore) *ClearOverrideCommand {
	return &ClearOverrideCommand{store: store}
}

func (c *ClearOverrideCommand) Execute(ctx context.Context, _ ClearOverrideMessage) error {
	if c == nil || c.store == nil {
		return commandDependencyError("command: override store is required")
	}
	if err := c.store.ClearOverride(ctx); err != nil {
		return commandStoreError(err)
	}
	return nil
}

type GuardMutationCommand struct {
	guard MutationGuard
}

func NewGuardMutationCommand(guard MutationGuard) *GuardMutationCommand {
	return &GuardMutationCommand{guard: guard}
}

// Execute returns the gate rejection unchanged so callers can match
// core.ErrMutationRejected.
func (c *GuardMutationCommand) Execute(ctx context.Context, msg GuardMutationMessage) error {
	if c == nil || c.guard == nil {
		return commandDependencyError("command: mutation guard is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return c.guard.BeforeMutation(ctx, msg.Decision, msg.Operation)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}

package command

import (
	"strings"

	"github.com/goliatone/go-searchcore/core"
)

const (
	TypeWarmDirectory = "searchcore.command.directory.warm"
	TypeSetOverride   = "searchcore.command.override.set"
	TypeClearOverride = "searchcore.command.override.clear"
	TypeGuardMutation = "searchcore.command.mutation.guard"
)

// WarmDirectoryMessage refetches the core listing for a network and replaces
// the cached snapshot.
type WarmDirectoryMessage struct {
	NetworkID string
}

func (WarmDirectoryMessage) Type() string { return TypeWarmDirectory }

func (m WarmDirectoryMessage) Validate() error {
	if strings.TrimSpace(m.NetworkID) == "" {
		return commandValidationError("network_id", "network id is required")
	}
	return nil
}

type SetOverrideMessage struct {
	Override core.OverrideConfig
}

func (SetOverrideMessage) Type() string { return TypeSetOverride }

func (m SetOverrideMessage) Validate() error {
	if err := m.Override.Validate(); err != nil {
		return commandWrapValidation(err, "command: invalid override")
	}
	return nil
}

type ClearOverrideMessage struct{}

func (ClearOverrideMessage) Type() string { return TypeClearOverride }

func (ClearOverrideMessage) Validate() error { return nil }

// GuardMutationMessage asks whether a write of the given kind may proceed
// under the current decision.
type GuardMutationMessage struct {
	Decision  core.ConnectionDecision
	Operation core.MutationKind
}

func (GuardMutationMessage) Type() string { return TypeGuardMutation }

func (m GuardMutationMessage) Validate() error {
	if err := m.Decision.Kind.Validate(); err != nil {
		return commandValidationError("decision", err.Error())
	}
	if err := m.Operation.Validate(); err != nil {
		return commandValidationError("operation", err.Error())
	}
	return nil
}

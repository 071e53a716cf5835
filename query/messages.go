package query

import (
	"strings"

	"github.com/goliatone/go-searchcore/core"
)

const (
	TypeResolveConnection = "searchcore.query.connection.resolve"
	TypeLoadOverride      = "searchcore.query.override.load"
	TypeListCores         = "searchcore.query.directory.cores"
	TypeGetKeys           = "searchcore.query.directory.keys"
)

type ResolveConnectionMessage struct{}

func (ResolveConnectionMessage) Type() string { return TypeResolveConnection }

func (ResolveConnectionMessage) Validate() error { return nil }

type LoadOverrideMessage struct{}

func (LoadOverrideMessage) Type() string { return TypeLoadOverride }

func (LoadOverrideMessage) Validate() error { return nil }

type ListCoresMessage struct {
	NetworkID string
}

func (ListCoresMessage) Type() string { return TypeListCores }

func (m ListCoresMessage) Validate() error {
	if strings.TrimSpace(m.NetworkID) == "" {
		return queryValidationError("network_id", "network id is required")
	}
	return nil
}

type GetKeysMessage struct {
	NetworkID string
	CoreID    string
}

func (GetKeysMessage) Type() string { return TypeGetKeys }

func (m GetKeysMessage) Validate() error {
	if strings.TrimSpace(m.NetworkID) == "" {
		return queryValidationError("network_id", "network id is required")
	}
	if strings.TrimSpace(m.CoreID) == "" {
		return queryValidationError("core_id", "core id is required")
	}
	return nil
}

// OverrideStatus reports the stored operator override, if any.
type OverrideStatus struct {
	Present  bool
	Override core.OverrideConfig
}

package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-searchcore/core"
)

var (
	_ gocmd.Querier[ResolveConnectionMessage, core.Resolution] = (*ResolveConnectionQuery)(nil)
	_ gocmd.Querier[LoadOverrideMessage, OverrideStatus]       = (*LoadOverrideQuery)(nil)
	_ gocmd.Querier[ListCoresMessage, []core.CoreDescriptor]   = (*ListCoresQuery)(nil)
	_ gocmd.Querier[GetKeysMessage, core.KeySet]               = (*GetKeysQuery)(nil)
	_ ConnectionResolver                                       = (*core.Service)(nil)
)

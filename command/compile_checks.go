package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-searchcore/core"
)

var (
	_ gocmd.Commander[WarmDirectoryMessage] = (*WarmDirectoryCommand)(nil)
	_ gocmd.Commander[SetOverrideMessage]   = (*SetOverrideCommand)(nil)
	_ gocmd.Commander[ClearOverrideMessage] = (*ClearOverrideCommand)(nil)
	_ gocmd.Commander[GuardMutationMessage] = (*GuardMutationCommand)(nil)
	_ MutationGuard                         = (*core.Service)(nil)
)

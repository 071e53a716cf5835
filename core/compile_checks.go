package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ ResolutionService = (*Service)(nil)
	_ DirectoryLister   = emptyDirectory{}
	_ SignalsReader     = SignalsReaderFunc(nil)
	_ error             = (*MutationRejectedError)(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)

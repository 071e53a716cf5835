package sqlstore

import "github.com/goliatone/go-searchcore/core"

var (
	_ core.OverrideStore = (*OverrideStore)(nil)
	_ core.OverrideStore = (*CachedOverrideStore)(nil)
	_ namedOverrideStore = (*OverrideStore)(nil)
)

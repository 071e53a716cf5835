package sqlstore

import (
	"time"

	"github.com/goliatone/go-searchcore/core"
	"github.com/uptrace/bun"
)

type overrideRecord struct {
	bun.BaseModel `bun:"table:search_core_overrides,alias:sco"`

	ID        string            `bun:"id,pk"`
	Name      string            `bun:"name,notnull"`
	Host      string            `bun:"host,notnull"`
	Path      string            `bun:"path,notnull"`
	Port      int               `bun:"port,notnull"`
	Scheme    string            `bun:"scheme,notnull"`
	IndexID   string            `bun:"index_id,notnull"`
	Options   map[string]string `bun:"options,type:jsonb,notnull"`
	CreatedAt time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time         `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *overrideRecord) apply(override core.OverrideConfig) {
	r.Host = override.Host
	r.Path = override.Path
	r.Port = override.Port
	r.Scheme = override.Scheme
	r.IndexID = override.IndexID
	r.Options = copyStringMap(override.Options)
}

func (r *overrideRecord) toDomain() core.OverrideConfig {
	if r == nil {
		return core.OverrideConfig{}
	}
	override := core.OverrideConfig{
		Host:    r.Host,
		Path:    r.Path,
		Port:    r.Port,
		Scheme:  r.Scheme,
		IndexID: r.IndexID,
	}
	if len(r.Options) > 0 {
		override.Options = copyStringMap(r.Options)
	}
	return override
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

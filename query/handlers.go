package query

import (
	"context"
	"strings"

	"github.com/goliatone/go-searchcore/core"
)

type ConnectionResolver interface {
	Resolve(ctx context.Context) (core.Resolution, error)
}

type ResolveConnectionQuery struct {
	resolver ConnectionResolver
}

func NewResolveConnectionQuery(resolver ConnectionResolver) *ResolveConnectionQuery {
	return &ResolveConnectionQuery{resolver: resolver}
}

func (q *ResolveConnectionQuery) Query(ctx context.Context, _ ResolveConnectionMessage) (core.Resolution, error) {
	if q == nil || q.resolver == nil {
		return core.Resolution{}, queryDependencyError("query: connection resolver is required")
	}
	return q.resolver.Resolve(ctx)
}

type LoadOverrideQuery struct {
	source core.OverrideSource
}

func NewLoadOverrideQuery(source core.OverrideSource) *LoadOverrideQuery {
	return &LoadOverrideQuery{source: source}
}

func (q *LoadOverrideQuery) Query(ctx context.Context, _ LoadOverrideMessage) (OverrideStatus, error) {
	if q == nil || q.source == nil {
		return OverrideStatus{}, queryDependencyError("query: override source is required")
	}
	override, err := q.source.Override(ctx)
	if err != nil {
		return OverrideStatus{}, queryStoreError(err)
	}
	if override == nil || override.IsZero() {
		return OverrideStatus{}, nil
	}
	return OverrideStatus{Present: true, Override: override.Clone()}, nil
}

type ListCoresQuery struct {
	directory core.DirectoryLister
}

func NewListCoresQuery(directory core.DirectoryLister) *ListCoresQuery {
	return &ListCoresQuery{directory: directory}
}

// Query returns an empty listing when the directory is unreachable.
func (q *ListCoresQuery) Query(ctx context.Context, msg ListCoresMessage) ([]core.CoreDescriptor, error) {
	if q == nil || q.directory == nil {
		return nil, queryDependencyError("query: directory lister is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return q.directory.ListCores(ctx, strings.TrimSpace(msg.NetworkID)), nil
}

type GetKeysQuery struct {
	keys core.KeyLister
}

func NewGetKeysQuery(keys core.KeyLister) *GetKeysQuery {
	return &GetKeysQuery{keys: keys}
}

func (q *GetKeysQuery) Query(ctx context.Context, msg GetKeysMessage) (core.KeySet, error) {
	if q == nil || q.keys == nil {
		return core.KeySet{}, queryDependencyError("query: key lister is required")
	}
	if err := msg.Validate(); err != nil {
		return core.KeySet{}, err
	}
	return q.keys.GetKeys(ctx, strings.TrimSpace(msg.CoreID), strings.TrimSpace(msg.NetworkID)), nil
}

package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"

	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-searchcore/core"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type RepositoryFactory struct {
	db *bun.DB

	overrideStore *OverrideStore
	cacheService  repositorycache.CacheService
	overrideOpts  []OverrideStoreOption
}

type FactoryOption func(*RepositoryFactory)

// WithOverrideCache fronts the override store with a cache service.
func WithOverrideCache(service repositorycache.CacheService) FactoryOption {
	return func(f *RepositoryFactory) {
		f.cacheService = service
	}
}

func WithOverrideStoreOptions(opts ...OverrideStoreOption) FactoryOption {
	return func(f *RepositoryFactory) {
		f.overrideOpts = append(f.overrideOpts, opts...)
	}
}

func NewRepositoryFactory(opts ...FactoryOption) *RepositoryFactory {
	factory := &RepositoryFactory{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(factory)
	}
	return factory
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

// BuildStores accepts a *bun.DB or anything exposing DB() *bun.DB.
func (f *RepositoryFactory) BuildStores(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.overrideStore != nil {
		return nil
	}
	store, err := NewOverrideStore(f.db, f.overrideOpts...)
	if err != nil {
		return err
	}
	f.overrideStore = store
	return nil
}

// OverrideStore returns the cached store when a cache service was supplied.
func (f *RepositoryFactory) OverrideStore() core.OverrideStore {
	if f == nil || f.overrideStore == nil {
		return nil
	}
	if f.cacheService == nil {
		return f.overrideStore
	}
	cached, err := NewCachedOverrideStore(f.overrideStore, f.cacheService)
	if err != nil {
		return f.overrideStore
	}
	return cached
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

// Open connects to postgres (lib/pq) or sqlite (mattn/go-sqlite3) and wraps
// the handle with the matching bun dialect.
func Open(driver string, dsn string) (*bun.DB, error) {
	driver = strings.TrimSpace(strings.ToLower(driver))
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlstore: dsn is required")
	}
	switch driver {
	case DriverPostgres, "pg", "postgresql":
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("sqlstore: open postgres: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	case DriverSQLite, "sqlite":
		sqlDB, err := sql.Open(DriverSQLite, dsn)
		if err != nil {
			return nil, fmt.Errorf("sqlstore: open sqlite: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}

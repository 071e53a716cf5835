// Package migrations exposes the embedded override table migrations per SQL
// dialect and applies them through a go-persistence-bun client.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"

	persistence "github.com/goliatone/go-persistence-bun"
	searchcore "github.com/goliatone/go-searchcore"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	DefaultSourceLabel = "go-searchcore"

	baseDir = "data/sql/migrations"
)

// Source is one dialect's migration directory.
type Source struct {
	Dialect string
	Dir     string
	FS      fs.FS
}

// DialectForDriver maps a database/sql driver name to a migration dialect.
func DialectForDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pg", "pgx":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("migrations: no dialect for driver %q", driver)
	}
}

// Sources lists the postgres and sqlite migration sets. An optional root
// replaces the embedded tree; it must hold data/sql/migrations.
func Sources(root ...fs.FS) ([]Source, error) {
	tree := searchcore.GetCoreMigrationsFS()
	if len(root) > 0 && root[0] != nil {
		tree = root[0]
	}
	sources := make([]Source, 0, 2)
	for _, dialect := range []string{DialectPostgres, DialectSQLite} {
		source, err := sourceFor(tree, dialect)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, nil
}

// SourceFor returns the embedded migration set for one dialect.
func SourceFor(dialect string) (Source, error) {
	return sourceFor(searchcore.GetCoreMigrationsFS(), dialect)
}

func sourceFor(tree fs.FS, dialect string) (Source, error) {
	dir := baseDir
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case DialectPostgres:
		dialect = DialectPostgres
	case DialectSQLite:
		dialect = DialectSQLite
		dir = path.Join(baseDir, "sqlite")
	default:
		return Source{}, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
	sub, err := fs.Sub(tree, dir)
	if err != nil {
		return Source{}, fmt.Errorf("migrations: open %s: %w", dir, err)
	}
	ups, err := fs.Glob(sub, "*.up.sql")
	if err != nil {
		return Source{}, fmt.Errorf("migrations: scan %s: %w", dir, err)
	}
	if len(ups) == 0 {
		return Source{}, fmt.Errorf("migrations: %s has no *.up.sql files", dir)
	}
	return Source{Dialect: dialect, Dir: dir, FS: sub}, nil
}

// RegisterFunc hands one dialect's migrations to a host migration runner.
type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type registerOptions struct {
	label    string
	dialects []string
}

type Option func(*registerOptions)

func WithSourceLabel(label string) Option {
	return func(o *registerOptions) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			o.label = trimmed
		}
	}
}

// WithDialects limits registration to the named dialects.
func WithDialects(dialects ...string) Option {
	return func(o *registerOptions) {
		var next []string
		for _, dialect := range dialects {
			dialect = strings.ToLower(strings.TrimSpace(dialect))
			if dialect != "" && !contains(next, dialect) {
				next = append(next, dialect)
			}
		}
		if len(next) > 0 {
			o.dialects = next
		}
	}
}

// Register passes every selected migration set to fn, stopping at the
// first failure. It returns the dialects that were registered.
func Register(ctx context.Context, fn RegisterFunc, opts ...Option) ([]string, error) {
	if fn == nil {
		return nil, fmt.Errorf("migrations: register function is required")
	}
	cfg := registerOptions{
		label:    DefaultSourceLabel,
		dialects: []string{DialectPostgres, DialectSQLite},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	registered := make([]string, 0, len(cfg.dialects))
	for _, dialect := range cfg.dialects {
		source, err := SourceFor(dialect)
		if err != nil {
			return registered, err
		}
		if err := fn(ctx, source.Dialect, cfg.label, source.FS); err != nil {
			return registered, fmt.Errorf("migrations: register %s: %w", source.Dialect, err)
		}
		registered = append(registered, source.Dialect)
	}
	return registered, nil
}

// Apply registers the override migrations for dialect on the persistence
// client and runs them.
func Apply(ctx context.Context, client *persistence.Client, dialect string) error {
	if client == nil {
		return fmt.Errorf("migrations: persistence client is required")
	}
	source, err := SourceFor(dialect)
	if err != nil {
		return err
	}
	client.RegisterSQLMigrations(source.FS)
	if err := client.Migrate(ctx); err != nil {
		return fmt.Errorf("migrations: apply %s: %w", source.Dialect, err)
	}
	return nil
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

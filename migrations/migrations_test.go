package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	searchcore "github.com/goliatone/go-searchcore"
	_ "github.com/mattn/go-sqlite3"
)

func TestSources_ReturnsPostgresAndSQLite(t *testing.T) {
	sources, err := Sources()
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Dialect != DialectPostgres || sources[1].Dialect != DialectSQLite {
		t.Fatalf("unexpected dialect order: %q, %q", sources[0].Dialect, sources[1].Dialect)
	}
	if sources[1].Dir != "data/sql/migrations/sqlite" {
		t.Fatalf("unexpected sqlite dir %q", sources[1].Dir)
	}
	for _, source := range sources {
		if _, err := fs.ReadFile(source.FS, "00001_searchcore_overrides.up.sql"); err != nil {
			t.Fatalf("read %s override migration: %v", source.Dialect, err)
		}
	}
}

func TestSources_RejectsTreeWithoutUpMigrations(t *testing.T) {
	root := fstest.MapFS{
		"data/sql/migrations/README.md":        {Data: []byte("docs")},
		"data/sql/migrations/sqlite/README.md": {Data: []byte("docs")},
	}
	if _, err := Sources(root); err == nil {
		t.Fatalf("expected error for tree without *.up.sql files")
	}
}

func TestSourceFor_UnknownDialect(t *testing.T) {
	if _, err := SourceFor("mysql"); err == nil {
		t.Fatalf("expected unsupported dialect error")
	}
	source, err := SourceFor(" SQLite ")
	if err != nil {
		t.Fatalf("source for sqlite: %v", err)
	}
	if source.Dialect != DialectSQLite {
		t.Fatalf("expected normalized dialect, got %q", source.Dialect)
	}
}

func TestDialectForDriver(t *testing.T) {
	cases := map[string]string{
		"postgres": DialectPostgres,
		"pg":       DialectPostgres,
		"sqlite3":  DialectSQLite,
		" SQLite ": DialectSQLite,
	}
	for driver, want := range cases {
		got, err := DialectForDriver(driver)
		if err != nil {
			t.Fatalf("dialect for %q: %v", driver, err)
		}
		if got != want {
			t.Fatalf("dialect for %q: expected %q, got %q", driver, want, got)
		}
	}
	if _, err := DialectForDriver("oracle"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestRegister_SelectedDialectsWithDefaultLabel(t *testing.T) {
	var calls []string
	registered, err := Register(context.Background(), func(_ context.Context, dialect string, label string, _ fs.FS) error {
		calls = append(calls, dialect+":"+label)
		return nil
	}, WithDialects(DialectSQLite, "sqlite"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(calls) != 1 || calls[0] != DialectSQLite+":"+DefaultSourceLabel {
		t.Fatalf("expected single sqlite registration with default label, got %v", calls)
	}
	if len(registered) != 1 || registered[0] != DialectSQLite {
		t.Fatalf("unexpected registered dialects %v", registered)
	}
}

func TestRegister_CustomLabelAndFailures(t *testing.T) {
	_, err := Register(context.Background(), func(_ context.Context, _ string, label string, _ fs.FS) error {
		if label != "host-app" {
			t.Fatalf("expected custom label, got %q", label)
		}
		return errors.New("boom")
	}, WithSourceLabel(" host-app "), WithDialects(DialectPostgres))
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected register error to surface, got %v", err)
	}

	if _, err := Register(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil register function")
	}
	if _, err := Register(context.Background(), func(context.Context, string, string, fs.FS) error {
		return nil
	}, WithDialects("mysql")); err == nil {
		t.Fatalf("expected unsupported dialect to fail registration")
	}
}

func TestApply_RequiresClient(t *testing.T) {
	if err := Apply(context.Background(), nil, DialectSQLite); err == nil {
		t.Fatalf("expected error for nil persistence client")
	}
}

func TestOverrideMigrationPair_ExistsForBothDialects(t *testing.T) {
	root := searchcore.GetCoreMigrationsFS()
	paths := []string{
		"data/sql/migrations/00001_searchcore_overrides.up.sql",
		"data/sql/migrations/00001_searchcore_overrides.down.sql",
		"data/sql/migrations/sqlite/00001_searchcore_overrides.up.sql",
		"data/sql/migrations/sqlite/00001_searchcore_overrides.down.sql",
	}
	for _, migrationPath := range paths {
		content, err := fs.ReadFile(root, migrationPath)
		if err != nil {
			t.Fatalf("read migration %s: %v", migrationPath, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			t.Fatalf("expected migration %s to have SQL content", migrationPath)
		}
	}
}

func TestSQLiteOverrideMigration_ApplyAndRollback(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:migrations-searchcore-overrides?mode=memory&cache=shared&_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()

	sqliteMigrations, err := fs.Sub(searchcore.GetCoreMigrationsFS(), "data/sql/migrations/sqlite")
	if err != nil {
		t.Fatalf("resolve sqlite migrations: %v", err)
	}

	ctx := context.Background()
	if err := execSQLMigration(ctx, db, sqliteMigrations, "00001_searchcore_overrides.up.sql"); err != nil {
		t.Fatalf("apply up migration: %v", err)
	}

	insert := `INSERT INTO search_core_overrides (id, name, host) VALUES (?, ?, ?)`
	if _, err := db.ExecContext(ctx, insert, "ovr-1", "global", "solr.internal"); err != nil {
		t.Fatalf("insert override: %v", err)
	}
	if _, err := db.ExecContext(ctx, insert, "ovr-2", "global", "other.internal"); err == nil {
		t.Fatalf("expected unique name violation")
	}

	if err := execSQLMigration(ctx, db, sqliteMigrations, "00001_searchcore_overrides.down.sql"); err != nil {
		t.Fatalf("apply down migration: %v", err)
	}
	var count int
	if err := db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`,
		"search_core_overrides",
	).Scan(&count); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected search_core_overrides to be dropped after down migration")
	}
}

func execSQLMigration(ctx context.Context, db *sql.DB, fsys fs.FS, filename string) error {
	content, err := fs.ReadFile(fsys, filepath.Clean(filename))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(content))
	return err
}

package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	kucoinpay "github.com/goliatone/go-kucoinpay"
	_ "github.com/mattn/go-sqlite3"
)

func TestSchemas_ReturnsPairedPostgresAndSQLite(t *testing.T) {
	schemas, err := Schemas()
	if err != nil {
		t.Fatalf("schemas: %v", err)
	}
	if len(schemas) != 2 {
		t.Fatalf("expected 2 schemas, got %d", len(schemas))
	}
	if schemas[0].Dialect != DialectPostgres || schemas[1].Dialect != DialectSQLite {
		t.Fatalf("unexpected dialect order %q, %q", schemas[0].Dialect, schemas[1].Dialect)
	}
	for _, schema := range schemas {
		if len(schema.Versions) != 1 || schema.Versions[0] != "00001_kucoinpay_schema" {
			t.Fatalf("unexpected %s versions %v", schema.Dialect, schema.Versions)
		}
		if _, err := fs.Stat(schema.FS, "00001_kucoinpay_schema.up.sql"); err != nil {
			t.Fatalf("expected %s up migration at schema root: %v", schema.Dialect, err)
		}
	}
}

func TestLoadSchema_RequiresDownPair(t *testing.T) {
	root := fstest.MapFS{
		"schema/00001_init.up.sql":   {Data: []byte("CREATE TABLE kucoin_orders (id TEXT);")},
		"schema/00001_init.down.sql": {Data: []byte("DROP TABLE kucoin_orders;")},
		"schema/00002_more.up.sql":   {Data: []byte("CREATE TABLE kucoin_refunds (id TEXT);")},
	}
	if _, err := loadSchema(root, DialectSQLite, "schema"); err == nil {
		t.Fatalf("expected missing down migration to fail")
	}
	if _, err := loadSchema(fstest.MapFS{"schema/README": {}}, DialectSQLite, "schema"); err == nil {
		t.Fatalf("expected empty schema to fail")
	}
}

func TestRegister_FiltersByDialect(t *testing.T) {
	var calls []string
	err := Register(context.Background(), func(_ context.Context, dialect string, fsys fs.FS) error {
		calls = append(calls, dialect)
		if _, err := fs.Stat(fsys, "00001_kucoinpay_schema.up.sql"); err != nil {
			t.Fatalf("expected schema fs for %s: %v", dialect, err)
		}
		return nil
	}, " SQLite ")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(calls) != 1 || calls[0] != DialectSQLite {
		t.Fatalf("expected only sqlite registration, got %v", calls)
	}

	calls = nil
	if err := Register(context.Background(), func(_ context.Context, dialect string, _ fs.FS) error {
		calls = append(calls, dialect)
		return nil
	}); err != nil {
		t.Fatalf("register all: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected both dialects without a filter, got %v", calls)
	}
}

func TestRegister_RejectsUnknownDialectAndNilFunc(t *testing.T) {
	if err := Register(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil register function")
	}
	noop := func(context.Context, string, fs.FS) error { return nil }
	if err := Register(context.Background(), noop, "mysql"); err == nil {
		t.Fatalf("expected unknown dialect error")
	}
}

func TestSchemaMigrationPair_ExistsForBothDialects(t *testing.T) {
	root := kucoinpay.GetMigrationsFS()
	paths := []string{
		"data/sql/migrations/00001_kucoinpay_schema.up.sql",
		"data/sql/migrations/00001_kucoinpay_schema.down.sql",
		"data/sql/migrations/sqlite/00001_kucoinpay_schema.up.sql",
		"data/sql/migrations/sqlite/00001_kucoinpay_schema.down.sql",
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

func TestSQLiteSchemaMigration_ApplyAndRollback(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:migrations-kucoinpay-schema?mode=memory&cache=shared&_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	sqliteMigrations, err := fs.Sub(kucoinpay.GetMigrationsFS(), "data/sql/migrations/sqlite")
	if err != nil {
		t.Fatalf("resolve sqlite migrations: %v", err)
	}
	ctx := context.Background()

	if err := execSQLMigration(ctx, db, sqliteMigrations, "00001_kucoinpay_schema.up.sql"); err != nil {
		t.Fatalf("apply schema up: %v", err)
	}

	insertDelivery := `INSERT INTO kucoin_webhook_deliveries (id, event_type, delivery_key, status, attempts) VALUES (?, ?, ?, ?, ?)`
	if _, err := db.ExecContext(ctx, insertDelivery, "d1", "TRADE", "key-1", "pending", 1); err != nil {
		t.Fatalf("insert delivery: %v", err)
	}
	if _, err := db.ExecContext(ctx, insertDelivery, "d2", "TRADE", "key-1", "pending", 1); err == nil {
		t.Fatalf("expected unique violation for duplicate delivery key")
	}
	if _, err := db.ExecContext(ctx, insertDelivery, "d3", "REFUND", "key-1", "pending", 1); err != nil {
		t.Fatalf("expected same key under another event type to be accepted: %v", err)
	}

	insertOrder := `INSERT INTO kucoin_orders (id, request_id, status) VALUES (?, ?, ?)`
	if _, err := db.ExecContext(ctx, insertOrder, "o1", nil, "CREATED"); err != nil {
		t.Fatalf("insert order without request id: %v", err)
	}
	if _, err := db.ExecContext(ctx, insertOrder, "o2", nil, "CREATED"); err != nil {
		t.Fatalf("expected null request ids not to collide: %v", err)
	}

	if err := execSQLMigration(ctx, db, sqliteMigrations, "00001_kucoinpay_schema.down.sql"); err != nil {
		t.Fatalf("apply schema down: %v", err)
	}
	var remaining int
	if err := db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name LIKE 'kucoin_%'`,
	).Scan(&remaining); err != nil {
		t.Fatalf("count tables: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected all tables dropped, got %d", remaining)
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

// Package migrations exposes the embedded kucoinpay schema per SQL dialect.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	kucoinpay "github.com/goliatone/go-kucoinpay"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const schemaRoot = "data/sql/migrations"

// DialectSchema is the migration directory for one dialect.
type DialectSchema struct {
	Dialect string
	Path    string
	FS      fs.FS
	// Versions lists the migration names without the .up.sql suffix.
	Versions []string
}

// RegisterFunc receives the schema of each requested dialect, typically
// forwarding it to persistence.Client.RegisterSQLMigrations.
type RegisterFunc func(ctx context.Context, dialect string, fsys fs.FS) error

// Schemas returns the postgres and sqlite schemas. Every up migration must
// have a down pair and both dialects must carry the same versions.
func Schemas() ([]DialectSchema, error) {
	root := kucoinpay.GetMigrationsFS()
	postgres, err := loadSchema(root, DialectPostgres, schemaRoot)
	if err != nil {
		return nil, err
	}
	sqlite, err := loadSchema(root, DialectSQLite, schemaRoot+"/sqlite")
	if err != nil {
		return nil, err
	}
	if !slices.Equal(postgres.Versions, sqlite.Versions) {
		return nil, fmt.Errorf("migrations: postgres versions %v differ from sqlite versions %v",
			postgres.Versions, sqlite.Versions)
	}
	return []DialectSchema{postgres, sqlite}, nil
}

// Register hands the schema of each dialect to registerFn. With no
// dialects, both are registered.
func Register(ctx context.Context, registerFn RegisterFunc, dialects ...string) error {
	if registerFn == nil {
		return fmt.Errorf("migrations: register function is required")
	}
	schemas, err := Schemas()
	if err != nil {
		return err
	}
	wanted := normalizeDialects(dialects)
	for _, dialect := range wanted {
		if !slices.ContainsFunc(schemas, func(s DialectSchema) bool { return s.Dialect == dialect }) {
			return fmt.Errorf("migrations: unknown dialect %q", dialect)
		}
	}
	for _, schema := range schemas {
		if len(wanted) > 0 && !slices.Contains(wanted, schema.Dialect) {
			continue
		}
		if err := registerFn(ctx, schema.Dialect, schema.FS); err != nil {
			return fmt.Errorf("migrations: register %s (%s): %w", schema.Dialect, schema.Path, err)
		}
	}
	return nil
}

func loadSchema(root fs.FS, dialect string, path string) (DialectSchema, error) {
	sub, err := fs.Sub(root, path)
	if err != nil {
		return DialectSchema{}, fmt.Errorf("migrations: resolve %s schema: %w", dialect, err)
	}
	ups, err := fs.Glob(sub, "*.up.sql")
	if err != nil {
		return DialectSchema{}, fmt.Errorf("migrations: glob %s %s: %w", dialect, path, err)
	}
	if len(ups) == 0 {
		return DialectSchema{}, fmt.Errorf("migrations: %s schema %q has no *.up.sql files", dialect, path)
	}
	versions := make([]string, 0, len(ups))
	for _, up := range ups {
		version := strings.TrimSuffix(up, ".up.sql")
		if _, err := fs.Stat(sub, version+".down.sql"); err != nil {
			return DialectSchema{}, fmt.Errorf("migrations: %s migration %s has no down file", dialect, version)
		}
		versions = append(versions, version)
	}
	slices.Sort(versions)
	return DialectSchema{Dialect: dialect, Path: path, FS: sub, Versions: versions}, nil
}

func normalizeDialects(dialects []string) []string {
	out := make([]string, 0, len(dialects))
	for _, dialect := range dialects {
		trimmed := strings.ToLower(strings.TrimSpace(dialect))
		if trimmed != "" && !slices.Contains(out, trimmed) {
			out = append(out, trimmed)
		}
	}
	return out
}

package kucoinpay

import (
	"embed"
	"io/fs"
)

// migrationsFS holds the schema for orders, refunds, payouts, on-chain
// orders, reports and the webhook delivery ledger. SQLite alternatives live
// under data/sql/migrations/sqlite.
//
//go:embed data/sql/migrations/*.sql data/sql/migrations/sqlite/*.sql
var migrationsFS embed.FS

// GetMigrationsFS returns the full embedded migration tree.
func GetMigrationsFS() fs.FS {
	return migrationsFS
}

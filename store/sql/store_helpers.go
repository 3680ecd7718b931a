package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

func newRepository[T identifiedRecord](
	db *bun.DB,
	handlers repository.ModelHandlers[T],
	name string,
) (repository.Repository[T], error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[T](db, handlers)
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid %s repository wiring: %w", name, err)
		}
	}
	return repo, nil
}

type lookupKey struct {
	column string
	value  string
}

// findFirst scans into model the first row matching one of keys, tried in
// order. Blank key values are skipped.
func findFirst(ctx context.Context, db bun.IDB, model any, keys ...lookupKey) (bool, error) {
	for _, key := range keys {
		value := strings.TrimSpace(key.value)
		if value == "" {
			continue
		}
		err := db.NewSelect().
			Model(model).
			Where("?TableAlias.? = ?", bun.Ident(key.column), value).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// runUpsert runs fn in a transaction. A concurrent insert of the same key
// surfaces as a unique violation; the second attempt finds the row and
// updates it.
func runUpsert(ctx context.Context, db *bun.DB, fn func(ctx context.Context, tx bun.Tx) error) error {
	err := db.RunInTx(ctx, nil, fn)
	if err != nil && isUniqueViolation(err) {
		err = db.RunInTx(ctx, nil, fn)
	}
	return err
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}

func setString(target *string, value *string) {
	if value != nil {
		*target = strings.TrimSpace(*value)
	}
}

func setKey(target *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" && strings.TrimSpace(*target) == "" {
		*target = trimmed
	}
}

func setNullDecimal(target *decimal.NullDecimal, value *decimal.Decimal) {
	if value != nil {
		*target = decimal.NullDecimal{Decimal: *value, Valid: true}
	}
}

func setInt64(target **int64, value *int64) {
	if value != nil {
		copied := *value
		*target = &copied
	}
}

func setBool(target **bool, value *bool) {
	if value != nil {
		copied := *value
		*target = &copied
	}
}

func setJSON(target *string, value json.RawMessage) {
	if len(value) > 0 {
		*target = string(value)
	}
}

func decimalPtr(value decimal.NullDecimal) *decimal.Decimal {
	if !value.Valid {
		return nil
	}
	copied := value.Decimal
	return &copied
}

func int64Ptr(value *int64) *int64 {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func boolPtr(value *bool) *bool {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func rawJSON(value string) json.RawMessage {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return json.RawMessage(value)
}

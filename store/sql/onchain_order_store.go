package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-kucoinpay/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type OnchainOrderStore struct {
	db   *bun.DB
	repo repository.Repository[*onchainOrderRecord]
}

func NewOnchainOrderStore(db *bun.DB) (*OnchainOrderStore, error) {
	repo, err := newRepository(db, onchainOrderHandlers(), "onchain order")
	if err != nil {
		return nil, err
	}
	return &OnchainOrderStore{db: db, repo: repo}, nil
}

func (s *OnchainOrderStore) UpsertOnchainOrder(ctx context.Context, in core.OnchainOrderUpsert) (core.OnchainOrder, error) {
	if s == nil || s.db == nil {
		return core.OnchainOrder{}, fmt.Errorf("sqlstore: onchain order store is not configured")
	}
	if strings.TrimSpace(in.Key.RequestID) == "" && strings.TrimSpace(in.Key.PayOrderID) == "" {
		return core.OnchainOrder{}, fmt.Errorf("sqlstore: onchain order key is required")
	}

	var out core.OnchainOrder
	err := runUpsert(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()
		record := &onchainOrderRecord{}
		found, err := findFirst(ctx, tx, record, onchainOrderLookup(in.Key)...)
		if err != nil {
			return err
		}
		if !found {
			if !in.CreateIfMissing || strings.TrimSpace(in.Key.RequestID) == "" {
				return core.ErrRecordNotFound
			}
			record = &onchainOrderRecord{
				ID:        uuid.NewString(),
				Status:    core.OrderStatusCreated,
				CreatedAt: now,
			}
		}
		applyOnchainOrderUpsert(record, in)
		record.UpdatedAt = now
		if !found {
			if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
				return err
			}
		} else if _, err := tx.NewUpdate().Model(record).Where("id = ?", record.ID).Exec(ctx); err != nil {
			return err
		}
		out = record.toDomain()
		return nil
	})
	if err != nil {
		return core.OnchainOrder{}, err
	}
	return out, nil
}

func (s *OnchainOrderStore) GetOnchainOrder(ctx context.Context, key core.OnchainOrderKey) (core.OnchainOrder, error) {
	if s == nil || s.repo == nil {
		return core.OnchainOrder{}, fmt.Errorf("sqlstore: onchain order store is not configured")
	}
	for _, lookup := range onchainOrderLookup(key) {
		if strings.TrimSpace(lookup.value) == "" {
			continue
		}
		records, _, err := s.repo.List(ctx,
			repository.SelectBy(lookup.column, "=", strings.TrimSpace(lookup.value)),
			repository.SelectPaginate(1, 0),
		)
		if err != nil {
			return core.OnchainOrder{}, err
		}
		if len(records) > 0 {
			return records[0].toDomain(), nil
		}
	}
	return core.OnchainOrder{}, core.ErrRecordNotFound
}

func onchainOrderLookup(key core.OnchainOrderKey) []lookupKey {
	return []lookupKey{
		{column: "request_id", value: key.RequestID},
		{column: "pay_order_id", value: key.PayOrderID},
	}
}

func applyOnchainOrderUpsert(record *onchainOrderRecord, in core.OnchainOrderUpsert) {
	setKey(&record.RequestID, in.Key.RequestID)
	setKey(&record.PayOrderID, in.Key.PayOrderID)
	setString(&record.SubMerchantID, in.SubMerchantID)
	setString(&record.FiatCurrency, in.FiatCurrency)
	setNullDecimal(&record.FiatAmount, in.FiatAmount)
	setString(&record.CryptoCurrency, in.CryptoCurrency)
	if in.CryptoAmount != nil {
		record.CryptoAmount = *in.CryptoAmount
	}
	setString(&record.Chain, in.Chain)
	setString(&record.Reference, in.Reference)
	setString(&record.WalletAddress, in.WalletAddress)
	setInt64(&record.ExpireTime, in.ExpireTime)
	setString(&record.Status, in.Status)
	setString(&record.PaymentStatus, in.PaymentStatus)
	setNullDecimal(&record.PaymentAmount, in.PaymentAmount)
	setString(&record.PaymentCurrency, in.PaymentCurrency)
	setString(&record.AssetUniqueID, in.AssetUniqueID)
	setJSON(&record.Goods, in.Goods)
}

func (r *onchainOrderRecord) toDomain() core.OnchainOrder {
	if r == nil {
		return core.OnchainOrder{}
	}
	return core.OnchainOrder{
		ID:              r.ID,
		RequestID:       r.RequestID,
		PayOrderID:      r.PayOrderID,
		SubMerchantID:   r.SubMerchantID,
		FiatCurrency:    r.FiatCurrency,
		FiatAmount:      decimalPtr(r.FiatAmount),
		CryptoCurrency:  r.CryptoCurrency,
		CryptoAmount:    r.CryptoAmount,
		Chain:           r.Chain,
		Reference:       r.Reference,
		WalletAddress:   r.WalletAddress,
		ExpireTime:      int64Ptr(r.ExpireTime),
		Status:          r.Status,
		PaymentStatus:   r.PaymentStatus,
		PaymentAmount:   decimalPtr(r.PaymentAmount),
		PaymentCurrency: r.PaymentCurrency,
		AssetUniqueID:   r.AssetUniqueID,
		Goods:           rawJSON(r.Goods),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

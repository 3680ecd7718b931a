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

type OrderStore struct {
	db   *bun.DB
	repo repository.Repository[*orderRecord]
}

func NewOrderStore(db *bun.DB) (*OrderStore, error) {
	repo, err := newRepository(db, orderHandlers(), "order")
	if err != nil {
		return nil, err
	}
	return &OrderStore{db: db, repo: repo}, nil
}

// UpsertOrder finds the order by payOrderId, then requestId, and applies the
// non-nil fields of in.
func (s *OrderStore) UpsertOrder(ctx context.Context, in core.OrderUpsert) (core.Order, error) {
	if s == nil || s.db == nil {
		return core.Order{}, fmt.Errorf("sqlstore: order store is not configured")
	}
	if strings.TrimSpace(in.Key.PayOrderID) == "" && strings.TrimSpace(in.Key.RequestID) == "" {
		return core.Order{}, fmt.Errorf("sqlstore: order key is required")
	}

	var out core.Order
	err := runUpsert(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()
		record := &orderRecord{}
		found, err := findFirst(ctx, tx, record, orderLookup(in.Key)...)
		if err != nil {
			return err
		}
		if !found {
			if !in.CreateIfMissing || strings.TrimSpace(in.Key.RequestID) == "" {
				return core.ErrRecordNotFound
			}
			record = &orderRecord{
				ID:        uuid.NewString(),
				Status:    core.OrderStatusCreated,
				CreatedAt: now,
			}
		}
		applyOrderUpsert(record, in)
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
		return core.Order{}, err
	}
	return out, nil
}

func (s *OrderStore) GetOrder(ctx context.Context, key core.OrderKey) (core.Order, error) {
	if s == nil || s.repo == nil {
		return core.Order{}, fmt.Errorf("sqlstore: order store is not configured")
	}
	for _, lookup := range orderLookup(key) {
		if strings.TrimSpace(lookup.value) == "" {
			continue
		}
		records, _, err := s.repo.List(ctx,
			repository.SelectBy(lookup.column, "=", strings.TrimSpace(lookup.value)),
			repository.SelectPaginate(1, 0),
		)
		if err != nil {
			return core.Order{}, err
		}
		if len(records) > 0 {
			return records[0].toDomain(), nil
		}
	}
	return core.Order{}, core.ErrRecordNotFound
}

func orderLookup(key core.OrderKey) []lookupKey {
	return []lookupKey{
		{column: "pay_order_id", value: key.PayOrderID},
		{column: "request_id", value: key.RequestID},
	}
}

func applyOrderUpsert(record *orderRecord, in core.OrderUpsert) {
	setKey(&record.PayOrderID, in.Key.PayOrderID)
	setKey(&record.RequestID, in.Key.RequestID)
	if in.OrderAmount != nil {
		record.OrderAmount = *in.OrderAmount
	}
	setString(&record.OrderCurrency, in.OrderCurrency)
	setString(&record.Reference, in.Reference)
	setString(&record.Source, in.Source)
	setString(&record.SubMerchantID, in.SubMerchantID)
	if in.ExpireTime != nil {
		record.ExpireTime = *in.ExpireTime
	}
	setString(&record.QRCodeURL, in.QRCodeURL)
	setString(&record.AppPayURL, in.AppPayURL)
	setString(&record.Status, in.Status)
	setInt64(&record.PayTime, in.PayTime)
	setNullDecimal(&record.CanRefundAmount, in.CanRefundAmount)
	setString(&record.RefundCurrency, in.RefundCurrency)
	setString(&record.ErrorReason, in.ErrorReason)
	setString(&record.PayerUserID, in.PayerUserID)
	setBool(&record.RetrieveKYCStatus, in.RetrieveKYCStatus)
	setString(&record.PayerDetail, in.PayerDetail)
	setJSON(&record.Goods, in.Goods)
}

func (r *orderRecord) toDomain() core.Order {
	if r == nil {
		return core.Order{}
	}
	return core.Order{
		ID:                r.ID,
		RequestID:         r.RequestID,
		PayOrderID:        r.PayOrderID,
		OrderAmount:       r.OrderAmount,
		OrderCurrency:     r.OrderCurrency,
		Reference:         r.Reference,
		Source:            r.Source,
		SubMerchantID:     r.SubMerchantID,
		ExpireTime:        r.ExpireTime,
		QRCodeURL:         r.QRCodeURL,
		AppPayURL:         r.AppPayURL,
		Status:            r.Status,
		PayTime:           int64Ptr(r.PayTime),
		CanRefundAmount:   decimalPtr(r.CanRefundAmount),
		RefundCurrency:    r.RefundCurrency,
		ErrorReason:       r.ErrorReason,
		PayerUserID:       r.PayerUserID,
		RetrieveKYCStatus: boolPtr(r.RetrieveKYCStatus),
		PayerDetail:       r.PayerDetail,
		Goods:             rawJSON(r.Goods),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

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

// RefundStore keeps trade and on-chain refunds in one table, told apart by
// kind.
type RefundStore struct {
	db   *bun.DB
	repo repository.Repository[*refundRecord]
}

func NewRefundStore(db *bun.DB) (*RefundStore, error) {
	repo, err := newRepository(db, refundHandlers(), "refund")
	if err != nil {
		return nil, err
	}
	return &RefundStore{db: db, repo: repo}, nil
}

func (s *RefundStore) UpsertRefund(ctx context.Context, in core.RefundUpsert) (core.Refund, error) {
	if s == nil || s.db == nil {
		return core.Refund{}, fmt.Errorf("sqlstore: refund store is not configured")
	}
	if strings.TrimSpace(in.Key.RefundID) == "" && strings.TrimSpace(in.Key.RequestID) == "" {
		return core.Refund{}, fmt.Errorf("sqlstore: refund key is required")
	}

	var out core.Refund
	err := runUpsert(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()
		record := &refundRecord{}
		found, err := findFirst(ctx, tx, record, refundLookup(in.Key)...)
		if err != nil {
			return err
		}
		if !found {
			if !in.CreateIfMissing {
				return core.ErrRecordNotFound
			}
			record = &refundRecord{
				ID:        uuid.NewString(),
				Kind:      core.RefundKindTrade,
				Status:    core.RefundStatusProcessing,
				CreatedAt: now,
			}
		}
		applyRefundUpsert(record, in)
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
		return core.Refund{}, err
	}
	return out, nil
}

func (s *RefundStore) GetRefund(ctx context.Context, key core.RefundKey) (core.Refund, error) {
	if s == nil || s.repo == nil {
		return core.Refund{}, fmt.Errorf("sqlstore: refund store is not configured")
	}
	for _, lookup := range refundLookup(key) {
		if strings.TrimSpace(lookup.value) == "" {
			continue
		}
		records, _, err := s.repo.List(ctx,
			repository.SelectBy(lookup.column, "=", strings.TrimSpace(lookup.value)),
			repository.SelectPaginate(1, 0),
		)
		if err != nil {
			return core.Refund{}, err
		}
		if len(records) > 0 {
			return records[0].toDomain(), nil
		}
	}
	return core.Refund{}, core.ErrRecordNotFound
}

func refundLookup(key core.RefundKey) []lookupKey {
	return []lookupKey{
		{column: "refund_id", value: key.RefundID},
		{column: "request_id", value: key.RequestID},
	}
}

func applyRefundUpsert(record *refundRecord, in core.RefundUpsert) {
	setKey(&record.RefundID, in.Key.RefundID)
	setKey(&record.RequestID, in.Key.RequestID)
	if kind := strings.TrimSpace(in.Kind); kind != "" {
		record.Kind = kind
	}
	setString(&record.PayOrderID, in.PayOrderID)
	setString(&record.MerchantID, in.MerchantID)
	setString(&record.SubMerchantID, in.SubMerchantID)
	setNullDecimal(&record.RefundAmount, in.RefundAmount)
	setString(&record.RefundCurrency, in.RefundCurrency)
	setNullDecimal(&record.RemainingRefundAmount, in.RemainingRefundAmount)
	setString(&record.RemainingRefundCurrency, in.RemainingRefundCurrency)
	setString(&record.RefundReason, in.RefundReason)
	setString(&record.Reference, in.Reference)
	setString(&record.Status, in.Status)
	setInt64(&record.RefundFinishTime, in.RefundFinishTime)
	setString(&record.Chain, in.Chain)
	setString(&record.Address, in.Address)
	setNullDecimal(&record.FeeAmount, in.FeeAmount)
	setString(&record.AssetUniqueID, in.AssetUniqueID)
	setString(&record.PayerUserID, in.PayerUserID)
	setBool(&record.RetrieveKYCStatus, in.RetrieveKYCStatus)
	setString(&record.PayerDetail, in.PayerDetail)
}

func (r *refundRecord) toDomain() core.Refund {
	if r == nil {
		return core.Refund{}
	}
	return core.Refund{
		ID:                      r.ID,
		Kind:                    r.Kind,
		RequestID:               r.RequestID,
		RefundID:                r.RefundID,
		PayOrderID:              r.PayOrderID,
		MerchantID:              r.MerchantID,
		SubMerchantID:           r.SubMerchantID,
		RefundAmount:            decimalPtr(r.RefundAmount),
		RefundCurrency:          r.RefundCurrency,
		RemainingRefundAmount:   decimalPtr(r.RemainingRefundAmount),
		RemainingRefundCurrency: r.RemainingRefundCurrency,
		RefundReason:            r.RefundReason,
		Reference:               r.Reference,
		Status:                  r.Status,
		RefundFinishTime:        int64Ptr(r.RefundFinishTime),
		Chain:                   r.Chain,
		Address:                 r.Address,
		FeeAmount:               decimalPtr(r.FeeAmount),
		AssetUniqueID:           r.AssetUniqueID,
		PayerUserID:             r.PayerUserID,
		RetrieveKYCStatus:       boolPtr(r.RetrieveKYCStatus),
		PayerDetail:             r.PayerDetail,
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
	}
}

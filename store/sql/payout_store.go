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

type PayoutStore struct {
	db         *bun.DB
	repo       repository.Repository[*payoutRecord]
	detailRepo repository.Repository[*payoutDetailRecord]
}

func NewPayoutStore(db *bun.DB) (*PayoutStore, error) {
	repo, err := newRepository(db, payoutHandlers(), "payout")
	if err != nil {
		return nil, err
	}
	detailRepo, err := newRepository(db, payoutDetailHandlers(), "payout detail")
	if err != nil {
		return nil, err
	}
	return &PayoutStore{db: db, repo: repo, detailRepo: detailRepo}, nil
}

// UpsertPayout patches the batch found by requestId, then batchNo, and
// upserts each detail by detailId within the same transaction.
func (s *PayoutStore) UpsertPayout(ctx context.Context, in core.PayoutUpsert) (core.Payout, error) {
	if s == nil || s.db == nil {
		return core.Payout{}, fmt.Errorf("sqlstore: payout store is not configured")
	}
	if strings.TrimSpace(in.Key.RequestID) == "" && strings.TrimSpace(in.Key.BatchNo) == "" {
		return core.Payout{}, fmt.Errorf("sqlstore: payout key is required")
	}

	var out core.Payout
	err := runUpsert(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()
		record := &payoutRecord{}
		found, err := findFirst(ctx, tx, record, payoutLookup(in.Key)...)
		if err != nil {
			return err
		}
		if !found {
			if !in.CreateIfMissing || strings.TrimSpace(in.Key.RequestID) == "" {
				return core.ErrRecordNotFound
			}
			record = &payoutRecord{
				ID:        uuid.NewString(),
				Status:    core.PayoutStatusProcessing,
				CreatedAt: now,
			}
		}
		applyPayoutUpsert(record, in)
		record.UpdatedAt = now
		if !found {
			if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
				return err
			}
		} else if _, err := tx.NewUpdate().Model(record).Where("id = ?", record.ID).Exec(ctx); err != nil {
			return err
		}

		for _, detail := range in.Details {
			if err := upsertPayoutDetailTx(ctx, tx, record.ID, detail, now); err != nil {
				return err
			}
		}

		details, err := listPayoutDetails(ctx, tx, record.ID)
		if err != nil {
			return err
		}
		out = record.toDomain(details)
		return nil
	})
	if err != nil {
		return core.Payout{}, err
	}
	return out, nil
}

func (s *PayoutStore) GetPayout(ctx context.Context, key core.PayoutKey) (core.Payout, error) {
	if s == nil || s.repo == nil {
		return core.Payout{}, fmt.Errorf("sqlstore: payout store is not configured")
	}
	for _, lookup := range payoutLookup(key) {
		if strings.TrimSpace(lookup.value) == "" {
			continue
		}
		records, _, err := s.repo.List(ctx,
			repository.SelectBy(lookup.column, "=", strings.TrimSpace(lookup.value)),
			repository.SelectPaginate(1, 0),
		)
		if err != nil {
			return core.Payout{}, err
		}
		if len(records) > 0 {
			details, err := s.ListPayoutDetails(ctx, records[0].ID)
			if err != nil {
				return core.Payout{}, err
			}
			return records[0].toDomain(details), nil
		}
	}
	return core.Payout{}, core.ErrRecordNotFound
}

func (s *PayoutStore) ListPayoutDetails(ctx context.Context, payoutID string) ([]core.PayoutDetail, error) {
	if s == nil || s.detailRepo == nil {
		return nil, fmt.Errorf("sqlstore: payout store is not configured")
	}
	records, _, err := s.detailRepo.List(ctx,
		repository.SelectBy("payout_id", "=", strings.TrimSpace(payoutID)),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.created_at ASC, ?TableAlias.detail_id ASC")
		}),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.PayoutDetail, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func upsertPayoutDetailTx(
	ctx context.Context,
	tx bun.Tx,
	payoutID string,
	in core.PayoutDetailUpsert,
	now time.Time,
) error {
	detailID := strings.TrimSpace(in.DetailID)
	if detailID == "" {
		return fmt.Errorf("sqlstore: payout detail id is required")
	}
	record := &payoutDetailRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.payout_id = ?", payoutID).
		Where("?TableAlias.detail_id = ?", detailID).
		Limit(1).
		Scan(ctx)
	found := err == nil
	if err != nil && !isNoRows(err) {
		return err
	}
	if !found {
		record = &payoutDetailRecord{
			ID:        uuid.NewString(),
			PayoutID:  payoutID,
			DetailID:  detailID,
			Status:    core.PayoutDetailStatusPending,
			CreatedAt: now,
		}
	}
	setString(&record.ReceiverUID, in.ReceiverUID)
	setString(&record.ReceiverAddress, in.ReceiverAddress)
	if in.Amount != nil {
		record.Amount = *in.Amount
	}
	setString(&record.Remark, in.Remark)
	setString(&record.Status, in.Status)
	setNullDecimal(&record.PayoutFee, in.PayoutFee)
	record.UpdatedAt = now
	if !found {
		_, err = tx.NewInsert().Model(record).Exec(ctx)
		return err
	}
	_, err = tx.NewUpdate().Model(record).Where("id = ?", record.ID).Exec(ctx)
	return err
}

func listPayoutDetails(ctx context.Context, db bun.IDB, payoutID string) ([]core.PayoutDetail, error) {
	var records []payoutDetailRecord
	if err := db.NewSelect().
		Model(&records).
		Where("?TableAlias.payout_id = ?", payoutID).
		OrderExpr("?TableAlias.created_at ASC, ?TableAlias.detail_id ASC").
		Scan(ctx); err != nil && !isNoRows(err) {
		return nil, err
	}
	out := make([]core.PayoutDetail, 0, len(records))
	for i := range records {
		out = append(out, records[i].toDomain())
	}
	return out, nil
}

func payoutLookup(key core.PayoutKey) []lookupKey {
	return []lookupKey{
		{column: "request_id", value: key.RequestID},
		{column: "batch_no", value: key.BatchNo},
	}
}

func applyPayoutUpsert(record *payoutRecord, in core.PayoutUpsert) {
	setKey(&record.RequestID, in.Key.RequestID)
	setKey(&record.BatchNo, in.Key.BatchNo)
	setString(&record.BatchName, in.BatchName)
	setString(&record.BizScene, in.BizScene)
	setString(&record.PayoutType, in.PayoutType)
	setString(&record.Currency, in.Currency)
	setString(&record.Chain, in.Chain)
	if in.TotalAmount != nil {
		record.TotalAmount = *in.TotalAmount
	}
	if in.TotalCount != nil {
		record.TotalCount = *in.TotalCount
	}
	setNullDecimal(&record.TotalPaidAmount, in.TotalPaidAmount)
	setNullDecimal(&record.ProcessingFee, in.ProcessingFee)
	setNullDecimal(&record.TotalPayoutFee, in.TotalPayoutFee)
	setString(&record.Status, in.Status)
}

func (r *payoutRecord) toDomain(details []core.PayoutDetail) core.Payout {
	if r == nil {
		return core.Payout{}
	}
	return core.Payout{
		ID:              r.ID,
		RequestID:       r.RequestID,
		BatchNo:         r.BatchNo,
		BatchName:       r.BatchName,
		BizScene:        r.BizScene,
		PayoutType:      r.PayoutType,
		Currency:        r.Currency,
		Chain:           r.Chain,
		TotalAmount:     r.TotalAmount,
		TotalCount:      r.TotalCount,
		TotalPaidAmount: decimalPtr(r.TotalPaidAmount),
		ProcessingFee:   decimalPtr(r.ProcessingFee),
		TotalPayoutFee:  decimalPtr(r.TotalPayoutFee),
		Status:          r.Status,
		Details:         details,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (r *payoutDetailRecord) toDomain() core.PayoutDetail {
	if r == nil {
		return core.PayoutDetail{}
	}
	return core.PayoutDetail{
		ID:              r.ID,
		PayoutID:        r.PayoutID,
		DetailID:        r.DetailID,
		ReceiverUID:     r.ReceiverUID,
		ReceiverAddress: r.ReceiverAddress,
		Amount:          r.Amount,
		Remark:          r.Remark,
		Status:          r.Status,
		PayoutFee:       decimalPtr(r.PayoutFee),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

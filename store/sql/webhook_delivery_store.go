package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-kucoinpay/core"
	"github.com/goliatone/go-kucoinpay/webhooks"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type WebhookDeliveryStore struct {
	db   *bun.DB
	repo repository.Repository[*webhookDeliveryRecord]
}

func NewWebhookDeliveryStore(db *bun.DB) (*WebhookDeliveryStore, error) {
	repo, err := newRepository(db, webhookDeliveryHandlers(), "webhook delivery")
	if err != nil {
		return nil, err
	}
	return &WebhookDeliveryStore{
		db:   db,
		repo: repo,
	}, nil
}

func (s *WebhookDeliveryStore) Reserve(
	ctx context.Context,
	eventType string,
	deliveryKey string,
	payload []byte,
) (webhooks.DeliveryRecord, bool, error) {
	if s == nil || s.db == nil {
		return webhooks.DeliveryRecord{}, false, fmt.Errorf("sqlstore: webhook delivery store is not configured")
	}
	eventType = strings.TrimSpace(eventType)
	deliveryKey = strings.TrimSpace(deliveryKey)
	if eventType == "" || deliveryKey == "" {
		return webhooks.DeliveryRecord{}, false, fmt.Errorf("sqlstore: event type and delivery key are required")
	}

	now := time.Now().UTC()
	record := &webhookDeliveryRecord{
		ID:          uuid.NewString(),
		EventType:   eventType,
		DeliveryKey: deliveryKey,
		Status:      webhooks.DeliveryStatusPending,
		Attempts:    1,
		Payload:     append([]byte(nil), payload...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if !isUniqueViolation(err) {
			return webhooks.DeliveryRecord{}, false, err
		}
		existing, getErr := s.Get(ctx, eventType, deliveryKey)
		if getErr != nil {
			return webhooks.DeliveryRecord{}, false, getErr
		}
		if existing.Status == webhooks.DeliveryStatusProcessed {
			return existing, true, nil
		}
		_, err = s.db.NewUpdate().
			Model((*webhookDeliveryRecord)(nil)).
			Set("status = ?", webhooks.DeliveryStatusPending).
			Set("attempts = attempts + 1").
			Set("updated_at = ?", now).
			Where("event_type = ?", eventType).
			Where("delivery_key = ?", deliveryKey).
			Exec(ctx)
		if err != nil {
			return webhooks.DeliveryRecord{}, false, err
		}
		existing.Status = webhooks.DeliveryStatusPending
		existing.Attempts++
		existing.UpdatedAt = now
		return existing, false, nil
	}
	return webhookDeliveryToDomain(record), false, nil
}

func (s *WebhookDeliveryStore) Get(
	ctx context.Context,
	eventType string,
	deliveryKey string,
) (webhooks.DeliveryRecord, error) {
	if s == nil || s.db == nil {
		return webhooks.DeliveryRecord{}, fmt.Errorf("sqlstore: webhook delivery store is not configured")
	}
	record := &webhookDeliveryRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.event_type = ?", strings.TrimSpace(eventType)).
		Where("?TableAlias.delivery_key = ?", strings.TrimSpace(deliveryKey)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return webhooks.DeliveryRecord{}, fmt.Errorf(
				"sqlstore: webhook delivery %q/%q: %w",
				eventType,
				deliveryKey,
				core.ErrRecordNotFound,
			)
		}
		return webhooks.DeliveryRecord{}, err
	}
	return webhookDeliveryToDomain(record), nil
}

func (s *WebhookDeliveryStore) MarkProcessed(ctx context.Context, eventType string, deliveryKey string) error {
	return s.mark(ctx, eventType, deliveryKey, webhooks.DeliveryStatusProcessed, "")
}

func (s *WebhookDeliveryStore) MarkFailed(ctx context.Context, eventType string, deliveryKey string, cause error) error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	return s.mark(ctx, eventType, deliveryKey, webhooks.DeliveryStatusFailed, message)
}

func (s *WebhookDeliveryStore) mark(
	ctx context.Context,
	eventType string,
	deliveryKey string,
	status string,
	lastError string,
) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: webhook delivery store is not configured")
	}
	res, err := s.db.NewUpdate().
		Model((*webhookDeliveryRecord)(nil)).
		Set("status = ?", status).
		Set("last_error = ?", lastError).
		Set("updated_at = ?", time.Now().UTC()).
		Where("event_type = ?", strings.TrimSpace(eventType)).
		Where("delivery_key = ?", strings.TrimSpace(deliveryKey)).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, affectedErr := res.RowsAffected(); affectedErr == nil && affected == 0 {
		return core.ErrRecordNotFound
	}
	return nil
}

func webhookDeliveryToDomain(record *webhookDeliveryRecord) webhooks.DeliveryRecord {
	if record == nil {
		return webhooks.DeliveryRecord{}
	}
	return webhooks.DeliveryRecord{
		ID:          record.ID,
		EventType:   record.EventType,
		DeliveryKey: record.DeliveryKey,
		Status:      record.Status,
		Attempts:    record.Attempts,
		LastError:   record.LastError,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

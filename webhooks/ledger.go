package webhooks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-kucoinpay/core"
	"github.com/google/uuid"
)

const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusProcessed = "processed"
	DeliveryStatusFailed    = "failed"
)

type DeliveryRecord struct {
	ID          string
	EventType   string
	DeliveryKey string
	Status      string
	Attempts    int
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DeliveryLedger records which notifications were handled. Reserve reports
// processed=true when the delivery already completed; pending and failed
// deliveries are reserved again with one more attempt.
type DeliveryLedger interface {
	Reserve(ctx context.Context, eventType string, deliveryKey string, payload []byte) (DeliveryRecord, bool, error)
	MarkProcessed(ctx context.Context, eventType string, deliveryKey string) error
	MarkFailed(ctx context.Context, eventType string, deliveryKey string, cause error) error
}

type MemoryDeliveryLedger struct {
	mu      sync.Mutex
	records map[string]*DeliveryRecord
	Now     func() time.Time
}

func NewMemoryDeliveryLedger() *MemoryDeliveryLedger {
	return &MemoryDeliveryLedger{records: map[string]*DeliveryRecord{}}
}

func (l *MemoryDeliveryLedger) Reserve(
	_ context.Context,
	eventType string,
	deliveryKey string,
	_ []byte,
) (DeliveryRecord, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.records == nil {
		l.records = map[string]*DeliveryRecord{}
	}
	now := l.now()
	key := ledgerKey(eventType, deliveryKey)
	if record, ok := l.records[key]; ok {
		if record.Status == DeliveryStatusProcessed {
			return *record, true, nil
		}
		record.Status = DeliveryStatusPending
		record.Attempts++
		record.UpdatedAt = now
		return *record, false, nil
	}
	record := &DeliveryRecord{
		ID:          uuid.NewString(),
		EventType:   strings.TrimSpace(eventType),
		DeliveryKey: strings.TrimSpace(deliveryKey),
		Status:      DeliveryStatusPending,
		Attempts:    1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	l.records[key] = record
	return *record, false, nil
}

func (l *MemoryDeliveryLedger) Get(_ context.Context, eventType string, deliveryKey string) (DeliveryRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	record, ok := l.records[ledgerKey(eventType, deliveryKey)]
	if !ok {
		return DeliveryRecord{}, core.ErrRecordNotFound
	}
	return *record, nil
}

func (l *MemoryDeliveryLedger) MarkProcessed(_ context.Context, eventType string, deliveryKey string) error {
	return l.mark(eventType, deliveryKey, DeliveryStatusProcessed, "")
}

func (l *MemoryDeliveryLedger) MarkFailed(_ context.Context, eventType string, deliveryKey string, cause error) error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	return l.mark(eventType, deliveryKey, DeliveryStatusFailed, message)
}

func (l *MemoryDeliveryLedger) mark(eventType string, deliveryKey string, status string, lastError string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	record, ok := l.records[ledgerKey(eventType, deliveryKey)]
	if !ok {
		return core.ErrRecordNotFound
	}
	record.Status = status
	record.LastError = lastError
	record.UpdatedAt = l.now()
	return nil
}

func (l *MemoryDeliveryLedger) now() time.Time {
	if l.Now != nil {
		return l.Now().UTC()
	}
	return time.Now().UTC()
}

func ledgerKey(eventType string, deliveryKey string) string {
	return strings.TrimSpace(eventType) + "|" + strings.TrimSpace(deliveryKey)
}

var _ DeliveryLedger = (*MemoryDeliveryLedger)(nil)

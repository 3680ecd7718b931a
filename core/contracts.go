package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// RequestSigner signs canonical strings with the merchant private key.
type RequestSigner interface {
	Sign(canonical string) (string, error)
}

// SignatureVerifier verifies counterparty signatures. It never errors.
type SignatureVerifier interface {
	Verify(canonical string, signature string) bool
}

// FieldCodec opens and seals encrypted payload fields.
type FieldCodec interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(envelope string) (string, error)
}

type TransportRequest struct {
	Method   string
	URL      string
	Headers  map[string]string
	Body     []byte
	Metadata map[string]any
	Timeout  time.Duration
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

type OrderStore interface {
	UpsertOrder(ctx context.Context, in OrderUpsert) (Order, error)
	GetOrder(ctx context.Context, key OrderKey) (Order, error)
}

type RefundStore interface {
	UpsertRefund(ctx context.Context, in RefundUpsert) (Refund, error)
	GetRefund(ctx context.Context, key RefundKey) (Refund, error)
}

type PayoutStore interface {
	UpsertPayout(ctx context.Context, in PayoutUpsert) (Payout, error)
	GetPayout(ctx context.Context, key PayoutKey) (Payout, error)
	ListPayoutDetails(ctx context.Context, payoutID string) ([]PayoutDetail, error)
}

type OnchainOrderStore interface {
	UpsertOnchainOrder(ctx context.Context, in OnchainOrderUpsert) (OnchainOrder, error)
	GetOnchainOrder(ctx context.Context, key OnchainOrderKey) (OnchainOrder, error)
}

type ReportStore interface {
	UpsertReport(ctx context.Context, in ReportUpsert) (Report, error)
	ListReports(ctx context.Context, reportType string, startDate string, endDate string) ([]Report, error)
}

// StoreProvider exposes the persistence collaborators. Any accessor may
// return nil, in which case that entity is not persisted.
type StoreProvider interface {
	OrderStore() OrderStore
	RefundStore() RefundStore
	PayoutStore() PayoutStore
	OnchainOrderStore() OnchainOrderStore
	ReportStore() ReportStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

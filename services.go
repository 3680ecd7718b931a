package kucoinpay

import "github.com/goliatone/go-kucoinpay/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type RequestSigner = core.RequestSigner
type SignatureVerifier = core.SignatureVerifier
type FieldCodec = core.FieldCodec
type TransportAdapter = core.TransportAdapter
type StoreProvider = core.StoreProvider

type ProviderResult = core.ProviderResult

type CreateOrderRequest = core.CreateOrderRequest
type QueryOrderRequest = core.QueryOrderRequest
type CloseOrderRequest = core.CloseOrderRequest
type ListRequest = core.ListRequest
type CreateRefundRequest = core.CreateRefundRequest
type QueryRefundRequest = core.QueryRefundRequest
type ReportQueryRequest = core.ReportQueryRequest
type CreatePayoutRequest = core.CreatePayoutRequest
type QueryPayoutInfoRequest = core.QueryPayoutInfoRequest
type QueryPayoutDetailRequest = core.QueryPayoutDetailRequest
type OnchainCurrencyRequest = core.OnchainCurrencyRequest
type OnchainQuoteRequest = core.OnchainQuoteRequest
type CreateOnchainOrderRequest = core.CreateOnchainOrderRequest
type QueryOnchainOrderRequest = core.QueryOnchainOrderRequest
type CreateOnchainRefundRequest = core.CreateOnchainRefundRequest

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorMapper       = core.WithErrorMapper
	WithPersistenceClient = core.WithPersistenceClient
	WithRepositoryFactory = core.WithRepositoryFactory
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithSigner            = core.WithSigner
	WithTransport         = core.WithTransport
	WithStatusCatalog     = core.WithStatusCatalog
	WithCurrencyCache     = core.WithCurrencyCache
	WithClock             = core.WithClock
	WithOrderStore        = core.WithOrderStore
	WithRefundStore       = core.WithRefundStore
	WithPayoutStore       = core.WithPayoutStore
	WithOnchainOrderStore = core.WithOnchainOrderStore
	WithReportStore       = core.WithReportStore
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
)

// Service runs merchant operations against the payment provider and keeps
// the local records in step with the responses.
type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorMapper       ErrorMapper
	persistenceClient any
	repositoryFactory any
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	catalog           StatusCatalog
	builder           *RequestBuilder
	transport         TransportAdapter
	currencyCache     repositorycache.CacheService
	clock             func() time.Time
	requestIDs        func() string
	orderStore        OrderStore
	refundStore       RefundStore
	payoutStore       PayoutStore
	onchainOrderStore OnchainOrderStore
	reportStore       ReportStore
}

type ServiceDependencies struct {
	Logger            Logger
	LoggerProvider    LoggerProvider
	MetricsRecorder   MetricsRecorder
	ErrorMapper       ErrorMapper
	PersistenceClient any
	RepositoryFactory any
	ConfigProvider    ConfigProvider
	OptionsResolver   OptionsResolver
	Signer            RequestSigner
	Transport         TransportAdapter
	CurrencyCache     repositorycache.CacheService
	OrderStore        OrderStore
	RefundStore       RefundStore
	PayoutStore       PayoutStore
	OnchainOrderStore OnchainOrderStore
	ReportStore       ReportStore
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("kucoinpay", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("kucoinpay"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.clock == nil {
		builder.clock = time.Now
	}
	if builder.requestIDs == nil {
		builder.requestIDs = newMerchantRequestID
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	if err := finalConfig.ValidateProvider(); err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	if builder.signer == nil {
		return nil, dependencyError("core: request signer is required")
	}
	if builder.transport == nil {
		return nil, dependencyError("core: transport adapter is required")
	}

	if builder.repositoryFactory != nil {
		stores, err := resolveStoreProvider(builder.repositoryFactory, builder.persistenceClient)
		if err != nil {
			return nil, mapBuildError(builder.errorMapper, err)
		}
		if stores != nil {
			if builder.orderStore == nil {
				builder.orderStore = stores.OrderStore()
			}
			if builder.refundStore == nil {
				builder.refundStore = stores.RefundStore()
			}
			if builder.payoutStore == nil {
				builder.payoutStore = stores.PayoutStore()
			}
			if builder.onchainOrderStore == nil {
				builder.onchainOrderStore = stores.OnchainOrderStore()
			}
			if builder.reportStore == nil {
				builder.reportStore = stores.ReportStore()
			}
		}
	}

	catalog := DefaultStatusCatalog()
	if builder.statusCatalog != nil {
		catalog = *builder.statusCatalog
	}
	catalog = catalog.WithErrorMessages(finalConfig.ErrorMessages)

	requestBuilder := NewRequestBuilder(finalConfig.Provider, builder.signer)
	requestBuilder.Now = builder.clock

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorMapper:       builder.errorMapper,
		persistenceClient: builder.persistenceClient,
		repositoryFactory: builder.repositoryFactory,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		catalog:           catalog,
		builder:           requestBuilder,
		transport:         builder.transport,
		currencyCache:     builder.currencyCache,
		clock:             builder.clock,
		requestIDs:        builder.requestIDs,
		orderStore:        builder.orderStore,
		refundStore:       builder.refundStore,
		payoutStore:       builder.payoutStore,
		onchainOrderStore: builder.onchainOrderStore,
		reportStore:       builder.reportStore,
	}, nil
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

func resolveStoreProvider(factory any, client any) (StoreProvider, error) {
	switch typed := factory.(type) {
	case RepositoryStoreFactory:
		return typed.BuildStores(client)
	case StoreProvider:
		return typed, nil
	default:
		return nil, fmt.Errorf("core: unsupported repository factory %T", factory)
	}
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func newMerchantRequestID() string {
	return "req-" + uuid.NewString()
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) StatusCatalog() StatusCatalog {
	if s == nil {
		return DefaultStatusCatalog()
	}
	return s.catalog
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	var signer RequestSigner
	if s.builder != nil {
		signer = s.builder.Signer
	}
	return ServiceDependencies{
		Logger:            s.logger,
		LoggerProvider:    s.loggerProvider,
		MetricsRecorder:   s.metricsRecorder,
		ErrorMapper:       s.errorMapper,
		PersistenceClient: s.persistenceClient,
		RepositoryFactory: s.repositoryFactory,
		ConfigProvider:    s.configProvider,
		OptionsResolver:   s.optionsResolver,
		Signer:            signer,
		Transport:         s.transport,
		CurrencyCache:     s.currencyCache,
		OrderStore:        s.orderStore,
		RefundStore:       s.refundStore,
		PayoutStore:       s.payoutStore,
		OnchainOrderStore: s.onchainOrderStore,
		ReportStore:       s.reportStore,
	}
}

// invoke signs and sends one provider call and decodes its envelope. Known
// statuses are annotated on the returned data.
func (s *Service) invoke(ctx context.Context, call OutboundCall) (ProviderResult, error) {
	if s == nil || s.transport == nil || s.builder == nil {
		return ProviderResult{}, dependencyError("core: service is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	operation := string(call.Operation)

	signed, err := s.builder.Build(call)
	if err != nil {
		return ProviderResult{}, err
	}
	response, err := s.transport.Do(ctx, signed.Transport)
	if err != nil {
		return ProviderResult{}, transportFailure(operation, err)
	}

	result, ok, decodeErr := decodeProviderResponse(response.Body)
	httpOK := response.StatusCode >= 200 && response.StatusCode < 300
	if decodeErr != nil {
		raw := strings.TrimSpace(string(response.Body))
		if httpOK {
			raw = decodeErr.Error()
		}
		return ProviderResult{}, providerError(operation, response.StatusCode, "", "", raw)
	}
	if !httpOK || !ok {
		message := result.Message
		if known, found := s.catalog.ErrorMessage(result.Code); found {
			message = known
		}
		return ProviderResult{}, providerError(operation, response.StatusCode, result.Code, message, result.Message)
	}

	s.catalog.annotate(result.Object())
	for _, item := range result.Items() {
		s.catalog.annotate(item)
	}
	return result, nil
}

// persist runs a store write when the store is configured.
func (s *Service) persist(operation string, configured bool, write func() error) error {
	if !configured || write == nil {
		return nil
	}
	if err := write(); err != nil {
		return persistenceError(operation, err)
	}
	return nil
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil {
		return mapBuildError(defaultErrorMapper, err)
	}
	return mapBuildError(s.errorMapper, err)
}

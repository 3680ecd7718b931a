package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type serviceBuilder struct {
	runtimeConfig     Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorMapper       ErrorMapper
	persistenceClient any
	repositoryFactory any
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	signer            RequestSigner
	transport         TransportAdapter
	statusCatalog     *StatusCatalog
	currencyCache     repositorycache.CacheService
	clock             func() time.Time
	requestIDs        func() string
	orderStore        OrderStore
	refundStore       RefundStore
	payoutStore       PayoutStore
	onchainOrderStore OnchainOrderStore
	reportStore       ReportStore
}

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *serviceBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) {
		b.errorMapper = mapper
	}
}

func WithPersistenceClient(client any) Option {
	return func(b *serviceBuilder) {
		b.persistenceClient = client
	}
}

// WithRepositoryFactory accepts a RepositoryStoreFactory or a StoreProvider.
func WithRepositoryFactory(factory any) Option {
	return func(b *serviceBuilder) {
		b.repositoryFactory = factory
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithSigner(signer RequestSigner) Option {
	return func(b *serviceBuilder) {
		b.signer = signer
	}
}

func WithTransport(adapter TransportAdapter) Option {
	return func(b *serviceBuilder) {
		b.transport = adapter
	}
}

func WithStatusCatalog(catalog StatusCatalog) Option {
	return func(b *serviceBuilder) {
		b.statusCatalog = &catalog
	}
}

// WithCurrencyCache caches on-chain currency lists per crypto currency.
func WithCurrencyCache(cache repositorycache.CacheService) Option {
	return func(b *serviceBuilder) {
		b.currencyCache = cache
	}
}

func WithClock(clock func() time.Time) Option {
	return func(b *serviceBuilder) {
		b.clock = clock
	}
}

// WithRequestIDGenerator replaces the generator used when an order create
// request carries no requestId.
func WithRequestIDGenerator(generator func() string) Option {
	return func(b *serviceBuilder) {
		b.requestIDs = generator
	}
}

func WithOrderStore(store OrderStore) Option {
	return func(b *serviceBuilder) {
		b.orderStore = store
	}
}

func WithRefundStore(store RefundStore) Option {
	return func(b *serviceBuilder) {
		b.refundStore = store
	}
}

func WithPayoutStore(store PayoutStore) Option {
	return func(b *serviceBuilder) {
		b.payoutStore = store
	}
}

func WithOnchainOrderStore(store OnchainOrderStore) Option {
	return func(b *serviceBuilder) {
		b.onchainOrderStore = store
	}
}

func WithReportStore(store ReportStore) Option {
	return func(b *serviceBuilder) {
		b.reportStore = store
	}
}

func defaultServiceBuilder(runtime Config) serviceBuilder {
	loggerProvider, logger := glog.Resolve("kucoinpay", nil, nil)
	return serviceBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
		clock:           time.Now,
		requestIDs:      newMerchantRequestID,
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return serviceErrorMapper(err)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// StaticConfigLoader returns a loader serving a fixed raw config map.
func StaticConfigLoader(values map[string]any) RawConfigLoader {
	return staticRawConfigLoader{Values: values}
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

// configToLayerMap flattens a config into an options layer. Zero values are
// only emitted for the defaults layer so they never shadow lower layers.
func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	putString(layer, "service_name", cfg.ServiceName, includeZero)

	provider := map[string]any{}
	putString(provider, "base_url", cfg.Provider.BaseURL, includeZero)
	putString(provider, "api_key", cfg.Provider.APIKey, includeZero)
	putString(provider, "api_version", cfg.Provider.APIVersion, includeZero)
	if includeZero || cfg.Provider.TimeoutMS != 0 {
		provider["timeout_ms"] = cfg.Provider.TimeoutMS
	}
	putSection(layer, "provider", provider)

	keys := map[string]any{}
	putString(keys, "merchant_private_key_path", cfg.Keys.MerchantPrivateKeyPath, includeZero)
	putString(keys, "merchant_public_key_path", cfg.Keys.MerchantPublicKeyPath, includeZero)
	putString(keys, "counterparty_public_key_path", cfg.Keys.CounterpartyPublicKeyPath, includeZero)
	putString(keys, "payer_detail_key", cfg.Keys.PayerDetailKey, includeZero)
	putSection(layer, "keys", keys)

	orders := map[string]any{}
	if includeZero || cfg.Orders.ExpireTimeMS != 0 {
		orders["expire_time_ms"] = cfg.Orders.ExpireTimeMS
	}
	putString(orders, "source", cfg.Orders.Source, includeZero)
	putString(orders, "reference", cfg.Orders.Reference, includeZero)
	putSection(layer, "orders", orders)

	persistence := map[string]any{}
	putString(persistence, "driver", cfg.Persistence.Driver, includeZero)
	putString(persistence, "dsn", cfg.Persistence.DSN, includeZero)
	if includeZero || cfg.Persistence.Debug {
		persistence["debug"] = cfg.Persistence.Debug
	}
	putSection(layer, "persistence", persistence)

	httpLayer := map[string]any{}
	putString(httpLayer, "address", cfg.HTTP.Address, includeZero)
	if includeZero || cfg.HTTP.MaxBodyBytes != 0 {
		httpLayer["max_body_bytes"] = cfg.HTTP.MaxBodyBytes
	}
	putSection(layer, "http", httpLayer)

	if includeZero || len(cfg.ErrorMessages) > 0 {
		messages := make(map[string]any, len(cfg.ErrorMessages))
		for code, message := range cfg.ErrorMessages {
			messages[code] = message
		}
		layer["error_messages"] = messages
	}
	return layer
}

func putString(target map[string]any, key string, value string, includeZero bool) {
	if includeZero || strings.TrimSpace(value) != "" {
		target[key] = value
	}
}

func putSection(target map[string]any, key string, section map[string]any) {
	if len(section) > 0 {
		target[key] = section
	}
}

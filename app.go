package kucoinpay

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-kucoinpay/core"
	"github.com/goliatone/go-kucoinpay/httpapi"
	"github.com/goliatone/go-kucoinpay/security"
	sqlstore "github.com/goliatone/go-kucoinpay/store/sql"
	"github.com/goliatone/go-kucoinpay/transport"
	"github.com/goliatone/go-kucoinpay/webhooks"
	glog "github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
)

// App is a fully wired merchant backend: the provider service, the webhook
// dispatcher and the HTTP surface that fronts both.
type App struct {
	Config     Config
	Service    *Service
	Facade     *Facade
	Dispatcher *webhooks.Dispatcher
	HTTP       *httpapi.Server
	// Stores is nil when no persistence client was supplied.
	Stores  *sqlstore.RepositoryFactory
	Bundles map[string]any
}

type AppOption func(*appOptions)

type appOptions struct {
	logger           core.Logger
	metrics          core.MetricsRecorder
	keys             *security.KeyStore
	httpClient       transport.HTTPDoer
	persistence      *persistence.Client
	ledger           webhooks.DeliveryLedger
	hooks            *ExtensionHooks
	currencyCacheTTL time.Duration
	serviceOptions   []Option
}

func WithAppLogger(logger core.Logger) AppOption {
	return func(o *appOptions) {
		o.logger = logger
	}
}

func WithAppMetrics(metrics core.MetricsRecorder) AppOption {
	return func(o *appOptions) {
		o.metrics = metrics
	}
}

// WithKeyStore skips loading keys from the configured paths.
func WithKeyStore(keys *security.KeyStore) AppOption {
	return func(o *appOptions) {
		o.keys = keys
	}
}

func WithHTTPClient(client transport.HTTPDoer) AppOption {
	return func(o *appOptions) {
		o.httpClient = client
	}
}

// WithPersistence backs every store and the webhook ledger with SQL.
// Migrations must already be applied.
func WithPersistence(client *persistence.Client) AppOption {
	return func(o *appOptions) {
		o.persistence = client
	}
}

// WithDeliveryLedger overrides the webhook ledger. Without persistence the
// default is an in-memory ledger.
func WithDeliveryLedger(ledger webhooks.DeliveryLedger) AppOption {
	return func(o *appOptions) {
		o.ledger = ledger
	}
}

func WithExtensionHooks(hooks *ExtensionHooks) AppOption {
	return func(o *appOptions) {
		o.hooks = hooks
	}
}

func WithCurrencyCacheTTL(ttl time.Duration) AppOption {
	return func(o *appOptions) {
		o.currencyCacheTTL = ttl
	}
}

// WithServiceOptions passes extra options through to NewService.
func WithServiceOptions(opts ...Option) AppOption {
	return func(o *appOptions) {
		o.serviceOptions = append(o.serviceOptions, opts...)
	}
}

// LoadConfig reads an optional config file, overlays the environment and
// validates the result.
func LoadConfig(ctx context.Context, path string) (Config, error) {
	return core.NewFileConfigLoader(path).Load(ctx, core.DefaultConfig())
}

// Setup wires the service, the webhook dispatcher and the HTTP server from
// cfg.
func Setup(cfg Config, opts ...AppOption) (*App, error) {
	options := appOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	logger := glog.Ensure(options.logger)

	keys := options.keys
	if keys == nil {
		loaded, err := LoadKeyStore(cfg.Keys)
		if err != nil {
			return nil, fmt.Errorf("kucoinpay: load keys: %w", err)
		}
		keys = loaded
	}
	codec, err := NewPayerDetailCodec(cfg.Keys)
	if err != nil {
		return nil, fmt.Errorf("kucoinpay: payer detail codec: %w", err)
	}
	cache, err := NewCurrencyCache(options.currencyCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("kucoinpay: currency cache: %w", err)
	}

	serviceOpts := []Option{
		core.WithLogger(logger),
		core.WithSigner(security.NewSigner(keys)),
		core.WithTransport(NewHTTPTransport(cfg.Provider, options.httpClient, logger)),
		core.WithCurrencyCache(cache),
	}
	if options.metrics != nil {
		serviceOpts = append(serviceOpts, core.WithMetricsRecorder(options.metrics))
	}

	var stores *sqlstore.RepositoryFactory
	if options.persistence != nil {
		stores, err = sqlstore.NewRepositoryFactoryFromPersistence(options.persistence)
		if err != nil {
			return nil, fmt.Errorf("kucoinpay: build stores: %w", err)
		}
		serviceOpts = append(serviceOpts,
			core.WithPersistenceClient(options.persistence),
			core.WithRepositoryFactory(stores),
		)
	}
	serviceOpts = append(serviceOpts, options.serviceOptions...)

	service, err := core.NewService(cfg, serviceOpts...)
	if err != nil {
		return nil, err
	}
	finalConfig := service.Config()

	ledger := options.ledger
	if ledger == nil {
		if stores != nil && stores.WebhookDeliveryStore() != nil {
			ledger = stores.WebhookDeliveryStore()
		} else {
			ledger = webhooks.NewMemoryDeliveryLedger()
		}
	}

	deps := service.Dependencies()
	handlers := options.hooks.ComposeWebhookHandlers(
		webhooks.NewStoreHandlers(dependencyStores{deps: deps}, logger),
	)
	dispatcherOpts := []webhooks.DispatcherOption{
		webhooks.WithLedger(ledger),
		webhooks.WithLogger(logger),
		webhooks.WithMetrics(deps.MetricsRecorder),
	}
	if codec != nil {
		dispatcherOpts = append(dispatcherOpts, webhooks.WithCodec(codec))
	}
	dispatcher := webhooks.NewDispatcher(
		finalConfig.Provider.APIKey,
		security.NewVerifier(keys, security.WithVerifierLogger(logger)),
		handlers,
		dispatcherOpts...,
	)

	facade, err := NewFacade(service)
	if err != nil {
		return nil, err
	}
	bundles, err := options.hooks.BuildCommandQueryBundles(service)
	if err != nil {
		return nil, err
	}

	server := httpapi.NewServer(service,
		httpapi.WithLogger(logger),
		httpapi.WithMaxBodyBytes(finalConfig.HTTP.MaxBodyBytes),
		httpapi.WithWebhookHandler(dispatcher),
	)

	return &App{
		Config:     finalConfig,
		Service:    service,
		Facade:     facade,
		Dispatcher: dispatcher,
		HTTP:       server,
		Stores:     stores,
		Bundles:    bundles,
	}, nil
}

// dependencyStores exposes the stores a Service resolved, so webhook
// updates land in the same place as outbound results.
type dependencyStores struct {
	deps core.ServiceDependencies
}

func (s dependencyStores) OrderStore() core.OrderStore { return s.deps.OrderStore }

func (s dependencyStores) RefundStore() core.RefundStore { return s.deps.RefundStore }

func (s dependencyStores) PayoutStore() core.PayoutStore { return s.deps.PayoutStore }

func (s dependencyStores) OnchainOrderStore() core.OnchainOrderStore { return s.deps.OnchainOrderStore }

func (s dependencyStores) ReportStore() core.ReportStore { return s.deps.ReportStore }

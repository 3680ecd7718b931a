package kucoinpay

import (
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-kucoinpay/core"
	"github.com/goliatone/go-kucoinpay/security"
	"github.com/goliatone/go-kucoinpay/transport"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const defaultCurrencyCacheTTL = 10 * time.Minute

// LoadKeyStore reads the configured key files and parses them eagerly so a
// bad key fails at startup.
func LoadKeyStore(cfg core.KeysConfig) (*security.KeyStore, error) {
	keys, err := security.LoadKeyStore(security.KeyPaths{
		MerchantPrivate:    cfg.MerchantPrivateKeyPath,
		MerchantPublic:     cfg.MerchantPublicKeyPath,
		CounterpartyPublic: cfg.CounterpartyPublicKeyPath,
	})
	if err != nil {
		return nil, err
	}
	if err := keys.Validate(); err != nil {
		return nil, err
	}
	return keys, nil
}

// NewPayerDetailCodec returns nil when no payer detail key is configured.
func NewPayerDetailCodec(cfg core.KeysConfig) (core.FieldCodec, error) {
	key := strings.TrimSpace(cfg.PayerDetailKey)
	if key == "" {
		return nil, nil
	}
	codec, err := security.NewPayerDetailCodecFromBase64(key)
	if err != nil {
		return nil, err
	}
	return codec, nil
}

func NewHTTPTransport(cfg core.ProviderConfig, client transport.HTTPDoer, logger core.Logger) *transport.HTTPAdapter {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout()}
	}
	return transport.NewHTTPAdapter(client, transport.WithLogger(logger))
}

func NewCurrencyCache(ttl time.Duration) (repositorycache.CacheService, error) {
	config := repositorycache.DefaultConfig()
	config.TTL = defaultCurrencyCacheTTL
	if ttl > 0 {
		config.TTL = ttl
	}
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		return nil, err
	}
	return service, nil
}

package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultAPIVersion     = "1.0"
	DefaultTimeoutMS      = 30000
	DefaultExpireTimeMS   = 1800000
	DefaultOrderSource    = "WEB"
	DefaultOrderReference = "no-ref"
	DefaultPageNum        = 1
	DefaultPageSize       = 10
)

type ProviderConfig struct {
	BaseURL    string `koanf:"base_url" mapstructure:"base_url"`
	APIKey     string `koanf:"api_key" mapstructure:"api_key"`
	APIVersion string `koanf:"api_version" mapstructure:"api_version"`
	TimeoutMS  int    `koanf:"timeout_ms" mapstructure:"timeout_ms"`
}

func (c ProviderConfig) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return DefaultTimeoutMS * time.Millisecond
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

type KeysConfig struct {
	MerchantPrivateKeyPath    string `koanf:"merchant_private_key_path" mapstructure:"merchant_private_key_path"`
	MerchantPublicKeyPath     string `koanf:"merchant_public_key_path" mapstructure:"merchant_public_key_path"`
	CounterpartyPublicKeyPath string `koanf:"counterparty_public_key_path" mapstructure:"counterparty_public_key_path"`
	PayerDetailKey            string `koanf:"payer_detail_key" mapstructure:"payer_detail_key"`
}

type OrdersConfig struct {
	ExpireTimeMS int64  `koanf:"expire_time_ms" mapstructure:"expire_time_ms"`
	Source       string `koanf:"source" mapstructure:"source"`
	Reference    string `koanf:"reference" mapstructure:"reference"`
}

type PersistenceConfig struct {
	Driver string `koanf:"driver" mapstructure:"driver"`
	DSN    string `koanf:"dsn" mapstructure:"dsn"`
	Debug  bool   `koanf:"debug" mapstructure:"debug"`
}

func (c PersistenceConfig) GetDebug() bool {
	return c.Debug
}

func (c PersistenceConfig) GetDriver() string {
	return c.Driver
}

func (c PersistenceConfig) GetServer() string {
	return c.DSN
}

func (c PersistenceConfig) GetPingTimeout() time.Duration {
	return 5 * time.Second
}

func (c PersistenceConfig) GetOtelIdentifier() string {
	return "kucoinpay"
}

type HTTPConfig struct {
	Address      string `koanf:"address" mapstructure:"address"`
	MaxBodyBytes int64  `koanf:"max_body_bytes" mapstructure:"max_body_bytes"`
}

type Config struct {
	ServiceName   string            `koanf:"service_name" mapstructure:"service_name"`
	Provider      ProviderConfig    `koanf:"provider" mapstructure:"provider"`
	Keys          KeysConfig        `koanf:"keys" mapstructure:"keys"`
	Orders        OrdersConfig      `koanf:"orders" mapstructure:"orders"`
	Persistence   PersistenceConfig `koanf:"persistence" mapstructure:"persistence"`
	HTTP          HTTPConfig        `koanf:"http" mapstructure:"http"`
	ErrorMessages map[string]string `koanf:"error_messages" mapstructure:"error_messages"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "kucoinpay",
		Provider: ProviderConfig{
			BaseURL:    "https://api.kucoin.com",
			APIVersion: DefaultAPIVersion,
			TimeoutMS:  DefaultTimeoutMS,
		},
		Orders: OrdersConfig{
			ExpireTimeMS: DefaultExpireTimeMS,
			Source:       DefaultOrderSource,
			Reference:    DefaultOrderReference,
		},
		HTTP: HTTPConfig{
			Address:      ":8080",
			MaxBodyBytes: 1 << 20,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if base := strings.TrimSpace(c.Provider.BaseURL); base != "" {
		parsed, err := url.Parse(base)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("core: provider.base_url %q is invalid", base)
		}
	}
	if c.Provider.TimeoutMS < 0 {
		return fmt.Errorf("core: provider.timeout_ms must not be negative")
	}
	if c.Orders.ExpireTimeMS < 0 {
		return fmt.Errorf("core: orders.expire_time_ms must not be negative")
	}
	if strings.TrimSpace(c.Persistence.DSN) != "" {
		switch strings.ToLower(strings.TrimSpace(c.Persistence.Driver)) {
		case "postgres", "sqlite3":
		default:
			return fmt.Errorf("core: persistence.driver %q is invalid", c.Persistence.Driver)
		}
	}
	return nil
}

// ValidateProvider checks the settings every outbound call needs.
func (c Config) ValidateProvider() error {
	if strings.TrimSpace(c.Provider.BaseURL) == "" {
		return fmt.Errorf("core: provider.base_url is required")
	}
	if strings.TrimSpace(c.Provider.APIKey) == "" {
		return fmt.Errorf("core: provider.api_key is required")
	}
	return nil
}

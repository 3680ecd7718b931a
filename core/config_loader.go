package core

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-config/config"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/knadh/koanf/v2"
)

// envBindings maps environment variables onto config paths. The names are
// fixed by deployment convention, so they do not follow a prefix/delimiter
// scheme.
var envBindings = []struct {
	name string
	path string
}{
	{"KUCOIN_API_KEY", "provider.api_key"},
	{"KUCOIN_BASE_URL", "provider.base_url"},
	{"KUCOIN_API_VERSION", "provider.api_version"},
	{"KUCOIN_AES_KEY", "keys.payer_detail_key"},
	{"KUCOIN_MERCHANT_PRIVATE_KEY_PATH", "keys.merchant_private_key_path"},
	{"KUCOIN_MERCHANT_PUBLIC_KEY_PATH", "keys.merchant_public_key_path"},
	{"KUCOIN_PUBLIC_KEY_PATH", "keys.counterparty_public_key_path"},
	{"DATABASE_URL", "persistence.dsn"},
	{"HTTP_ADDRESS", "http.address"},
}

// FileConfigLoader layers an optional config file (yaml, json or toml by
// extension) and the environment bindings over the defaults through a
// go-config container.
type FileConfigLoader struct {
	Path     string
	Optional bool
	Lookup   func(string) (string, bool)
	Logger   Logger
}

func NewFileConfigLoader(path string) FileConfigLoader {
	return FileConfigLoader{Path: path, Optional: true, Lookup: os.LookupEnv}
}

func (l FileConfigLoader) Load(ctx context.Context, defaults Config) (Config, error) {
	container := config.New(defaults).
		WithConfigPath("").
		WithLogger(glog.Ensure(l.Logger))

	if path := strings.TrimSpace(l.Path); path != "" {
		file := config.FileProvider[Config](path)
		if l.Optional {
			file = config.OptionalProvider(file)
		}
		container.WithProvider(file)
	}
	container.WithProvider(envBindingProvider(l.Lookup))

	if err := container.Load(ctx); err != nil {
		return Config{}, fmt.Errorf("core: load config: %w", err)
	}
	return container.Raw(), nil
}

type envLoader struct {
	lookup func(string) (string, bool)
}

func envBindingProvider(lookup func(string) (string, bool)) config.ProviderBuilder[Config] {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return func(*config.Container[Config]) (config.Provider, error) {
		return envLoader{lookup: lookup}, nil
	}
}

func (envLoader) Type() config.ProviderType { return config.ProviderTypeEnv }

func (envLoader) Priority() int { return int(config.PriorityEnv) }

func (envLoader) Validate() error { return nil }

func (l envLoader) Load(_ context.Context, k *koanf.Koanf) error {
	for _, binding := range envBindings {
		value, ok := l.lookup(binding.name)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		if err := k.Set(binding.path, strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("core: apply %s: %w", binding.name, err)
		}
	}
	// A DSN without an explicit driver picks one from its scheme.
	if dsn := k.String("persistence.dsn"); dsn != "" && !k.Exists("persistence.driver") {
		if err := k.Set("persistence.driver", driverForDSN(dsn)); err != nil {
			return fmt.Errorf("core: infer persistence driver: %w", err)
		}
	}
	return nil
}

func driverForDSN(dsn string) string {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return "postgres"
	}
	return "sqlite3"
}

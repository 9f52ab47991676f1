package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader defines the interface for loading configuration
type Loader interface {
	Load() (*Config, error)
	Validate(*Config) error
}

// ViperLoader implements Loader using Viper for configuration management
type ViperLoader struct {
	configFile string
	envPrefix  string
	overrides  map[string]any
	flags      *pflag.FlagSet
}

// NewViperLoader creates a new ViperLoader
// configFile: path to configuration file (optional, can be empty)
// envPrefix: prefix for environment variables (e.g., "APP")
func NewViperLoader(configFile, envPrefix string) *ViperLoader {
	return &ViperLoader{
		configFile: configFile,
		envPrefix:  envPrefix,
	}
}

// WithOverrides sets programmatic overrides applied between the config file
// and the environment. Keys are dotted schema keys or nested maps in the
// template file shape; Settings() output is accepted directly.
func (l *ViperLoader) WithOverrides(overrides map[string]any) *ViperLoader {
	if l == nil {
		return l
	}
	l.overrides = overrides
	return l
}

// Load loads configuration with precedence: ENV > overrides > file > defaults.
// A config file path that does not exist is not an error; the result is the
// schema defaults plus overrides and environment. An existing file that
// cannot be read or parsed is an error.
func (l *ViperLoader) Load() (*Config, error) {
	v := viper.New()

	// Start with defaults
	defaults := DefaultConfig()
	l.setDefaults(v, defaults)

	// Read config file if provided and present
	if l.configFile != "" {
		if _, err := os.Stat(l.configFile); err == nil {
			v.SetConfigFile(l.configFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file %s: %w", l.configFile, err)
		}
	}

	// Programmatic overrides sit between the file and the environment.
	if len(l.overrides) > 0 {
		if err := v.MergeConfigMap(l.overrides); err != nil {
			return nil, fmt.Errorf("failed to merge overrides: %w", err)
		}
	}

	// Environment variables override everything through explicit bindings.
	v.SetEnvPrefix(l.envPrefix)

	// Map legacy env names to current keys when needed.
	l.bindLegacyEnvVars()

	// Bind all environment variables explicitly for nested structs
	l.bindEnvVars(v)

	// Operator flags win over everything
	l.bindFlags(v)

	// Unmarshal into a new config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := l.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// bindEnvVars explicitly binds environment variables for nested structs
func (l *ViperLoader) bindEnvVars(v *viper.Viper) {
	// Web
	v.BindEnv("web.host", l.prefixedEnv("WEB_HOST"))
	v.BindEnv("web.port", l.prefixedEnv("WEB_PORT"))
	v.BindEnv("web.login_password", l.prefixedEnv("WEB_LOGIN_PASSWORD"))

	// Proxy
	v.BindEnv("proxy.host", l.prefixedEnv("PROXY_HOST"))
	v.BindEnv("proxy.port", l.prefixedEnv("PROXY_PORT"))

	// Database
	v.BindEnv("database.type", l.prefixedEnv("DB_TYPE"))
	v.BindEnv("database.host", l.prefixedEnv("DB_HOST"))
	v.BindEnv("database.port", l.prefixedEnv("DB_PORT"))
	v.BindEnv("database.user", l.prefixedEnv("DB_USER"))
	v.BindEnv("database.password", l.prefixedEnv("DB_PASSWORD"))
	v.BindEnv("database.database_name", l.prefixedEnv("DB_DATABASE_NAME"))

	// Cache
	v.BindEnv("cache.host", l.prefixedEnv("REDIS_HOST"))
	v.BindEnv("cache.port", l.prefixedEnv("REDIS_PORT"))
	v.BindEnv("cache.password", l.prefixedEnv("REDIS_PASSWORD"))
	v.BindEnv("cache.db", l.prefixedEnv("REDIS_DB"))

	// Exchange routing
	v.BindEnv("exchanges.a", l.prefixedEnv("EXCHANGE_A"))
	v.BindEnv("exchanges.hk", l.prefixedEnv("EXCHANGE_HK"))
	v.BindEnv("exchanges.futures", l.prefixedEnv("EXCHANGE_FUTURES"))
	v.BindEnv("exchanges.crypto", l.prefixedEnv("EXCHANGE_CRYPTO"))
	v.BindEnv("exchanges.us", l.prefixedEnv("EXCHANGE_US"))

	// Futu
	v.BindEnv("futu.host", l.prefixedEnv("FUTU_HOST"))
	v.BindEnv("futu.port", l.prefixedEnv("FUTU_PORT"))
	v.BindEnv("futu.unlock_password", l.prefixedEnv("FUTU_UNLOCK_PASSWORD"))

	// TianQin
	v.BindEnv("tianqin.user", l.prefixedEnv("TIANQIN_USER"))
	v.BindEnv("tianqin.password", l.prefixedEnv("TIANQIN_PASSWORD"))
	v.BindEnv("tianqin.broker_name", l.prefixedEnv("TIANQIN_BROKER_NAME"))
	v.BindEnv("tianqin.broker_account", l.prefixedEnv("TIANQIN_BROKER_ACCOUNT"))
	v.BindEnv("tianqin.broker_password", l.prefixedEnv("TIANQIN_BROKER_PASSWORD"))

	// Crypto exchanges
	v.BindEnv("binance.api_key", l.prefixedEnv("BINANCE_API_KEY"))
	v.BindEnv("binance.secret", l.prefixedEnv("BINANCE_SECRET"))
	v.BindEnv("zb.api_key", l.prefixedEnv("ZB_API_KEY"))
	v.BindEnv("zb.secret", l.prefixedEnv("ZB_SECRET"))

	// US brokerages and data sources
	v.BindEnv("alpaca.api_key", l.prefixedEnv("ALPACA_API_KEY"))
	v.BindEnv("alpaca.secret", l.prefixedEnv("ALPACA_SECRET"))
	v.BindEnv("polygon.api_key", l.prefixedEnv("POLYGON_API_KEY"))
	v.BindEnv("ib.host", l.prefixedEnv("IB_HOST"))
	v.BindEnv("ib.port", l.prefixedEnv("IB_PORT"))
	v.BindEnv("ib.client_id", l.prefixedEnv("IB_CLIENT_ID"))

	// Object storage
	v.BindEnv("object_storage.bucket", l.prefixedEnv("OBJECT_STORAGE_BUCKET"))
	v.BindEnv("object_storage.region", l.prefixedEnv("OBJECT_STORAGE_REGION"))
	v.BindEnv("object_storage.endpoint", l.prefixedEnv("OBJECT_STORAGE_ENDPOINT"))
	v.BindEnv("object_storage.access_key_id", l.prefixedEnv("OBJECT_STORAGE_ACCESS_KEY_ID"))
	v.BindEnv("object_storage.secret_access_key", l.prefixedEnv("OBJECT_STORAGE_SECRET_ACCESS_KEY"))

	// Notify
	v.BindEnv("notify.dingtalk.token", l.prefixedEnv("DINGTALK_TOKEN"))
	v.BindEnv("notify.dingtalk.secret", l.prefixedEnv("DINGTALK_SECRET"))
	v.BindEnv("notify.feishu.app_id", l.prefixedEnv("FEISHU_APP_ID"))
	v.BindEnv("notify.feishu.app_secret", l.prefixedEnv("FEISHU_APP_SECRET"))
	v.BindEnv("notify.feishu.user_id", l.prefixedEnv("FEISHU_USER_ID"))

	// Observability
	v.BindEnv("observability.log_level", l.prefixedEnv("OBSERVABILITY_LOG_LEVEL"))
	v.BindEnv("observability.log_format", l.prefixedEnv("OBSERVABILITY_LOG_FORMAT"))
}

// bindLegacyEnvVars maps legacy env vars to current names when current vars are absent.
func (l *ViperLoader) bindLegacyEnvVars() {
	aliases := []struct {
		currentSuffix string
		legacySuffix  string
	}{
		{"EXCHANGE_CRYPTO", "EXCHANGE_CURRENCY"},
		{"DB_PASSWORD", "DB_PWD"},
		{"TIANQIN_USER", "TQ_USER"},
		{"TIANQIN_PASSWORD", "TQ_PWD"},
		{"DINGTALK_TOKEN", "DINGDING_TOKEN"},
		{"DINGTALK_SECRET", "DINGDING_SECRET"},
		{"WEB_LOGIN_PASSWORD", "WEB_LOGIN_PWD"},
		{"FUTU_UNLOCK_PASSWORD", "FUTU_UNLOCK_PWD"},
	}

	for _, alias := range aliases {
		currentEnv := l.prefixedEnv(alias.currentSuffix)
		if _, hasCurrent := os.LookupEnv(currentEnv); hasCurrent {
			continue
		}
		if legacyValue, hasLegacy := os.LookupEnv(l.prefixedEnv(alias.legacySuffix)); hasLegacy {
			_ = os.Setenv(currentEnv, legacyValue)
		}
	}
}

func (l *ViperLoader) prefixedEnv(suffix string) string {
	prefix := strings.TrimSpace(l.envPrefix)
	if prefix == "" {
		prefix = "APP"
	}
	return fmt.Sprintf("%s_%s", strings.ToUpper(prefix), suffix)
}

// setDefaults sets default values in Viper from the default config
func (l *ViperLoader) setDefaults(v *viper.Viper, cfg *Config) {
	// Web defaults
	v.SetDefault("web.host", cfg.Web.Host)
	v.SetDefault("web.port", cfg.Web.Port)
	v.SetDefault("web.login_password", cfg.Web.LoginPassword)

	// Proxy defaults
	v.SetDefault("proxy.host", cfg.Proxy.Host)
	v.SetDefault("proxy.port", cfg.Proxy.Port)

	// Database defaults
	v.SetDefault("database.type", cfg.Database.Type)
	v.SetDefault("database.host", cfg.Database.Host)
	v.SetDefault("database.port", cfg.Database.Port)
	v.SetDefault("database.user", cfg.Database.User)
	v.SetDefault("database.password", cfg.Database.Password)
	v.SetDefault("database.database_name", cfg.Database.DatabaseName)

	// Cache defaults
	v.SetDefault("cache.host", cfg.Cache.Host)
	v.SetDefault("cache.port", cfg.Cache.Port)
	v.SetDefault("cache.password", cfg.Cache.Password)
	v.SetDefault("cache.db", cfg.Cache.DB)

	// Exchange routing defaults
	v.SetDefault("exchanges.a", cfg.Exchanges.AShare)
	v.SetDefault("exchanges.hk", cfg.Exchanges.HK)
	v.SetDefault("exchanges.futures", cfg.Exchanges.Futures)
	v.SetDefault("exchanges.crypto", cfg.Exchanges.Crypto)
	v.SetDefault("exchanges.us", cfg.Exchanges.US)

	// Futu defaults
	v.SetDefault("futu.host", cfg.Futu.Host)
	v.SetDefault("futu.port", cfg.Futu.Port)
	v.SetDefault("futu.unlock_password", cfg.Futu.UnlockPassword)

	// TianQin defaults
	v.SetDefault("tianqin.user", cfg.TianQin.User)
	v.SetDefault("tianqin.password", cfg.TianQin.Password)
	v.SetDefault("tianqin.broker_name", cfg.TianQin.BrokerName)
	v.SetDefault("tianqin.broker_account", cfg.TianQin.BrokerAccount)
	v.SetDefault("tianqin.broker_password", cfg.TianQin.BrokerPassword)

	// Crypto exchange defaults
	v.SetDefault("binance.api_key", cfg.Binance.APIKey)
	v.SetDefault("binance.secret", cfg.Binance.Secret)
	v.SetDefault("zb.api_key", cfg.ZB.APIKey)
	v.SetDefault("zb.secret", cfg.ZB.Secret)

	// US brokerage defaults
	v.SetDefault("alpaca.api_key", cfg.Alpaca.APIKey)
	v.SetDefault("alpaca.secret", cfg.Alpaca.Secret)
	v.SetDefault("polygon.api_key", cfg.Polygon.APIKey)
	v.SetDefault("ib.host", cfg.IB.Host)
	v.SetDefault("ib.port", cfg.IB.Port)
	v.SetDefault("ib.client_id", cfg.IB.ClientID)

	// Object storage defaults
	v.SetDefault("object_storage.bucket", cfg.ObjectStorage.Bucket)
	v.SetDefault("object_storage.region", cfg.ObjectStorage.Region)
	v.SetDefault("object_storage.endpoint", cfg.ObjectStorage.Endpoint)
	v.SetDefault("object_storage.access_key_id", cfg.ObjectStorage.AccessKeyID)
	v.SetDefault("object_storage.secret_access_key", cfg.ObjectStorage.SecretAccessKey)

	// Notify defaults
	v.SetDefault("notify.dingtalk.token", cfg.Notify.DingTalk.Token)
	v.SetDefault("notify.dingtalk.secret", cfg.Notify.DingTalk.Secret)
	v.SetDefault("notify.feishu.app_id", cfg.Notify.Feishu.AppID)
	v.SetDefault("notify.feishu.app_secret", cfg.Notify.Feishu.AppSecret)
	v.SetDefault("notify.feishu.user_id", cfg.Notify.Feishu.UserID)

	// Watch list defaults
	v.SetDefault("watchlists.a", watchlistDefaults(cfg.Watchlists.AShare))
	v.SetDefault("watchlists.hk", watchlistDefaults(cfg.Watchlists.HK))
	v.SetDefault("watchlists.futures", watchlistDefaults(cfg.Watchlists.Futures))
	v.SetDefault("watchlists.crypto", watchlistDefaults(cfg.Watchlists.Crypto))
	v.SetDefault("watchlists.us", watchlistDefaults(cfg.Watchlists.US))

	// Observability defaults
	v.SetDefault("observability.log_level", cfg.Observability.LogLevel)
	v.SetDefault("observability.log_format", cfg.Observability.LogFormat)
}

// watchlistDefaults converts groups to the map shape viper merges cleanly.
func watchlistDefaults(groups []WatchlistGroup) []map[string]any {
	out := make([]map[string]any, len(groups))
	for i, g := range groups {
		out[i] = map[string]any{
			"display_name": g.DisplayName,
			"short_label":  g.ShortLabel,
		}
	}
	return out
}

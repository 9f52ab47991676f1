package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Verify endpoint defaults
	if cfg.Web.Port != 9900 {
		t.Errorf("expected web port 9900, got %d", cfg.Web.Port)
	}
	if cfg.Database.Type != DatabaseTypeMySQL {
		t.Errorf("expected database type mysql, got %s", cfg.Database.Type)
	}
	if cfg.Database.Port != 3306 {
		t.Errorf("expected database port 3306, got %d", cfg.Database.Port)
	}
	if cfg.Cache.Port != 6379 {
		t.Errorf("expected cache port 6379, got %d", cfg.Cache.Port)
	}

	// Verify exchange routing defaults
	if cfg.Exchanges.AShare != "tdx" {
		t.Errorf("expected a-share provider tdx, got %s", cfg.Exchanges.AShare)
	}
	if cfg.Exchanges.Crypto != "binance" {
		t.Errorf("expected crypto provider binance, got %s", cfg.Exchanges.Crypto)
	}

	// Credential groups are disabled out of the box
	if cfg.Binance.Configured() {
		t.Error("expected binance to be disabled by default")
	}
	if cfg.Futu.Configured() {
		t.Error("expected futu trading to be disabled by default")
	}

	// Verify Observability defaults
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Observability.LogLevel)
	}
	if cfg.Observability.LogFormat != "json" {
		t.Errorf("expected log format 'json', got %s", cfg.Observability.LogFormat)
	}
}

func TestViperLoader_LoadDefaults(t *testing.T) {
	clearAppEnv()
	defer clearAppEnv()

	loader := NewViperLoader("", "APP")
	cfg, err := loader.Load()

	if err != nil {
		t.Fatalf("expected no error loading defaults, got: %v", err)
	}

	if cfg == nil {
		t.Fatal("expected config to be non-nil")
	}

	if cfg.Cache.Port != 6379 {
		t.Errorf("expected cache port 6379, got %d", cfg.Cache.Port)
	}
}

func TestViperLoader_LoadWithEnvOverride(t *testing.T) {
	clearAppEnv()
	defer clearAppEnv()

	os.Setenv("APP_WEB_PORT", "8800")
	os.Setenv("APP_DB_HOST", "db.internal")
	os.Setenv("APP_EXCHANGE_US", "polygon")
	os.Setenv("APP_OBSERVABILITY_LOG_LEVEL", "debug")

	loader := NewViperLoader("", "APP")
	cfg, err := loader.Load()

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.Web.Port != 8800 {
		t.Errorf("expected web port 8800 from env, got %d", cfg.Web.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("expected database host db.internal from env, got %s", cfg.Database.Host)
	}
	if cfg.Exchanges.US != "polygon" {
		t.Errorf("expected us provider polygon from env, got %s", cfg.Exchanges.US)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("expected log level 'debug' from env, got %s", cfg.Observability.LogLevel)
	}
}

func TestViperLoader_LoadFromFile(t *testing.T) {
	clearAppEnv()
	defer clearAppEnv()

	configFile := createTempConfigFile(t, map[string]interface{}{
		"web": map[string]interface{}{
			"port": 9901,
		},
		"database": map[string]interface{}{
			"host":     "10.0.0.5",
			"password": "hunter2",
		},
		"exchanges": map[string]interface{}{
			"a": "baostock",
		},
	})
	defer os.Remove(configFile)

	cfg, err := NewViperLoader(configFile, "APP").Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.Web.Port != 9901 {
		t.Errorf("expected web port 9901 from file, got %d", cfg.Web.Port)
	}
	if cfg.Database.Host != "10.0.0.5" {
		t.Errorf("expected database host 10.0.0.5 from file, got %s", cfg.Database.Host)
	}
	if cfg.Exchanges.AShare != "baostock" {
		t.Errorf("expected a-share provider baostock from file, got %s", cfg.Exchanges.AShare)
	}
	// Untouched sections keep their defaults
	if cfg.Cache.Port != 6379 {
		t.Errorf("expected cache port 6379 from defaults, got %d", cfg.Cache.Port)
	}
}

func TestViperLoader_MissingFileLoadsDefaults(t *testing.T) {
	clearAppEnv()
	defer clearAppEnv()

	missing := filepath.Join(t.TempDir(), "no-such-config.yaml")
	cfg, err := NewViperLoader(missing, "APP").Load()
	if err != nil {
		t.Fatalf("expected missing file to load defaults, got: %v", err)
	}

	defaults := DefaultConfig()
	if !reflect.DeepEqual(cfg, defaults) {
		t.Errorf("expected pure defaults for missing file\ngot:  %+v\nwant: %+v", cfg, defaults)
	}
}

func TestViperLoader_UnparsableFileFails(t *testing.T) {
	clearAppEnv()
	defer clearAppEnv()

	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())
	if _, err := tmpFile.WriteString("web: [unclosed\n"); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	tmpFile.Close()

	if _, err := NewViperLoader(tmpFile.Name(), "APP").Load(); err == nil {
		t.Fatal("expected error for unparsable config file")
	}
}

func TestViperLoader_Overrides(t *testing.T) {
	clearAppEnv()
	defer clearAppEnv()

	loader := NewViperLoader("", "APP").WithOverrides(map[string]any{
		"cache": map[string]any{
			"host": "cache.internal",
		},
		"binance": map[string]any{
			"api_key": "k",
			"secret":  "s",
		},
	})
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.Cache.Host != "cache.internal" {
		t.Errorf("expected cache host cache.internal from overrides, got %s", cfg.Cache.Host)
	}
	if !cfg.Binance.Configured() {
		t.Error("expected binance integration enabled when key and secret are set")
	}
	// Untouched fields still fall back to defaults
	if cfg.Cache.Port != 6379 {
		t.Errorf("expected cache port 6379 from defaults, got %d", cfg.Cache.Port)
	}
}

func TestViperLoader_EnvOverridesFileAndOverrides(t *testing.T) {
	clearAppEnv()
	defer clearAppEnv()

	configFile := createTempConfigFile(t, map[string]interface{}{
		"web": map[string]interface{}{"port": 9001},
	})
	defer os.Remove(configFile)

	os.Setenv("APP_WEB_PORT", "9003")

	loader := NewViperLoader(configFile, "APP").WithOverrides(map[string]any{
		"web": map[string]any{"port": 9002},
	})
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.Web.Port != 9003 {
		t.Errorf("expected env to win with port 9003, got %d", cfg.Web.Port)
	}
}

func TestViperLoader_OverridesWinOverFile(t *testing.T) {
	clearAppEnv()
	defer clearAppEnv()

	configFile := createTempConfigFile(t, map[string]interface{}{
		"web": map[string]interface{}{"port": 9001},
	})
	defer os.Remove(configFile)

	loader := NewViperLoader(configFile, "APP").WithOverrides(map[string]any{
		"web": map[string]any{"port": 9002},
	})
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.Web.Port != 9002 {
		t.Errorf("expected overrides to win with port 9002, got %d", cfg.Web.Port)
	}
}

func TestViperLoader_LegacyEnvAliases(t *testing.T) {
	tests := []struct {
		name   string
		legacy string
		value  string
		check  func(*Config) bool
	}{
		{"crypto routing", "APP_EXCHANGE_CURRENCY", "zb", func(c *Config) bool { return c.Exchanges.Crypto == "zb" }},
		{"database password", "APP_DB_PWD", "pw", func(c *Config) bool { return c.Database.Password == "pw" }},
		{"tianqin user", "APP_TQ_USER", "u1", func(c *Config) bool { return c.TianQin.User == "u1" }},
		{"dingtalk token", "APP_DINGDING_TOKEN", "tok", func(c *Config) bool { return c.Notify.DingTalk.Token == "tok" }},
		{"futu unlock", "APP_FUTU_UNLOCK_PWD", "up", func(c *Config) bool { return c.Futu.UnlockPassword == "up" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearAppEnv()
			defer clearAppEnv()

			os.Setenv(tt.legacy, tt.value)
			cfg, err := NewViperLoader("", "APP").Load()
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if !tt.check(cfg) {
				t.Errorf("legacy env %s=%s was not applied", tt.legacy, tt.value)
			}
		})
	}
}

func TestViperLoader_CurrentEnvWinsOverLegacy(t *testing.T) {
	clearAppEnv()
	defer clearAppEnv()

	os.Setenv("APP_EXCHANGE_CURRENCY", "zb")
	os.Setenv("APP_EXCHANGE_CRYPTO", "binance")

	cfg, err := NewViperLoader("", "APP").Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.Exchanges.Crypto != "binance" {
		t.Errorf("expected current env to win with binance, got %s", cfg.Exchanges.Crypto)
	}
}

func TestViperLoader_CustomEnvPrefix(t *testing.T) {
	clearAppEnv()
	defer os.Unsetenv("QD_WEB_PORT")

	os.Setenv("QD_WEB_PORT", "9500")
	cfg, err := NewViperLoader("", "QD").Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.Web.Port != 9500 {
		t.Errorf("expected web port 9500 from QD_ env, got %d", cfg.Web.Port)
	}
}

func TestViperLoader_SettingsRoundTrip(t *testing.T) {
	clearAppEnv()
	defer clearAppEnv()

	configFile := createTempConfigFile(t, map[string]interface{}{
		"web":      map[string]interface{}{"port": 9901},
		"database": map[string]interface{}{"host": "10.1.1.1"},
		"exchanges": map[string]interface{}{
			"us": "ib",
		},
	})
	defer os.Remove(configFile)

	first, err := NewViperLoader(configFile, "APP").Load()
	if err != nil {
		t.Fatalf("first load failed: %v", err)
	}

	second, err := NewViperLoader("", "APP").WithOverrides(first.Settings()).Load()
	if err != nil {
		t.Fatalf("round-trip load failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("round trip changed the config\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestViperLoader_LoadReturnsFreshValue(t *testing.T) {
	clearAppEnv()
	defer clearAppEnv()

	loader := NewViperLoader("", "APP")
	a, err := loader.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	a.Web.Port = 1

	b, err := loader.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if b.Web.Port != 9900 {
		t.Errorf("mutating one loaded config leaked into the next load, got port %d", b.Web.Port)
	}
}

func TestProperty_ConfigurationPrecedence(t *testing.T) {
	properties := gopter.NewProperties(nil)

	genPort := gen.IntRange(1024, 65535)
	genProvider := gen.OneConstOf("alpaca", "polygon", "ib", "tdx_us")

	properties.Property("ENV overrides file and defaults", prop.ForAll(
		func(envPort, filePort int, envProvider, fileProvider string) bool {
			clearAppEnv()
			defer clearAppEnv()

			configFile := createTempConfigFile(t, map[string]interface{}{
				"web": map[string]interface{}{
					"port": filePort,
				},
				"exchanges": map[string]interface{}{
					"us": fileProvider,
				},
			})
			defer os.Remove(configFile)

			os.Setenv("APP_WEB_PORT", fmt.Sprintf("%d", envPort))
			os.Setenv("APP_EXCHANGE_US", envProvider)

			cfg, err := NewViperLoader(configFile, "APP").Load()
			if err != nil {
				t.Logf("Load error: %v", err)
				return false
			}
			return cfg.Web.Port == envPort && cfg.Exchanges.US == envProvider
		},
		genPort, genPort, genProvider, genProvider,
	))

	properties.Property("File overrides defaults when ENV not set", prop.ForAll(
		func(filePort int, fileProvider string) bool {
			clearAppEnv()
			defer clearAppEnv()

			configFile := createTempConfigFile(t, map[string]interface{}{
				"web": map[string]interface{}{
					"port": filePort,
				},
				"exchanges": map[string]interface{}{
					"us": fileProvider,
				},
			})
			defer os.Remove(configFile)

			cfg, err := NewViperLoader(configFile, "APP").Load()
			if err != nil {
				t.Logf("Load error: %v", err)
				return false
			}
			return cfg.Web.Port == filePort && cfg.Exchanges.US == fileProvider
		},
		genPort, genProvider,
	))

	properties.Property("Defaults used when no file or ENV", prop.ForAll(
		func() bool {
			clearAppEnv()
			defer clearAppEnv()

			defaults := DefaultConfig()
			cfg, err := NewViperLoader("", "APP").Load()
			if err != nil {
				t.Logf("Load error: %v", err)
				return false
			}
			return reflect.DeepEqual(cfg, defaults)
		},
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_SettingsRoundTripIdentity(t *testing.T) {
	properties := gopter.NewProperties(nil)

	genPort := gen.IntRange(1024, 65535)
	genProvider := gen.OneConstOf("tdx", "baostock", "qmt")

	properties.Property("loading a snapshot reproduces the config", prop.ForAll(
		func(webPort, dbPort int, provider string) bool {
			clearAppEnv()
			defer clearAppEnv()

			first, err := NewViperLoader("", "APP").WithOverrides(map[string]any{
				"web":      map[string]any{"port": webPort},
				"database": map[string]any{"port": dbPort},
				"exchanges": map[string]any{
					"a": provider,
				},
			}).Load()
			if err != nil {
				t.Logf("first load error: %v", err)
				return false
			}

			second, err := NewViperLoader("", "APP").WithOverrides(first.Settings()).Load()
			if err != nil {
				t.Logf("round-trip load error: %v", err)
				return false
			}
			return reflect.DeepEqual(first, second)
		},
		genPort, genPort, genProvider,
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_LegacyEnvVariablesWorkAsAliases(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("legacy APP_EXCHANGE_CURRENCY maps to exchanges.crypto", prop.ForAll(
		func(provider string) bool {
			clearAppEnv()
			defer clearAppEnv()
			os.Setenv("APP_EXCHANGE_CURRENCY", provider)
			cfg, err := NewViperLoader("", "APP").Load()
			return err == nil && cfg.Exchanges.Crypto == provider
		},
		gen.OneConstOf("binance", "zb"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Helper function to clear all APP_ environment variables
func clearAppEnv() {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "APP_") {
			key := strings.Split(env, "=")[0]
			os.Unsetenv(key)
		}
	}
}

// Helper function to create a temporary config file
func createTempConfigFile(t *testing.T, config map[string]interface{}) string {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	var content strings.Builder
	writeYAML(&content, config, 0)

	if _, err := tmpFile.WriteString(content.String()); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		t.Fatalf("Failed to write config file: %v", err)
	}

	tmpFile.Close()
	return tmpFile.Name()
}

func writeYAML(w *strings.Builder, data map[string]interface{}, indent int) {
	indentStr := strings.Repeat("  ", indent)
	for key, value := range data {
		switch v := value.(type) {
		case map[string]interface{}:
			w.WriteString(fmt.Sprintf("%s%s:\n", indentStr, key))
			writeYAML(w, v, indent+1)
		default:
			w.WriteString(fmt.Sprintf("%s%s: %v\n", indentStr, key, v))
		}
	}
}

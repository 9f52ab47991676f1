package config

// DefaultConfig returns the configuration with all schema defaults applied.
// Defaults are fixed and deterministic; loading with no file, no overrides,
// and no environment yields exactly this value.
func DefaultConfig() *Config {
	return &Config{
		Web: WebConfig{
			Host:          "0.0.0.0",
			Port:          9900,
			LoginPassword: "",
		},
		Proxy: ProxyConfig{
			Host: "",
			Port: 7890,
		},
		Database: DatabaseConfig{
			Type:         DatabaseTypeMySQL,
			Host:         "127.0.0.1",
			Port:         3306,
			User:         "root",
			Password:     "",
			DatabaseName: "quantdesk",
		},
		Cache: CacheConfig{
			Host:     "127.0.0.1",
			Port:     6379,
			Password: "",
			DB:       0,
		},
		Exchanges: ExchangesConfig{
			AShare:  "tdx",
			HK:      "futu",
			Futures: "tq",
			Crypto:  "binance",
			US:      "alpaca",
		},
		Futu: FutuConfig{
			Host:           "127.0.0.1",
			Port:           11111,
			UnlockPassword: "",
		},
		TianQin: TianQinConfig{},
		Binance: BinanceConfig{},
		ZB:      ZBConfig{},
		Alpaca:  AlpacaConfig{},
		Polygon: PolygonConfig{},
		IB: IBConfig{
			Host:     "",
			Port:     7496,
			ClientID: 1,
		},
		ObjectStorage: ObjectStorageConfig{},
		Notify:        NotifyConfig{},
		Watchlists: WatchlistsConfig{
			AShare: []WatchlistGroup{
				{DisplayName: "watching", ShortLabel: "w"},
				{DisplayName: "holding", ShortLabel: "h"},
			},
			HK: []WatchlistGroup{
				{DisplayName: "watching", ShortLabel: "w"},
				{DisplayName: "holding", ShortLabel: "h"},
			},
			Futures: []WatchlistGroup{
				{DisplayName: "watching", ShortLabel: "w"},
				{DisplayName: "holding", ShortLabel: "h"},
			},
			Crypto: []WatchlistGroup{
				{DisplayName: "watching", ShortLabel: "w"},
				{DisplayName: "holding", ShortLabel: "h"},
			},
			US: []WatchlistGroup{
				{DisplayName: "watching", ShortLabel: "w"},
				{DisplayName: "holding", ShortLabel: "h"},
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}

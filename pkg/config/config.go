package config

// Market identifier constants
const (
	// MarketAShare represents the domestic A-share equity market
	MarketAShare = "a"
	// MarketHK represents the Hong Kong equity market
	MarketHK = "hk"
	// MarketFutures represents the domestic futures market
	MarketFutures = "futures"
	// MarketCrypto represents the crypto-currency market
	MarketCrypto = "crypto"
	// MarketUS represents the US equity market
	MarketUS = "us"
)

// Database type constants
const (
	// DatabaseTypeMySQL represents MySQL database
	DatabaseTypeMySQL = "mysql"
	// DatabaseTypeSQLite represents SQLite database
	DatabaseTypeSQLite = "sqlite"
)

// Markets returns every market identifier in routing order.
func Markets() []string {
	return []string{MarketAShare, MarketHK, MarketFutures, MarketCrypto, MarketUS}
}

// MarketProviders returns the data-source providers accepted for a market.
// An empty slice means the market identifier itself is unknown.
func MarketProviders(market string) []string {
	switch market {
	case MarketAShare:
		return []string{"tdx", "baostock", "qmt"}
	case MarketHK:
		return []string{"futu", "tdx_hk"}
	case MarketFutures:
		return []string{"tq", "tdx_futures"}
	case MarketCrypto:
		return []string{"binance", "zb"}
	case MarketUS:
		return []string{"alpaca", "polygon", "ib", "tdx_us"}
	default:
		return nil
	}
}

// Config is the root configuration structure for the platform. It is built
// once at process start by a loader and never mutated afterwards; any number
// of concurrent readers may share it without synchronization.
type Config struct {
	Web           WebConfig           `mapstructure:"web"`
	Proxy         ProxyConfig         `mapstructure:"proxy"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Exchanges     ExchangesConfig     `mapstructure:"exchanges"`
	Futu          FutuConfig          `mapstructure:"futu"`
	TianQin       TianQinConfig       `mapstructure:"tianqin"`
	Binance       BinanceConfig       `mapstructure:"binance"`
	ZB            ZBConfig            `mapstructure:"zb"`
	Alpaca        AlpacaConfig        `mapstructure:"alpaca"`
	Polygon       PolygonConfig       `mapstructure:"polygon"`
	IB            IBConfig            `mapstructure:"ib"`
	ObjectStorage ObjectStorageConfig `mapstructure:"object_storage"`
	Notify        NotifyConfig        `mapstructure:"notify"`
	Watchlists    WatchlistsConfig    `mapstructure:"watchlists"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// WebConfig configures the operator web console endpoint.
type WebConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	LoginPassword string `mapstructure:"login_password"`
}

// ProxyConfig configures the outbound HTTP proxy used by overseas
// data-source connectors. An empty host disables the proxy.
type ProxyConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Enabled reports whether connectors should route through the proxy.
func (c ProxyConfig) Enabled() bool {
	return c.Host != ""
}

// DatabaseConfig configures the kline/history database endpoint.
type DatabaseConfig struct {
	Type         string `mapstructure:"type"` // mysql, sqlite
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DatabaseName string `mapstructure:"database_name"`
}

// CacheConfig configures the Redis-style cache endpoint.
type CacheConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ExchangesConfig routes each market to one data-source provider. Every
// value must be a member of the market's provider set (see MarketProviders).
type ExchangesConfig struct {
	AShare  string `mapstructure:"a"`       // tdx, baostock, qmt
	HK      string `mapstructure:"hk"`      // futu, tdx_hk
	Futures string `mapstructure:"futures"` // tq, tdx_futures
	Crypto  string `mapstructure:"crypto"`  // binance, zb
	US      string `mapstructure:"us"`      // alpaca, polygon, ib, tdx_us
}

// Market returns the routed provider for a market identifier.
func (c ExchangesConfig) Market(market string) string {
	switch market {
	case MarketAShare:
		return c.AShare
	case MarketHK:
		return c.HK
	case MarketFutures:
		return c.Futures
	case MarketCrypto:
		return c.Crypto
	case MarketUS:
		return c.US
	default:
		return ""
	}
}

// FutuConfig configures the Futu OpenD brokerage gateway.
type FutuConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	UnlockPassword string `mapstructure:"unlock_password"`
}

// Configured reports whether the gateway can be unlocked for trading.
func (c FutuConfig) Configured() bool {
	return c.UnlockPassword != ""
}

// TianQinConfig configures the TianQin futures account.
type TianQinConfig struct {
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	BrokerName     string `mapstructure:"broker_name"`
	BrokerAccount  string `mapstructure:"broker_account"`
	BrokerPassword string `mapstructure:"broker_password"`
}

// Configured reports whether the futures account credentials are present.
func (c TianQinConfig) Configured() bool {
	return c.User != "" && c.Password != ""
}

// BinanceConfig configures Binance exchange API credentials.
type BinanceConfig struct {
	APIKey string `mapstructure:"api_key"`
	Secret string `mapstructure:"secret"`
}

// Configured reports whether the exchange integration is enabled.
func (c BinanceConfig) Configured() bool {
	return c.APIKey != "" && c.Secret != ""
}

// ZBConfig configures ZB exchange API credentials.
type ZBConfig struct {
	APIKey string `mapstructure:"api_key"`
	Secret string `mapstructure:"secret"`
}

// Configured reports whether the exchange integration is enabled.
func (c ZBConfig) Configured() bool {
	return c.APIKey != "" && c.Secret != ""
}

// AlpacaConfig configures Alpaca brokerage API credentials.
type AlpacaConfig struct {
	APIKey string `mapstructure:"api_key"`
	Secret string `mapstructure:"secret"`
}

// Configured reports whether the brokerage integration is enabled.
func (c AlpacaConfig) Configured() bool {
	return c.APIKey != "" && c.Secret != ""
}

// PolygonConfig configures the Polygon market-data API.
type PolygonConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// Configured reports whether the data-source integration is enabled.
func (c PolygonConfig) Configured() bool {
	return c.APIKey != ""
}

// IBConfig configures the Interactive Brokers TWS/Gateway endpoint.
type IBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	ClientID int    `mapstructure:"client_id"`
}

// Configured reports whether the gateway endpoint has been set.
func (c IBConfig) Configured() bool {
	return c.Host != ""
}

// ObjectStorageConfig configures S3-compatible cloud storage used for
// exported reports and chart snapshots.
type ObjectStorageConfig struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// Configured reports whether the storage integration is enabled.
func (c ObjectStorageConfig) Configured() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// NotifyConfig configures outbound alert webhooks.
type NotifyConfig struct {
	DingTalk DingTalkConfig `mapstructure:"dingtalk"`
	Feishu   FeishuConfig   `mapstructure:"feishu"`
}

// DingTalkConfig configures the DingTalk group-robot webhook.
type DingTalkConfig struct {
	Token  string `mapstructure:"token"`
	Secret string `mapstructure:"secret"`
}

// Configured reports whether the webhook integration is enabled.
func (c DingTalkConfig) Configured() bool {
	return c.Token != ""
}

// FeishuConfig configures the Feishu app used for alert messages.
type FeishuConfig struct {
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
	UserID    string `mapstructure:"user_id"`
}

// Configured reports whether the webhook integration is enabled.
func (c FeishuConfig) Configured() bool {
	return c.AppID != "" && c.AppSecret != ""
}

// WatchlistsConfig holds the ordered watch-list groups per market.
type WatchlistsConfig struct {
	AShare  []WatchlistGroup `mapstructure:"a"`
	HK      []WatchlistGroup `mapstructure:"hk"`
	Futures []WatchlistGroup `mapstructure:"futures"`
	Crypto  []WatchlistGroup `mapstructure:"crypto"`
	US      []WatchlistGroup `mapstructure:"us"`
}

// Market returns the watch-list groups for a market identifier.
func (c WatchlistsConfig) Market(market string) []WatchlistGroup {
	switch market {
	case MarketAShare:
		return c.AShare
	case MarketHK:
		return c.HK
	case MarketFutures:
		return c.Futures
	case MarketCrypto:
		return c.Crypto
	case MarketUS:
		return c.US
	default:
		return nil
	}
}

// WatchlistGroup names one operator-defined watch-list group. DisplayName is
// required and unique within its market; ShortLabel may be empty.
type WatchlistGroup struct {
	DisplayName string `mapstructure:"display_name"`
	ShortLabel  string `mapstructure:"short_label"`
}

// ObservabilityConfig configures logging for platform tooling.
type ObservabilityConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // json, text
}

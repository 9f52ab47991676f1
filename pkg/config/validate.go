package config

import "fmt"

// Validate delegates to Config.Validate so callers holding only the Loader
// interface can re-check a mutated copy.
func (l *ViperLoader) Validate(cfg *Config) error {
	return cfg.Validate()
}

// Validate checks every field against its schema rule and collects all
// failures before reporting. Returns nil or a *ValidationError listing
// every offending field.
func (c *Config) Validate() error {
	var fields []FieldError

	fields = appendPortError(fields, "web.port", c.Web.Port)
	fields = appendPortError(fields, "proxy.port", c.Proxy.Port)
	fields = appendPortError(fields, "database.port", c.Database.Port)
	fields = appendPortError(fields, "cache.port", c.Cache.Port)
	fields = appendPortError(fields, "futu.port", c.Futu.Port)
	fields = appendPortError(fields, "ib.port", c.IB.Port)

	validDatabaseTypes := []string{DatabaseTypeMySQL, DatabaseTypeSQLite}
	if !contains(validDatabaseTypes, c.Database.Type) {
		fields = append(fields, FieldError{
			Field:  "database.type",
			Reason: fmt.Sprintf("invalid type %q (must be one of: %v)", c.Database.Type, validDatabaseTypes),
		})
	}

	if c.Cache.DB < 0 {
		fields = append(fields, FieldError{
			Field:  "cache.db",
			Reason: fmt.Sprintf("invalid db index %d (must be >= 0)", c.Cache.DB),
		})
	}

	for _, market := range Markets() {
		providers := MarketProviders(market)
		if provider := c.Exchanges.Market(market); !contains(providers, provider) {
			fields = append(fields, FieldError{
				Field:  "exchanges." + market,
				Reason: fmt.Sprintf("invalid provider %q (must be one of: %v)", provider, providers),
			})
		}
	}

	for _, market := range Markets() {
		fields = append(fields, watchlistErrors(market, c.Watchlists.Market(market))...)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Observability.LogLevel) {
		fields = append(fields, FieldError{
			Field:  "observability.log_level",
			Reason: fmt.Sprintf("invalid level %q (must be one of: %v)", c.Observability.LogLevel, validLogLevels),
		})
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.Observability.LogFormat) {
		fields = append(fields, FieldError{
			Field:  "observability.log_format",
			Reason: fmt.Sprintf("invalid format %q (must be one of: %v)", c.Observability.LogFormat, validLogFormats),
		})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func appendPortError(fields []FieldError, field string, port int) []FieldError {
	if port < 1 || port > 65535 {
		fields = append(fields, FieldError{
			Field:  field,
			Reason: fmt.Sprintf("invalid port %d (must be 1-65535)", port),
		})
	}
	return fields
}

// watchlistErrors enforces required, unique display names within a market.
func watchlistErrors(market string, groups []WatchlistGroup) []FieldError {
	var fields []FieldError
	seen := make(map[string]bool, len(groups))
	for i, g := range groups {
		field := fmt.Sprintf("watchlists.%s[%d].display_name", market, i)
		if g.DisplayName == "" {
			fields = append(fields, FieldError{Field: field, Reason: "display_name is required"})
			continue
		}
		if seen[g.DisplayName] {
			fields = append(fields, FieldError{
				Field:  field,
				Reason: fmt.Sprintf("duplicate display_name %q", g.DisplayName),
			})
		}
		seen[g.DisplayName] = true
	}
	return fields
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

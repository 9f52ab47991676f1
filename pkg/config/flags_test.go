package config

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestRegisterFlags_DeclaresScalarKeys(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)

	for _, key := range []string{"web.port", "database.host", "exchanges.a", "cache.db"} {
		if flags.Lookup(key) == nil {
			t.Errorf("expected flag %s to be registered", key)
		}
	}
	// Slice-valued keys stay file-only
	if flags.Lookup("watchlists.a") != nil {
		t.Error("did not expect a flag for watchlists.a")
	}
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	clearAppEnv()
	defer clearAppEnv()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	if err := flags.Parse([]string{"--web.port=9905", "--exchanges.us=ib"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := NewViperLoader("", "APP").
		WithOverrides(map[string]any{"web": map[string]any{"port": 9001}}).
		WithFlags(flags).
		Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.Web.Port != 9905 {
		t.Errorf("expected flag to win with port 9905, got %d", cfg.Web.Port)
	}
	if cfg.Exchanges.US != "ib" {
		t.Errorf("expected flag to set us provider ib, got %s", cfg.Exchanges.US)
	}
}

func TestLoad_UnchangedFlagsDoNotShadow(t *testing.T) {
	clearAppEnv()
	defer clearAppEnv()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	if err := flags.Parse(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := NewViperLoader("", "APP").
		WithOverrides(map[string]any{"web": map[string]any{"port": 9001}}).
		WithFlags(flags).
		Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.Web.Port != 9001 {
		t.Errorf("expected override port 9001 with unchanged flags, got %d", cfg.Web.Port)
	}
}

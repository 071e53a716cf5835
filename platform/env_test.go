package platform

import (
	"context"
	"testing"
)

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func TestEnvReader_DevSignals(t *testing.T) {
	reader := NewEnvReader(Config{NetworkID: "WXYZ-12345", SitePath: "sites/testsite1dev"}).
		WithLookup(mapLookup(map[string]string{
			EnvSiteEnvironment: "dev",
			EnvSiteDatabase:    "testsite1db",
		}))
	signals, err := reader.Signals(context.Background())
	if err != nil {
		t.Fatalf("signals: %v", err)
	}
	if signals.NetworkID != "WXYZ-12345" || signals.EnvironmentName != "dev" {
		t.Fatalf("unexpected signals %#v", signals)
	}
	if signals.SiteFolder != "testsite1dev" || signals.DatabaseName != "testsite1db" {
		t.Fatalf("unexpected folder/database %#v", signals)
	}
	if signals.ProductionFlag {
		t.Fatalf("expected production flag unset")
	}
}

func TestEnvReader_ProductionFlag(t *testing.T) {
	for value, want := range map[string]bool{"1": true, "true": true, "yes": true, "0": false, "": false, "FALSE": false} {
		reader := NewEnvReader(Config{}).WithLookup(mapLookup(map[string]string{EnvProduction: value}))
		signals, _ := reader.Signals(context.Background())
		if signals.ProductionFlag != want {
			t.Fatalf("AH_PRODUCTION=%q: expected %v", value, want)
		}
	}
}

func TestEnvReader_Defaults(t *testing.T) {
	reader := NewEnvReader(Config{DatabaseName: "configured_db"}).WithLookup(mapLookup(nil))
	signals, _ := reader.Signals(context.Background())
	if signals.EnvironmentName != "" {
		t.Fatalf("expected absent environment, got %q", signals.EnvironmentName)
	}
	if signals.SiteFolder != "default" {
		t.Fatalf("expected default site folder, got %q", signals.SiteFolder)
	}
	if signals.DatabaseName != "configured_db" {
		t.Fatalf("expected configured database, got %q", signals.DatabaseName)
	}
}

func TestEnvReader_EnvSitePathWins(t *testing.T) {
	reader := NewEnvReader(Config{SitePath: "sites/configured"}).
		WithLookup(mapLookup(map[string]string{EnvSitePath: "/var/www/docroot/sites/fromenv/"}))
	signals, _ := reader.Signals(context.Background())
	if signals.SiteFolder != "fromenv" {
		t.Fatalf("expected env site path, got %q", signals.SiteFolder)
	}
}

func TestSiteFolder(t *testing.T) {
	cases := map[string]string{
		"sites/default":  "default",
		"example":        "example",
		"sites/example/": "example",
		"":               "",
	}
	for input, want := range cases {
		if got := SiteFolder(input); got != want {
			t.Fatalf("SiteFolder(%q)=%q, want %q", input, got, want)
		}
	}
}

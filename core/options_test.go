package core

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type fixedConfigProvider struct {
	cfg Config
}

func (p *fixedConfigProvider) Load(context.Context, Config) (Config, error) {
	return p.cfg, nil
}

type fixedOptionsResolver struct {
	cfg Config
}

func (r *fixedOptionsResolver) Resolve(Config, Config, Config) (Config, error) {
	return r.cfg, nil
}

type failingConfigProvider struct {
	err error
}

func (p failingConfigProvider) Load(context.Context, Config) (Config, error) {
	return Config{}, p.err
}

func TestNewService_DefaultDependencies(t *testing.T) {
	svc, err := NewService(Config{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	deps := svc.Dependencies()
	if deps.Logger == nil {
		t.Fatalf("expected default logger")
	}
	if deps.LoggerProvider == nil {
		t.Fatalf("expected default logger provider")
	}
	if deps.ErrorFactory == nil || deps.ErrorMapper == nil {
		t.Fatalf("expected default error factory and mapper")
	}
	if deps.ConfigProvider == nil || deps.OptionsResolver == nil {
		t.Fatalf("expected default config provider and options resolver")
	}
	if deps.Directory == nil {
		t.Fatalf("expected empty directory default")
	}
	cfg := svc.Config()
	if cfg.ServiceName != "searchcore" {
		t.Fatalf("expected default service_name=searchcore, got %q", cfg.ServiceName)
	}
	if cfg.Directory.CacheTTL != DefaultDirectoryCacheTTL || cfg.Directory.Timeout != DefaultDirectoryTimeout {
		t.Fatalf("expected default directory durations, got %#v", cfg.Directory)
	}
	if cfg.Search.Scheme != "http" {
		t.Fatalf("expected default scheme http, got %q", cfg.Search.Scheme)
	}
}

func TestNewService_WithXOverrides(t *testing.T) {
	customLogger := stubLogger{}
	customProvider := stubLoggerProvider{logger: customLogger}
	customFactory := func(message string, category ...goerrors.Category) *goerrors.Error {
		return goerrors.New("custom:"+message, category...)
	}
	sentinel := errors.New("sentinel")
	customMapper := func(error) *goerrors.Error {
		return goerrors.Wrap(sentinel, goerrors.CategoryOperation, "mapped")
	}
	directory := &staticDirectory{}
	overrides := staticOverrideSource{}
	configProvider := &fixedConfigProvider{cfg: Config{ServiceName: "from-provider"}}
	optionsResolver := &fixedOptionsResolver{cfg: Config{ServiceName: "resolved"}}

	svc, err := NewService(Config{ServiceName: "runtime"},
		WithLogger(customLogger),
		WithLoggerProvider(customProvider),
		WithErrorFactory(customFactory),
		WithErrorMapper(customMapper),
		WithDirectory(directory),
		WithOverrideSource(overrides),
		WithSignalsReader(staticSignals(IdentitySignals{NetworkID: "N"})),
		WithConfigProvider(configProvider),
		WithOptionsResolver(optionsResolver),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	deps := svc.Dependencies()
	if deps.Logger != customLogger {
		t.Fatalf("expected custom logger override")
	}
	if resolved := deps.LoggerProvider.GetLogger("searchcore.override"); resolved != customLogger {
		t.Fatalf("expected logger provider to resolve custom logger")
	}
	if deps.Directory != directory {
		t.Fatalf("expected custom directory override")
	}
	if deps.SignalsReader == nil || deps.OverrideSource == nil {
		t.Fatalf("expected signals reader and override source to be set")
	}
	if deps.ConfigProvider != configProvider || deps.OptionsResolver != optionsResolver {
		t.Fatalf("expected custom config provider and options resolver")
	}
	if got := svc.Config().ServiceName; got != "resolved" {
		t.Fatalf("expected options resolver output config, got %q", got)
	}
}

func TestNewService_ConfigLayeringPrecedence(t *testing.T) {
	provider := NewCfgxConfigProvider(mapRawLoader{values: map[string]any{
		"service_name": "from-config",
		"directory": map[string]any{
			"host":      "https://directory.example",
			"cache_ttl": time.Hour,
		},
		"subscription": map[string]any{
			"network_id": "WXYZ-12345",
		},
	}})

	svc, err := NewService(Config{
		ServiceName: "from-runtime",
		Search:      SearchConfig{DefaultHost: "runtime.search.example"},
	}, WithConfigProvider(provider))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	cfg := svc.Config()
	if cfg.ServiceName != "from-runtime" {
		t.Fatalf("expected runtime value to override config/default, got %q", cfg.ServiceName)
	}
	if cfg.Directory.Host != "https://directory.example" {
		t.Fatalf("expected config layer directory host, got %q", cfg.Directory.Host)
	}
	if cfg.Directory.CacheTTL != time.Hour {
		t.Fatalf("expected config layer cache ttl, got %s", cfg.Directory.CacheTTL)
	}
	if cfg.Directory.Timeout != DefaultDirectoryTimeout {
		t.Fatalf("expected default timeout to survive, got %s", cfg.Directory.Timeout)
	}
	if cfg.Subscription.NetworkID != "WXYZ-12345" {
		t.Fatalf("expected network id from config, got %q", cfg.Subscription.NetworkID)
	}
	if cfg.Search.DefaultHost != "runtime.search.example" {
		t.Fatalf("expected runtime search host, got %q", cfg.Search.DefaultHost)
	}
}

func TestNewService_ConfigProviderFailureIsMapped(t *testing.T) {
	_, err := NewService(Config{}, WithConfigProvider(failingConfigProvider{err: errors.New("config source invalid")}))
	if err == nil {
		t.Fatalf("expected config failure")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected go-errors type, got %T", err)
	}
	if richErr.TextCode != ServiceErrorBadInput {
		t.Fatalf("expected bad input text code, got %q", richErr.TextCode)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate: %v", err)
	}
	cfg.Search.Scheme = "ftp"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid scheme error")
	}
	cfg = DefaultConfig()
	cfg.Directory.CacheTTL = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected negative ttl error")
	}
	if err := (DirectoryConfig{Host: "h"}).Validate(); err == nil {
		t.Fatalf("expected api_key required")
	}
}

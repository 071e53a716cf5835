package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

const (
	scopeDefaults = "defaults"
	scopeConfig   = "config"
	scopeRuntime  = "runtime"
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type serviceBuilder struct {
	runtimeConfig   Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	directory       DirectoryLister
	signalsReader   SignalsReader
	overrideSource  OverrideSource
}

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *serviceBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *serviceBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithDirectory(directory DirectoryLister) Option {
	return func(b *serviceBuilder) {
		b.directory = directory
	}
}

func WithSignalsReader(reader SignalsReader) Option {
	return func(b *serviceBuilder) {
		b.signalsReader = reader
	}
}

func WithOverrideSource(source OverrideSource) Option {
	return func(b *serviceBuilder) {
		b.overrideSource = source
	}
}

func defaultServiceBuilder(runtime Config) serviceBuilder {
	loggerProvider, logger := glog.Resolve("searchcore", nil, nil)
	return serviceBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorFactory:    goerrors.New,
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return serviceErrorMapper(err)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// NewStaticConfigLoader serves a fixed raw configuration map.
func NewStaticConfigLoader(values map[string]any) RawConfigLoader {
	return staticRawConfigLoader{Values: values}
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	return buildConfig(raw, defaults)
}

// buildConfig decodes a raw map over defaults and validates the result.
func buildConfig(raw map[string]any, defaults Config) (Config, error) {
	return cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
}

// GoOptionsResolver merges defaults, loaded config and runtime overrides
// with go-options. Higher priority scopes win key by key; only the
// defaults layer carries zero values.
type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(opts.NewScope(scopeDefaults, 0), configToLayerMap(defaults, true), opts.WithSnapshotID[map[string]any](scopeDefaults)),
		opts.NewLayer(opts.NewScope(scopeConfig, 10), configToLayerMap(loaded, false), opts.WithSnapshotID[map[string]any](scopeConfig)),
		opts.NewLayer(opts.NewScope(scopeRuntime, 20), configToLayerMap(runtime, false), opts.WithSnapshotID[map[string]any](scopeRuntime)),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	return buildConfig(merged.Value, defaults)
}

// configToLayerMap only emits non-zero values for the config and runtime
// layers so they never mask lower layers with zero values.
func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}

	directory := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Directory.Host) != "" {
		directory["host"] = cfg.Directory.Host
	}
	if includeZero || strings.TrimSpace(cfg.Directory.APIKey) != "" {
		directory["api_key"] = cfg.Directory.APIKey
	}
	if includeZero || cfg.Directory.Timeout > 0 {
		directory["timeout"] = cfg.Directory.Timeout
	}
	if includeZero || cfg.Directory.CacheTTL > 0 {
		directory["cache_ttl"] = cfg.Directory.CacheTTL
	}
	if len(directory) > 0 {
		layer["directory"] = directory
	}

	search := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Search.DefaultHost) != "" {
		search["default_host"] = cfg.Search.DefaultHost
	}
	if includeZero || strings.TrimSpace(cfg.Search.Scheme) != "" {
		search["scheme"] = cfg.Search.Scheme
	}
	if len(search) > 0 {
		layer["search"] = search
	}

	if includeZero || strings.TrimSpace(cfg.Subscription.NetworkID) != "" {
		layer["subscription"] = map[string]any{
			"network_id": cfg.Subscription.NetworkID,
		}
	}
	if includeZero || cfg.AutoSwitch.Disabled {
		layer["auto_switch"] = map[string]any{
			"disabled": cfg.AutoSwitch.Disabled,
		}
	}
	return layer
}

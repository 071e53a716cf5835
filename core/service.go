package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service runs the resolution pipeline. It keeps no resolver state between
// calls: every Resolve recomputes signals, outcome and decision.
type Service struct {
	config          Config
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
	resolver        CoreResolver
	policy          ConnectionPolicy
	gate            ReadOnlyGate
}

type ServiceDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ErrorFactory    ErrorFactory
	ErrorMapper     ErrorMapper
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
	Directory       DirectoryLister
	SignalsReader   SignalsReader
	OverrideSource  OverrideSource
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("searchcore", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("searchcore"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.directory == nil {
		builder.directory = emptyDirectory{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	return &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorFactory:    builder.errorFactory,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		directory:       builder.directory,
		signalsReader:   builder.signalsReader,
		overrideSource:  builder.overrideSource,
		resolver:        NewCoreResolver(),
		policy:          NewConnectionPolicy(),
		gate:            NewReadOnlyGate(),
	}, nil
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:          s.logger,
		LoggerProvider:  s.loggerProvider,
		MetricsRecorder: s.metricsRecorder,
		ErrorFactory:    s.errorFactory,
		ErrorMapper:     s.errorMapper,
		ConfigProvider:  s.configProvider,
		OptionsResolver: s.optionsResolver,
		Directory:       s.directory,
		SignalsReader:   s.signalsReader,
		OverrideSource:  s.overrideSource,
	}
}

// Resolve computes the connection decision for the running deployment.
// Directory and override store failures degrade toward read-only; only a
// missing or failing signals reader is returned as an error.
func (s *Service) Resolve(ctx context.Context) (resolution Resolution, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		if err == nil {
			for key, value := range resolution.Decision.Map() {
				fields[key] = value
			}
			if resolution.Outcome.Matched {
				fields["matched_by"] = string(resolution.Outcome.MatchedBy)
			}
		}
		s.observeOperation(ctx, startedAt, "resolve", err, fields)
	}()

	if s == nil {
		return Resolution{}, fmt.Errorf("core: service is nil")
	}
	if s.signalsReader == nil {
		err = s.mapError(ErrSignalsReaderRequired)
		return Resolution{}, err
	}
	signals, readErr := s.signalsReader.Signals(ctx)
	if readErr != nil {
		err = s.mapError(readErr)
		return Resolution{}, err
	}
	signals = signals.Normalize()
	if signals.NetworkID == "" {
		signals.NetworkID = strings.TrimSpace(s.config.Subscription.NetworkID)
	}
	if err = signals.Validate(); err != nil {
		err = s.mapError(err)
		return Resolution{}, err
	}
	fields["network_id"] = signals.NetworkID
	fields["environment"] = signals.EnvironmentName

	return s.ResolveWith(ctx, signals), nil
}

// ResolveWith runs the pipeline for explicit signals.
func (s *Service) ResolveWith(ctx context.Context, signals IdentitySignals) Resolution {
	signals = signals.Normalize()

	var outcome ResolutionOutcome
	autoSwitchDisabled := s.config.AutoSwitch.Disabled
	if !autoSwitchDisabled {
		// the directory copy is local to this call
		directory := s.directory.ListCores(ctx, signals.NetworkID)
		outcome = s.resolver.Resolve(directory, signals)
	}

	override := s.loadOverride(ctx)
	decision := s.policy.Decide(outcome, signals, override, autoSwitchDisabled)
	endpoint, ok := BuildEndpoint(decision, s.config.Search)
	if decision.ReadOnly() {
		s.logWarn(ctx, "search core is read-only", map[string]any{
			"network_id": signals.NetworkID,
			"core_id":    decision.FallbackCoreID,
			"reason":     decision.Reason,
		})
	}

	return Resolution{
		Signals:     signals,
		Outcome:     outcome,
		Decision:    decision,
		Endpoint:    endpoint,
		HasEndpoint: ok,
	}
}

// BeforeMutation consults the read-only gate and records rejections.
func (s *Service) BeforeMutation(ctx context.Context, decision ConnectionDecision, op MutationKind) error {
	if err := op.Validate(); err != nil {
		return s.mapError(err)
	}
	err := s.gate.BeforeMutation(decision, op)
	if err == nil {
		return nil
	}
	tags := map[string]string{
		"operation": string(op),
		"decision":  string(decision.Kind),
	}
	s.recordCounter(ctx, "searchcore.mutation.rejected", 1, tags)
	s.logError(ctx, "mutation rejected", map[string]any{
		"operation": string(op),
		"core_id":   decision.FallbackCoreID,
		"reason":    decision.Reason,
	})
	return err
}

func (s *Service) loadOverride(ctx context.Context) *OverrideConfig {
	if s.overrideSource == nil {
		return nil
	}
	override, err := s.overrideSource.Override(ctx)
	if err != nil {
		s.logError(ctx, "override lookup failed", map[string]any{
			"error":           err.Error(),
			"error_text_code": ServiceErrorOverrideStoreFailure,
		})
		return nil
	}
	if override == nil || override.IsZero() {
		return nil
	}
	cloned := override.Clone()
	return &cloned
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

type emptyDirectory struct{}

func (emptyDirectory) ListCores(context.Context, string) []CoreDescriptor {
	return nil
}

package searchcore

import "github.com/goliatone/go-searchcore/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type IdentitySignals = core.IdentitySignals
type CoreDescriptor = core.CoreDescriptor
type OverrideConfig = core.OverrideConfig
type ConnectionDecision = core.ConnectionDecision
type Resolution = core.Resolution
type Endpoint = core.Endpoint
type MutationKind = core.MutationKind

type DirectoryLister = core.DirectoryLister
type KeyLister = core.KeyLister
type DirectoryWarmer = core.DirectoryWarmer
type SignalsReader = core.SignalsReader
type OverrideSource = core.OverrideSource
type OverrideStore = core.OverrideStore

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorFactory    = core.WithErrorFactory
	WithErrorMapper     = core.WithErrorMapper
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithDirectory       = core.WithDirectory
	WithSignalsReader   = core.WithSignalsReader
	WithOverrideSource  = core.WithOverrideSource
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}

package core

import (
	"context"
	"sync"
)

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

type staticDirectory struct {
	mu       sync.Mutex
	cores    []CoreDescriptor
	requests []string
}

func (d *staticDirectory) ListCores(_ context.Context, networkID string) []CoreDescriptor {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, networkID)
	return append([]CoreDescriptor(nil), d.cores...)
}

func (d *staticDirectory) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.requests)
}

type staticOverrideSource struct {
	override *OverrideConfig
	err      error
}

func (s staticOverrideSource) Override(context.Context) (*OverrideConfig, error) {
	return s.override, s.err
}

func staticSignals(signals IdentitySignals) SignalsReader {
	return SignalsReaderFunc(func(context.Context) (IdentitySignals, error) {
		return signals, nil
	})
}

func v3Core(id string, host string) CoreDescriptor {
	return CoreDescriptor{CoreID: id, Hostname: host, APIVersion: APIVersionV3}
}

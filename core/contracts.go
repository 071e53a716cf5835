package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type TransportRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Query   map[string]string
	Body    []byte
	Timeout time.Duration
	// MaxResponseBodyBytes overrides the adapter limit when positive.
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// CacheEntry is one stored directory snapshot. Entries at or after ExpireAt
// are treated as absent.
type CacheEntry struct {
	Data     []byte    `json:"data"`
	ExpireAt time.Time `json:"expire_at"`
}

func (e CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpireAt)
}

type Cache interface {
	Get(ctx context.Context, key string) (CacheEntry, bool, error)
	Set(ctx context.Context, key string, entry CacheEntry) error
}

// DirectoryLister never fails: transport problems surface as an empty listing.
type DirectoryLister interface {
	ListCores(ctx context.Context, networkID string) []CoreDescriptor
}

type KeyLister interface {
	GetKeys(ctx context.Context, coreID string, networkID string) KeySet
}

type DirectoryWarmer interface {
	Warm(ctx context.Context, networkID string) error
}

type SignalsReader interface {
	Signals(ctx context.Context) (IdentitySignals, error)
}

type SignalsReaderFunc func(ctx context.Context) (IdentitySignals, error)

func (f SignalsReaderFunc) Signals(ctx context.Context) (IdentitySignals, error) {
	return f(ctx)
}

// OverrideSource returns nil when no operator override is configured.
type OverrideSource interface {
	Override(ctx context.Context) (*OverrideConfig, error)
}

type OverrideStore interface {
	OverrideSource
	SetOverride(ctx context.Context, override OverrideConfig) error
	ClearOverride(ctx context.Context) error
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type ResolutionService interface {
	Resolve(ctx context.Context) (Resolution, error)
	BeforeMutation(ctx context.Context, decision ConnectionDecision, op MutationKind) error
}

type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

package gojob

import (
	"context"
	"strings"

	"github.com/goliatone/go-job/queue/worker"
	"github.com/goliatone/go-searchcore/adapters/gologger"
	"github.com/goliatone/go-searchcore/core"
)

const (
	metricRefreshStarted   = "searchcore.refresh.started"
	metricRefreshSucceeded = "searchcore.refresh.succeeded"
	metricRefreshFailed    = "searchcore.refresh.failed"
	metricRefreshRetried   = "searchcore.refresh.retried"
	metricRefreshDuration  = "searchcore.refresh.duration_ms"
)

// RefreshHook records warm job outcomes. It can be installed on a go-job
// worker or on RefreshConsumer.
type RefreshHook struct {
	metrics core.MetricsRecorder
	logger  core.Logger
}

func NewRefreshHook(metrics core.MetricsRecorder, logger core.Logger) *RefreshHook {
	if metrics == nil {
		metrics = core.NopMetricsRecorder{}
	}
	_, logger = gologger.Resolve(gologger.ComponentRefresh, nil, logger)
	return &RefreshHook{metrics: metrics, logger: logger}
}

func (h *RefreshHook) OnStart(ctx context.Context, event worker.Event) {
	if h == nil {
		return
	}
	h.metrics.IncCounter(ctx, metricRefreshStarted, 1, eventTags(event))
}

func (h *RefreshHook) OnSuccess(ctx context.Context, event worker.Event) {
	if h == nil {
		return
	}
	tags := eventTags(event)
	h.metrics.IncCounter(ctx, metricRefreshSucceeded, 1, tags)
	h.metrics.ObserveHistogram(ctx, metricRefreshDuration, float64(event.Duration.Milliseconds()), tags)
}

func (h *RefreshHook) OnFailure(ctx context.Context, event worker.Event) {
	if h == nil {
		return
	}
	tags := eventTags(event)
	h.metrics.IncCounter(ctx, metricRefreshFailed, 1, tags)
	h.metrics.ObserveHistogram(ctx, metricRefreshDuration, float64(event.Duration.Milliseconds()), tags)
	fields := []any{"network_id", tags["network_id"], "attempt", event.Attempt}
	if event.Err != nil {
		fields = append(fields, "error", event.Err.Error())
	}
	h.logger.Error("directory refresh gave up", fields...)
}

func (h *RefreshHook) OnRetry(ctx context.Context, event worker.Event) {
	if h == nil {
		return
	}
	h.metrics.IncCounter(ctx, metricRefreshRetried, 1, eventTags(event))
}

func eventTags(event worker.Event) map[string]string {
	tags := map[string]string{"job_id": JobIDDirectoryWarm}
	message := event.Message
	if message == nil && event.Delivery != nil {
		message = event.Delivery.Message()
	}
	if message == nil {
		return tags
	}
	if id := strings.TrimSpace(message.JobID); id != "" {
		tags["job_id"] = id
	}
	if networkID, ok := message.Parameters[ParamNetworkID].(string); ok {
		tags["network_id"] = strings.TrimSpace(networkID)
	}
	return tags
}

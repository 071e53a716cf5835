// Package gojob carries directory warm jobs over go-job queues.
package gojob

import (
	"context"
	"fmt"
	"strings"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
	"github.com/goliatone/go-searchcore/core"
)

const (
	JobIDDirectoryWarm = "searchcore.directory.warm"

	ParamNetworkID = "network_id"
	ParamAttempt   = "attempt"

	dedupDrop = "drop"
)

// NewDirectoryWarmMessage builds the job that refreshes the cached core
// listing of one network. Jobs for the same network share an idempotency
// key, so a queued duplicate is dropped.
func NewDirectoryWarmMessage(networkID string) (*core.JobExecutionMessage, error) {
	networkID = strings.TrimSpace(networkID)
	if networkID == "" {
		return nil, fmt.Errorf("gojob: network id is required")
	}
	return &core.JobExecutionMessage{
		JobID:          JobIDDirectoryWarm,
		ScriptPath:     JobIDDirectoryWarm,
		Parameters:     map[string]any{ParamNetworkID: networkID},
		IdempotencyKey: JobIDDirectoryWarm + ":" + networkID,
		DedupPolicy:    dedupDrop,
	}, nil
}

// RetryPolicy bounds how often and how late a failed warm is retried.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// DefaultRetryPolicy gives up after five attempts and parks the job.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     5,
		MaxDelay:        defaultWarmMaxBackoff,
		DeadLetterOnMax: true,
	}
}

// bound clamps the delay and stops requeueing once attempts are exhausted.
// A nack always either requeues or dead-letters.
func (p RetryPolicy) bound(opts core.JobNackOptions, attempt int) core.JobNackOptions {
	opts.Reason = strings.TrimSpace(opts.Reason)
	opts.Delay = max(opts.Delay, 0)
	if p.MaxDelay > 0 {
		opts.Delay = min(opts.Delay, p.MaxDelay)
	}
	exhausted := p.MaxAttempts > 0 && attempt >= p.MaxAttempts
	switch {
	case opts.DeadLetter:
		opts.Requeue = false
	case exhausted && p.DeadLetterOnMax:
		opts.Requeue = false
		opts.DeadLetter = true
	default:
		opts.Requeue = true
	}
	return opts
}

func toQueueMessage(msg *core.JobExecutionMessage) *job.ExecutionMessage {
	if msg == nil {
		return nil
	}
	return &job.ExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     copyParams(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    job.DeduplicationPolicy(strings.TrimSpace(msg.DedupPolicy)),
	}
}

func fromQueueMessage(msg *job.ExecutionMessage) *core.JobExecutionMessage {
	if msg == nil {
		return nil
	}
	return &core.JobExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     copyParams(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    strings.TrimSpace(string(msg.DedupPolicy)),
	}
}

// EnqueuerAdapter publishes warm jobs on a go-job queue.
type EnqueuerAdapter struct {
	enqueuer queue.Enqueuer
}

func NewEnqueuerAdapter(enqueuer queue.Enqueuer) *EnqueuerAdapter {
	return &EnqueuerAdapter{enqueuer: enqueuer}
}

func (a *EnqueuerAdapter) Enqueue(ctx context.Context, msg *core.JobExecutionMessage) error {
	if a == nil || a.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	if msg == nil {
		return fmt.Errorf("gojob: execution message is required")
	}
	_, err := a.enqueuer.Enqueue(ctx, toQueueMessage(msg))
	return err
}

// EnqueueWarm satisfies core.DirectoryWarmer by scheduling the warm instead
// of running it, so the warm command can be served asynchronously.
type EnqueueWarm struct {
	Enqueuer core.JobEnqueuer
}

func (w EnqueueWarm) Warm(ctx context.Context, networkID string) error {
	if w.Enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	msg, err := NewDirectoryWarmMessage(networkID)
	if err != nil {
		return err
	}
	return w.Enqueuer.Enqueue(ctx, msg)
}

type DeliveryAdapter struct {
	delivery queue.Delivery
	policy   RetryPolicy
}

func NewDeliveryAdapter(delivery queue.Delivery, policy RetryPolicy) *DeliveryAdapter {
	return &DeliveryAdapter{delivery: delivery, policy: policy}
}

func (d *DeliveryAdapter) Message() *core.JobExecutionMessage {
	if d == nil || d.delivery == nil {
		return nil
	}
	return fromQueueMessage(d.delivery.Message())
}

// raw is the go-job delivery for worker hook events.
func (d *DeliveryAdapter) raw() queue.Delivery {
	if d == nil {
		return nil
	}
	return d.delivery
}

func (d *DeliveryAdapter) Ack(ctx context.Context) error {
	if d == nil || d.delivery == nil {
		return fmt.Errorf("gojob: delivery is not configured")
	}
	return d.delivery.Ack(ctx)
}

func (d *DeliveryAdapter) Nack(ctx context.Context, opts core.JobNackOptions) error {
	_, err := d.NackForAttempt(ctx, opts, 0)
	return err
}

// NackForAttempt bounds opts with the retry policy and reports what was
// actually sent, so callers can tell a retry from a dead letter.
func (d *DeliveryAdapter) NackForAttempt(ctx context.Context, opts core.JobNackOptions, attempt int) (core.JobNackOptions, error) {
	if d == nil || d.delivery == nil {
		return opts, fmt.Errorf("gojob: delivery is not configured")
	}
	bounded := d.policy.bound(opts, attempt)
	return bounded, d.delivery.Nack(ctx, toQueueNack(bounded))
}

// toQueueNack maps bounded options onto a go-job disposition. Anything not
// dead-lettered is retried.
func toQueueNack(opts core.JobNackOptions) queue.NackOptions {
	out := queue.NackOptions{
		Disposition: queue.NackDispositionRetry,
		Delay:       opts.Delay,
		Reason:      opts.Reason,
	}
	if opts.DeadLetter {
		out.Disposition = queue.NackDispositionDeadLetter
	}
	return out
}

type DequeuerAdapter struct {
	dequeuer queue.Dequeuer
	policy   RetryPolicy
}

func NewDequeuerAdapter(dequeuer queue.Dequeuer, policy RetryPolicy) *DequeuerAdapter {
	return &DequeuerAdapter{dequeuer: dequeuer, policy: policy}
}

func (a *DequeuerAdapter) Dequeue(ctx context.Context) (core.JobDelivery, error) {
	if a == nil || a.dequeuer == nil {
		return nil, fmt.Errorf("gojob: dequeuer is not configured")
	}
	delivery, err := a.dequeuer.Dequeue(ctx)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		return nil, nil
	}
	return NewDeliveryAdapter(delivery, a.policy), nil
}

func copyParams(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

var (
	_ core.JobEnqueuer     = (*EnqueuerAdapter)(nil)
	_ core.JobDelivery     = (*DeliveryAdapter)(nil)
	_ core.JobDequeuer     = (*DequeuerAdapter)(nil)
	_ core.DirectoryWarmer = EnqueueWarm{}
	_ worker.Hook          = (*RefreshHook)(nil)
)

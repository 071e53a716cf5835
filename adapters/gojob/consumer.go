package gojob

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
	"github.com/goliatone/go-searchcore/adapters/gologger"
	"github.com/goliatone/go-searchcore/core"
)

const (
	defaultWarmInitialBackoff = 500 * time.Millisecond
	defaultWarmMaxBackoff     = 10 * time.Second
	defaultIdlePoll           = time.Second
)

type attemptNacker interface {
	NackForAttempt(ctx context.Context, opts core.JobNackOptions, attempt int) (core.JobNackOptions, error)
}

type ConsumerOption func(*RefreshConsumer)

func WithConsumerLogger(logger core.Logger) ConsumerOption {
	return func(c *RefreshConsumer) {
		c.logger = logger
	}
}

func WithConsumerLoggerProvider(provider core.LoggerProvider) ConsumerOption {
	return func(c *RefreshConsumer) {
		c.loggerProvider = provider
	}
}

func WithConsumerBackoff(initial time.Duration, max time.Duration) ConsumerOption {
	return func(c *RefreshConsumer) {
		if initial > 0 {
			c.initialBackoff = initial
		}
		if max > 0 {
			c.maxBackoff = max
		}
	}
}

// WithConsumerHook observes every warm job; see RefreshHook.
func WithConsumerHook(hook worker.Hook) ConsumerOption {
	return func(c *RefreshConsumer) {
		c.hook = hook
	}
}

func WithIdlePoll(interval time.Duration) ConsumerOption {
	return func(c *RefreshConsumer) {
		if interval > 0 {
			c.idlePoll = interval
		}
	}
}

// RefreshConsumer drains directory warm jobs. Successful warms are acked,
// transport failures are retried with backoff, and malformed messages are
// dead-lettered.
//
// Attempts are counted per job key across redeliveries seen by this
// consumer; an attempt parameter on the message acts as a floor. The count
// is dropped once the job is acked or dead-lettered.
type RefreshConsumer struct {
	mu             sync.Mutex
	attempts       map[string]int
	dequeuer       core.JobDequeuer
	warmer         core.DirectoryWarmer
	logger         core.Logger
	loggerProvider core.LoggerProvider
	initialBackoff time.Duration
	maxBackoff     time.Duration
	idlePoll       time.Duration
	hook           worker.Hook
}

func NewRefreshConsumer(dequeuer core.JobDequeuer, warmer core.DirectoryWarmer, opts ...ConsumerOption) (*RefreshConsumer, error) {
	if dequeuer == nil {
		return nil, fmt.Errorf("gojob: dequeuer is required")
	}
	if warmer == nil {
		return nil, fmt.Errorf("gojob: directory warmer is required")
	}
	consumer := &RefreshConsumer{
		dequeuer:       dequeuer,
		warmer:         warmer,
		initialBackoff: defaultWarmInitialBackoff,
		maxBackoff:     defaultWarmMaxBackoff,
		idlePoll:       defaultIdlePoll,
		attempts:       map[string]int{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(consumer)
	}
	_, consumer.logger = gologger.Resolve(gologger.ComponentRefresh, consumer.loggerProvider, consumer.logger)
	return consumer, nil
}

// ProcessNext handles one delivery. It reports false when the queue had
// nothing to hand out.
func (c *RefreshConsumer) ProcessNext(ctx context.Context) (bool, error) {
	if c == nil || c.dequeuer == nil {
		return false, fmt.Errorf("gojob: refresh consumer is not configured")
	}
	delivery, err := c.dequeuer.Dequeue(ctx)
	if err != nil {
		return false, err
	}
	if delivery == nil {
		return false, nil
	}

	msg := delivery.Message()
	networkID, floor, parseErr := parseWarmMessage(msg)
	key := attemptKey(msg, networkID)
	attempt := c.nextAttempt(key, floor)
	event := worker.Event{
		Message:   toQueueMessage(msg),
		Delivery:  rawDelivery(delivery),
		Attempt:   attempt,
		StartedAt: time.Now().UTC(),
	}
	if parseErr != nil {
		c.logger.Error("refresh job rejected", "error", parseErr.Error())
		c.forget(key)
		event.Err = parseErr
		if c.hook != nil {
			c.hook.OnFailure(ctx, event)
		}
		_, err := c.nack(ctx, delivery, core.JobNackOptions{
			DeadLetter: true,
			Reason:     parseErr.Error(),
		}, attempt)
		return true, err
	}

	if c.hook != nil {
		c.hook.OnStart(ctx, event)
	}
	warmErr := c.warmer.Warm(ctx, networkID)
	event.Duration = time.Since(event.StartedAt)
	if warmErr != nil {
		delay := c.backoff(attempt)
		sent, err := c.nack(ctx, delivery, core.JobNackOptions{
			Delay:   delay,
			Requeue: true,
			Reason:  "directory unavailable",
		}, attempt)
		event.Err = warmErr
		if sent.DeadLetter {
			c.forget(key)
			c.logger.Error("directory warm gave up",
				"network_id", networkID,
				"attempt", attempt,
				"error", warmErr.Error(),
			)
			if c.hook != nil {
				c.hook.OnFailure(ctx, event)
			}
			return true, err
		}
		c.recordFailure(key, attempt)
		event.Delay = sent.Delay
		c.logger.Warn("directory warm failed",
			"network_id", networkID,
			"attempt", attempt,
			"retry_in", sent.Delay.String(),
			"error", warmErr.Error(),
		)
		if c.hook != nil {
			c.hook.OnRetry(ctx, event)
		}
		return true, err
	}

	c.forget(key)
	c.logger.Info("directory warmed", "network_id", networkID)
	if c.hook != nil {
		c.hook.OnSuccess(ctx, event)
	}
	return true, delivery.Ack(ctx)
}

// attemptKey identifies redeliveries of one warm job.
func attemptKey(msg *core.JobExecutionMessage, networkID string) string {
	if msg == nil {
		return ""
	}
	if key := strings.TrimSpace(msg.IdempotencyKey); key != "" {
		return key
	}
	return strings.TrimSpace(msg.JobID) + ":" + networkID
}

// nextAttempt is one past the failures already seen for key, never below
// floor and never below 1.
func (c *RefreshConsumer) nextAttempt(key string, floor int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return max(c.attempts[key]+1, floor, 1)
}

func (c *RefreshConsumer) recordFailure(key string, attempt int) {
	if key == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts[key] = attempt
}

func (c *RefreshConsumer) forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.attempts, key)
}

func rawDelivery(delivery core.JobDelivery) queue.Delivery {
	if adapted, ok := delivery.(*DeliveryAdapter); ok {
		return adapted.raw()
	}
	return nil
}

// Run processes deliveries until the context is done, pausing for the idle
// poll interval when the queue is empty.
func (c *RefreshConsumer) Run(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("gojob: refresh consumer is not configured")
	}
	for {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		handled, err := c.ProcessNext(ctx)
		if err != nil {
			c.logger.Error("refresh job processing failed", "error", err.Error())
		}
		if handled && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.idlePoll):
		}
	}
}

// nack returns the options that reached the queue. Deliveries without a
// retry policy get opts unchanged.
func (c *RefreshConsumer) nack(ctx context.Context, delivery core.JobDelivery, opts core.JobNackOptions, attempt int) (core.JobNackOptions, error) {
	if bounded, ok := delivery.(attemptNacker); ok {
		return bounded.NackForAttempt(ctx, opts, attempt)
	}
	return opts, delivery.Nack(ctx, opts)
}

func (c *RefreshConsumer) backoff(attempt int) time.Duration {
	delay := c.initialBackoff
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.maxBackoff {
			return c.maxBackoff
		}
	}
	if delay > c.maxBackoff {
		return c.maxBackoff
	}
	return delay
}

func parseWarmMessage(msg *core.JobExecutionMessage) (string, int, error) {
	if msg == nil {
		return "", 0, fmt.Errorf("gojob: delivery has no message")
	}
	attempt := readAttempt(msg.Parameters[ParamAttempt])
	if strings.TrimSpace(msg.JobID) != JobIDDirectoryWarm {
		return "", attempt, fmt.Errorf("gojob: unexpected job id %q", msg.JobID)
	}
	networkID, _ := msg.Parameters[ParamNetworkID].(string)
	networkID = strings.TrimSpace(networkID)
	if networkID == "" {
		return "", attempt, fmt.Errorf("gojob: network id is required")
	}
	return networkID, attempt, nil
}

func readAttempt(raw any) int {
	switch value := raw.(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err == nil {
			return parsed
		}
	}
	return 0
}

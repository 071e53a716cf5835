package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-searchcore/adapters/gologger"
	"github.com/goliatone/go-searchcore/cache"
	"github.com/goliatone/go-searchcore/core"
	"github.com/goliatone/go-searchcore/transport"
)

const (
	ResourceIndexes = "indexes"
	ResourceKeys    = "keys"

	cacheKeyPrefix = "searchcore::directory::v1"

	listCoresPath = "/index/network_id/get_all"
	getKeysPath   = "/index/key"
	apiKeyHeader  = "x-api-key"

	metricFetch     = "searchcore.directory.fetch.total"
	metricCacheHit  = "searchcore.directory.cache.hit"
	metricCacheMiss = "searchcore.directory.cache.miss"
)

// IndexesCacheKey is the cache key of the core listing for one network.
func IndexesCacheKey(networkID string) string {
	return joinKey(ResourceIndexes, networkID)
}

// KeysCacheKey is the cache key of the key material for one core.
func KeysCacheKey(networkID string, coreID string) string {
	return joinKey(ResourceKeys, networkID, coreID)
}

func joinKey(resource string, segments ...string) string {
	parts := []string{cacheKeyPrefix, resource}
	for _, segment := range segments {
		parts = append(parts, url.PathEscape(strings.TrimSpace(segment)))
	}
	return strings.Join(parts, "::")
}

type Option func(*Client)

func WithTransport(adapter core.TransportAdapter) Option {
	return func(c *Client) {
		if adapter != nil {
			c.transport = adapter
		}
	}
}

func WithCache(store core.Cache) Option {
	return func(c *Client) {
		if store != nil {
			c.cache = store
		}
	}
}

func WithLogger(logger core.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(c *Client) {
		c.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder core.MetricsRecorder) Option {
	return func(c *Client) {
		if recorder != nil {
			c.metrics = recorder
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// Client reads the subscription directory. ListCores and GetKeys never
// fail: every problem is logged once and reported as an empty result.
type Client struct {
	config         core.DirectoryConfig
	transport      core.TransportAdapter
	cache          core.Cache
	logger         core.Logger
	loggerProvider core.LoggerProvider
	metrics        core.MetricsRecorder
	now            func() time.Time
}

func NewClient(cfg core.DirectoryConfig, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Host = strings.TrimRight(strings.TrimSpace(cfg.Host), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = core.DefaultDirectoryTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = core.DefaultDirectoryCacheTTL
	}

	client := &Client{
		config:  cfg,
		metrics: core.NopMetricsRecorder{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	client.loggerProvider, client.logger = gologger.Resolve(gologger.ComponentDirectory, client.loggerProvider, client.logger)
	if client.transport == nil {
		client.transport = transport.NewRESTAdapter(
			&http.Client{Timeout: cfg.Timeout},
			transport.WithJSONHeaders(),
		)
	}
	if client.cache == nil {
		client.cache = cache.NewMemory()
	}
	return client, nil
}

type coreRecord struct {
	Host string `json:"host"`
	Name string `json:"name"`
}

func (c *Client) ListCores(ctx context.Context, networkID string) []core.CoreDescriptor {
	result, err := memoize(ctx, c, c.coresSpec(networkID), true)
	if err != nil {
		c.logFailure(ctx, ResourceIndexes, networkID, err)
		return nil
	}
	return cloneCores(result.Value)
}

func (c *Client) GetKeys(ctx context.Context, coreID string, networkID string) core.KeySet {
	result, err := memoize(ctx, c, c.keysSpec(coreID, networkID), true)
	if err != nil {
		c.logFailure(ctx, ResourceKeys, networkID, err)
		return core.KeySet{}
	}
	return result.Value
}

// Warm fetches the core listing without reading the cache and stores a
// non-empty result. Unlike ListCores it reports failures to the caller.
func (c *Client) Warm(ctx context.Context, networkID string) error {
	networkID = strings.TrimSpace(networkID)
	if networkID == "" {
		return core.ErrNetworkIDRequired
	}
	_, err := memoize(ctx, c, c.coresSpec(networkID), false)
	return err
}

func (c *Client) coresSpec(networkID string) fetchSpec[[]core.CoreDescriptor] {
	networkID = strings.TrimSpace(networkID)
	return fetchSpec[[]core.CoreDescriptor]{
		Resource: ResourceIndexes,
		Key:      IndexesCacheKey(networkID),
		TTL:      c.config.CacheTTL,
		Fetch: func(ctx context.Context) ([]core.CoreDescriptor, error) {
			body, err := c.get(ctx, ResourceIndexes, listCoresPath, map[string]string{"network_id": networkID})
			if err != nil {
				return nil, err
			}
			return decodeCores(body)
		},
		Empty: func(cores []core.CoreDescriptor) bool { return len(cores) == 0 },
		Encode: func(cores []core.CoreDescriptor) ([]byte, error) {
			return json.Marshal(cores)
		},
		Decode: func(data []byte) ([]core.CoreDescriptor, error) {
			var cores []core.CoreDescriptor
			err := json.Unmarshal(data, &cores)
			return cores, err
		},
	}
}

func (c *Client) keysSpec(coreID string, networkID string) fetchSpec[core.KeySet] {
	coreID = strings.TrimSpace(coreID)
	networkID = strings.TrimSpace(networkID)
	return fetchSpec[core.KeySet]{
		Resource: ResourceKeys,
		Key:      KeysCacheKey(networkID, coreID),
		TTL:      c.config.CacheTTL,
		Fetch: func(ctx context.Context) (core.KeySet, error) {
			body, err := c.get(ctx, ResourceKeys, getKeysPath, map[string]string{
				"index_name": coreID,
				"network_id": networkID,
			})
			if err != nil {
				return core.KeySet{}, err
			}
			if !json.Valid(body) {
				return core.KeySet{}, directoryError("directory: malformed key response", nil, map[string]any{"resource": ResourceKeys})
			}
			return core.KeySet{Raw: append(json.RawMessage(nil), body...)}, nil
		},
		Empty: func(keys core.KeySet) bool { return keys.Empty() },
		Encode: func(keys core.KeySet) ([]byte, error) {
			return append([]byte(nil), keys.Raw...), nil
		},
		Decode: func(data []byte) (core.KeySet, error) {
			return core.KeySet{Raw: append(json.RawMessage(nil), data...)}, nil
		},
	}
}

// get runs one bounded request and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, resource string, path string, query map[string]string) ([]byte, error) {
	res, err := c.transport.Do(ctx, core.TransportRequest{
		Method:  http.MethodGet,
		URL:     c.config.Host + path,
		Query:   query,
		Headers: map[string]string{apiKeyHeader: c.config.APIKey},
		Timeout: c.config.Timeout,
	})
	status := "success"
	defer func() {
		c.metrics.IncCounter(ctx, metricFetch, 1, map[string]string{"resource": resource, "status": status})
	}()
	if err != nil {
		status = "failure"
		return nil, directoryError("directory: request failed", err, map[string]any{"resource": resource})
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		status = "failure"
		return nil, directoryError(
			fmt.Sprintf("directory: unexpected status %d", res.StatusCode),
			nil,
			map[string]any{"resource": resource, "status_code": res.StatusCode},
		)
	}
	if len(strings.TrimSpace(string(res.Body))) == 0 {
		status = "failure"
		return nil, directoryError("directory: empty response body", nil, map[string]any{"resource": resource, "status_code": res.StatusCode})
	}
	return res.Body, nil
}

func decodeCores(body []byte) ([]core.CoreDescriptor, error) {
	var records []coreRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, directoryError("directory: malformed core listing", err, map[string]any{"resource": ResourceIndexes})
	}
	if records == nil {
		return nil, directoryError("directory: empty core listing", nil, map[string]any{"resource": ResourceIndexes})
	}
	cores := make([]core.CoreDescriptor, 0, len(records))
	for _, record := range records {
		name := strings.TrimSpace(record.Name)
		if name == "" {
			continue
		}
		cores = append(cores, core.CoreDescriptor{
			CoreID:     name,
			Hostname:   strings.TrimSpace(record.Host),
			APIVersion: core.APIVersionV3,
		})
	}
	return cores, nil
}

func cloneCores(cores []core.CoreDescriptor) []core.CoreDescriptor {
	if len(cores) == 0 {
		return nil
	}
	return append([]core.CoreDescriptor(nil), cores...)
}

func directoryError(message string, source error, metadata map[string]any) error {
	var err *goerrors.Error
	if source != nil {
		err = goerrors.Wrap(source, goerrors.CategoryExternal, message)
	} else {
		err = goerrors.New(message, goerrors.CategoryExternal)
	}
	err = err.WithCode(http.StatusBadGateway).WithTextCode(core.ServiceErrorDirectoryUnavailable)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func (c *Client) logFailure(ctx context.Context, resource string, networkID string, err error) {
	fields := map[string]any{
		"resource":        resource,
		"network_id":      networkID,
		"error":           err.Error(),
		"error_text_code": core.ServiceErrorDirectoryUnavailable,
	}
	c.logWithLevel(ctx, "error", "directory lookup failed", fields)
}

func (c *Client) logWarn(ctx context.Context, message string, fields map[string]any) {
	c.logWithLevel(ctx, "warn", message, fields)
}

func (c *Client) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	logger := c.logger
	if logger == nil {
		return
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(core.FieldsLogger); ok {
		logger = fieldsLogger.WithFields(fields)
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	if level == "error" {
		logger.Error(message, args...)
		return
	}
	logger.Warn(message, args...)
}

func (c *Client) recordCounter(ctx context.Context, name string, resource string) {
	c.metrics.IncCounter(ctx, name, 1, map[string]string{"resource": resource})
}

var (
	_ core.DirectoryLister = (*Client)(nil)
	_ core.KeyLister       = (*Client)(nil)
	_ core.DirectoryWarmer = (*Client)(nil)
)

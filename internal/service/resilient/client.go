// Package resilient is the request core shared by every provider service:
// response caching with TTL, bounded retry with exponential backoff, a hard
// per-attempt timeout, and stale-cache fallback once attempts are exhausted.
package resilient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	errx "github.com/Chative-core-poc-v1/intent-gateway/internal/core/error"
	"github.com/Chative-core-poc-v1/intent-gateway/internal/service/cache"
	logx "github.com/Chative-core-poc-v1/intent-gateway/pkg/logger"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// maxBodySize bounds how much of a provider response is read.
const maxBodySize = 10 * 1024 * 1024

// RequestOptions describes one outbound GET.
type RequestOptions struct {
	Params  url.Values
	Headers http.Header
}

// Transform reshapes a raw provider payload into the service's normalized result.
type Transform[T any] func(raw []byte) (T, error)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport used for attempts.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithStore sets the cache store. Without one, an in-memory store is used.
func WithStore(s cache.Store) Option {
	return func(c *Client) {
		if s != nil {
			c.store = s
		}
	}
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithClock sets the time source used for cache timestamps and freshness checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSleep replaces the backoff wait, mainly for tests.
func WithSleep(sleep SleepFunc) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// Client executes GET requests for one named service under its ServiceConfig.
// It is safe for concurrent use.
type Client struct {
	name       string
	cfg        ServiceConfig
	httpClient *http.Client
	store      cache.Store
	metrics    *Metrics
	limiter    *rate.Limiter
	now        func() time.Time
	sleep      SleepFunc
	inflight   singleflight.Group
}

// New builds a Client. The config is normalized and fixed for the client's lifetime.
func New(name string, cfg ServiceConfig, opts ...Option) *Client {
	c := &Client{
		name:       name,
		cfg:        cfg.Normalize(),
		httpClient: http.DefaultClient,
		now:        time.Now,
		sleep:      sleepWithContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = cache.NewMemoryStore()
	}
	if c.cfg.RateLimit > 0 {
		burst := int(c.cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(c.cfg.RateLimit), burst)
	}
	return c
}

// Name returns the service name used in cache keys.
func (c *Client) Name() string {
	return c.name
}

// Now reads the client's clock.
func (c *Client) Now() time.Time {
	return c.now()
}

// Config returns the normalized policy.
func (c *Client) Config() ServiceConfig {
	return c.cfg
}

// Get performs a cached, retried GET against endpoint and returns the transformed result.
// A nil transform decodes the JSON payload directly into T.
//
// It fails with errx.ErrRequestFailed only when every attempt failed and no
// cached value of any age exists for the request.
func Get[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions, transform Transform[T]) (T, error) {
	var zero T
	data, err := c.request(ctx, endpoint, opts, func(raw []byte) (json.RawMessage, error) {
		var v T
		if transform != nil {
			var err error
			if v, err = transform(raw); err != nil {
				return nil, fmt.Errorf("transform: %w", err)
			}
		} else if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode result: %w", err)
		}
		return b, nil
	})
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, fmt.Errorf("decode cached result: %w", err)
	}
	return out, nil
}

type shapeFunc func(raw []byte) (json.RawMessage, error)

func (c *Client) request(ctx context.Context, endpoint string, opts RequestOptions, shape shapeFunc) (json.RawMessage, error) {
	key := CacheKey(c.name, endpoint, opts.Params)

	if c.cfg.CacheEnabled {
		if e := c.lookup(ctx, key); e != nil && !e.Stale(c.now()) {
			logx.Debug().Str("service", c.name).Str("cache_key", key).Msg("cache hit")
			c.metrics.recordOutcome(c.name, OutcomeCacheHit)
			return e.Data, nil
		}
	}

	// The shared fetch outlives any single caller: each attempt is bounded by
	// Timeout, and a caller that goes away stops waiting instead.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(key, func() (any, error) {
		return c.fetch(fetchCtx, key, endpoint, opts, shape)
	})

	select {
	case res := <-ch:
		if res.Shared {
			logx.Debug().Str("service", c.name).Str("cache_key", key).Msg("joined in-flight request")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(json.RawMessage), nil
	case <-ctx.Done():
		return c.abandon(ctx, key, endpoint)
	}
}

// abandon answers a caller whose context ended while the fetch was still
// running: the cached value of any age if there is one, otherwise an error.
func (c *Client) abandon(ctx context.Context, key, endpoint string) (json.RawMessage, error) {
	if c.cfg.CacheEnabled {
		if e := c.lookup(context.WithoutCancel(ctx), key); e != nil {
			logx.Warn().Err(ctx.Err()).
				Str("service", c.name).
				Str("cache_key", key).
				Dur("age", e.Age(c.now())).
				Msg("caller gave up, serving stale cache entry")
			c.metrics.recordOutcome(c.name, OutcomeStaleFallback)
			return e.Data, nil
		}
	}
	c.metrics.recordOutcome(c.name, OutcomeFailed)
	return nil, errx.Abandoned(c.name, endpoint, ctx.Err())
}

// fetch runs the attempt loop and, on exhaustion, the stale fallback.
func (c *Client) fetch(ctx context.Context, key, endpoint string, opts RequestOptions, shape shapeFunc) (json.RawMessage, error) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt < c.cfg.RetryAttempts; attempt++ {
		attempts++
		start := time.Now()
		data, err := c.attempt(ctx, endpoint, opts, shape)
		c.metrics.recordAttempt(c.name, err, time.Since(start))
		if err == nil {
			if c.cfg.CacheEnabled {
				c.save(ctx, key, data)
			}
			c.metrics.recordOutcome(c.name, OutcomeSuccess)
			return data, nil
		}

		lastErr = err
		logx.Warn().Err(err).
			Str("service", c.name).
			Str("endpoint", endpoint).
			Int("attempt", attempt+1).
			Int("max_attempts", c.cfg.RetryAttempts).
			Msg("request attempt failed")

		if attempt == c.cfg.RetryAttempts-1 {
			break
		}

		c.metrics.recordRetry(c.name)
		if err := c.sleep(ctx, Backoff(c.cfg.RetryDelay, attempt)); err != nil {
			lastErr = err
			break
		}
	}

	if c.cfg.CacheEnabled {
		if e := c.lookup(context.WithoutCancel(ctx), key); e != nil {
			logx.Warn().Err(lastErr).
				Str("service", c.name).
				Str("cache_key", key).
				Dur("age", e.Age(c.now())).
				Msg("attempts exhausted, serving stale cache entry")
			c.metrics.recordOutcome(c.name, OutcomeStaleFallback)
			return e.Data, nil
		}
	}

	c.metrics.recordOutcome(c.name, OutcomeFailed)
	logx.Error().Err(lastErr).Str("service", c.name).Str("endpoint", endpoint).Int("attempts", attempts).Msg("request failed")
	return nil, errx.RequestFailed(c.name, endpoint, attempts, lastErr)
}

func (c *Client) attempt(ctx context.Context, endpoint string, opts RequestOptions, shape shapeFunc) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	actx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	u, err := buildURL(endpoint, opts.Params)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(actx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range opts.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classify(ctx, actx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.classify(ctx, actx, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errx.UpstreamStatus(resp.StatusCode)
	}
	return shape(body)
}

// classify tags errors caused by the per-attempt deadline (not the caller's) as aborted.
func (c *Client) classify(parent, attemptCtx context.Context, err error) error {
	if parent.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return errx.Aborted(c.cfg.Timeout, err)
	}
	return fmt.Errorf("http get: %w", err)
}

// lookup reads the store; store errors degrade to a miss.
func (c *Client) lookup(ctx context.Context, key string) *cache.Entry {
	e, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			logx.Warn().Err(err).Str("service", c.name).Str("cache_key", key).Msg("cache read failed, treating as miss")
		}
		return nil
	}
	return e
}

func (c *Client) save(ctx context.Context, key string, data json.RawMessage) {
	entry := &cache.Entry{
		Key:       key,
		Data:      data,
		Timestamp: c.now(),
		TTL:       c.cfg.CacheTTL,
	}
	if err := c.store.Put(context.WithoutCancel(ctx), entry); err != nil {
		logx.Warn().Err(err).Str("service", c.name).Str("cache_key", key).Msg("cache write failed")
	}
}

func buildURL(endpoint string, params url.Values) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			q[k] = append([]string(nil), vs...)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func isAborted(err error) bool {
	return errors.Is(err, errx.ErrAbortedRequest)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

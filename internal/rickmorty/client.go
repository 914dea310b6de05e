// Package rickmorty is an HTTP client for the public Rick and Morty API.
//
// Responses are mapped into character.Character; wire-only fields such as
// episode lists and place URLs are dropped. Requests are rate limited,
// traced, and optionally cached.
package rickmorty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fyrsmithlabs/rmwiki/internal/character"
	"github.com/fyrsmithlabs/rmwiki/internal/config"
	"github.com/fyrsmithlabs/rmwiki/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	instrumentationName = "github.com/fyrsmithlabs/rmwiki/internal/rickmorty"

	// maxBodySize caps upstream response bodies.
	maxBodySize = 4 << 20

	endpointList   = "character_list"
	endpointSingle = "character"
)

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second; 0 disables limiting
	Burst     int
	UserAgent string

	CacheTTL        time.Duration // 0 disables the response cache
	CacheMaxEntries int
}

// ConfigFrom builds a client config from the loaded application config.
func ConfigFrom(api config.APIConfig, cache config.CacheConfig) Config {
	return Config{
		BaseURL:         api.BaseURL,
		Timeout:         api.Timeout,
		RateLimit:       api.RateLimit,
		Burst:           api.Burst,
		UserAgent:       api.UserAgent,
		CacheTTL:        cache.TTL,
		CacheMaxEntries: cache.MaxEntries,
	}
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTracer sets the tracer used for outbound spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables Prometheus metrics for requests and the cache.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// Client talks to the Rick and Morty API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *Cache
	tracer     trace.Tracer
	logger     *logging.Logger
	metrics    *Metrics
}

// New creates a client.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		baseURL:    base.String(),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		cache:      NewCache(cfg.CacheTTL, cfg.CacheMaxEntries),
		tracer:     otel.Tracer(instrumentationName),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics != nil {
		c.cache.SetMetrics(c.metrics)
	}

	c.logger = c.logger.Named("rickmorty")
	return c, nil
}

// ListCharacters fetches one page of the character list. A page <= 0
// requests the endpoint without a page parameter, which the API treats as
// page 1.
func (c *Client) ListCharacters(ctx context.Context, page int) (character.Page, error) {
	ctx, span := c.tracer.Start(ctx, "rickmorty.ListCharacters", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
		span.SetAttributes(attribute.Int("rickmorty.page", page))
	}

	var wire apiPage
	if err := c.getJSON(ctx, span, endpointList, "/character", q, &wire); err != nil {
		return character.Page{}, err
	}

	result := wire.toPage(page)
	span.SetAttributes(attribute.Int("rickmorty.results", len(result.Results)))
	return result, nil
}

// GetCharacter fetches a single character by id.
func (c *Client) GetCharacter(ctx context.Context, id int) (character.Character, error) {
	if id <= 0 {
		return character.Character{}, fmt.Errorf("get character %d: %w", id, ErrInvalidID)
	}

	ctx, span := c.tracer.Start(ctx, "rickmorty.GetCharacter",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int("character.id", id)),
	)
	defer span.End()

	var wire apiCharacter
	if err := c.getJSON(ctx, span, endpointSingle, "/character/"+strconv.Itoa(id), nil, &wire); err != nil {
		return character.Character{}, err
	}
	return wire.toCharacter(), nil
}

// getJSON performs a GET and decodes the body into out. Every failure is
// recorded on span and in metrics under one of the outcome labels.
func (c *Client) getJSON(ctx context.Context, span trace.Span, endpoint, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	start := time.Now()
	body, cached, err := c.fetch(ctx, span, target)
	outcome := "ok"
	if err == nil {
		if decodeErr := json.Unmarshal(body, out); decodeErr != nil {
			err = fmt.Errorf("%w: %s: %w", ErrDecode, target, decodeErr)
			c.cache.Delete(target)
		}
	}
	if err != nil {
		outcome = classify(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}

	span.SetAttributes(
		attribute.Bool("rickmorty.cache_hit", cached),
		attribute.String("rickmorty.outcome", outcome),
	)
	if c.metrics != nil && !cached {
		c.metrics.RecordRequest(endpoint, outcome, time.Since(start).Seconds())
	}
	return err
}

// fetch returns the raw body for target, consulting the cache first.
func (c *Client) fetch(ctx context.Context, span trace.Span, target string) ([]byte, bool, error) {
	if body, ok := c.cache.Get(target); ok {
		c.logger.Debug(ctx, "upstream cache hit", logging.URL(target))
		return body, true, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", target, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		c.logger.Warn(ctx, "upstream returned error status",
			logging.URL(target),
			logging.Status(resp.StatusCode),
		)
		return nil, false, &StatusError{Code: resp.StatusCode, URL: target}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", target, err)
	}
	c.logger.Trace(ctx, "upstream response",
		logging.URL(target),
		zap.Int("bytes", len(body)),
	)

	c.cache.Set(target, body)
	return body, false, nil
}

// classify maps a client error onto a metrics outcome label.
func classify(err error) string {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return "status"
	case errors.Is(err, ErrDecode):
		return "decode"
	default:
		return "transport"
	}
}

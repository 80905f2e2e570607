package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/llehouerou/novatone/internal/cache"
)

const (
	// DefaultTimeout bounds each provider call.
	DefaultTimeout = 8 * time.Second
	// UserAgent is sent with every provider request.
	UserAgent = "novatone/1.0 (+https://github.com/llehouerou/novatone)"

	maxPayload = 16 << 20
)

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	Name              string        // provider name, used in logs and cache keys
	Timeout           time.Duration // per-call deadline (default: 8s)
	RequestsPerSecond float64       // 0 disables limiting
	Cache             cache.Cache
	CacheTTL          time.Duration
	Client            *http.Client
	Logger            *zap.Logger
}

// Fetcher performs provider GET requests with a per-call deadline,
// a request rate limit and an optional response cache.
type Fetcher struct {
	name     string
	client   *http.Client
	timeout  time.Duration
	limiter  *rate.Limiter
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewFetcher creates a fetcher for one provider.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.Noop{}
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(1, int(cfg.RequestsPerSecond)))
	}

	return &Fetcher{
		name:     cfg.Name,
		client:   cfg.Client,
		timeout:  cfg.Timeout,
		limiter:  limiter,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		logger:   cfg.Logger.With(zap.String("provider", cfg.Name)),
	}
}

// Get returns the body of a successful GET to rawURL.
// Any non-2xx status is an error. The deadline covers the rate limit wait.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	key := f.name + ":" + rawURL
	if body, ok := f.cache.Get(ctx, key); ok {
		f.logger.Debug("cache hit", zap.String("url", rawURL))
		return body, nil
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	f.logger.Debug("fetched",
		zap.String("url", rawURL),
		zap.Int("bytes", len(body)),
		zap.Duration("took", time.Since(start)))

	f.cache.Set(ctx, key, body, f.cacheTTL)
	return body, nil
}

// Name returns the provider name.
func (f *Fetcher) Name() string { return f.name }

package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"time"

	"cian-offers-parser/internal/config"
	"cian-offers-parser/internal/observability"
)

// ErrDisallowed возвращается, если robots.txt запрещает адрес
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Fetcher загружает HTML страницы выдачи и карточек
type Fetcher interface {
	Fetch(ctx context.Context, urlStr string) (*FetchResponse, error)
	Close() error
}

type FetchResponse struct {
	StatusCode int
	Body       []byte
	URL        string
	Headers    http.Header
}

// New выбирает реализацию по fetch.mode
func New(cfg *config.Config, logger *observability.Logger) (Fetcher, error) {
	switch cfg.Fetch.Mode {
	case "", "http":
		return NewHTTPFetcher(cfg, logger), nil
	case "colly":
		return NewCollyFetcher(cfg, logger), nil
	case "rod":
		f, err := NewRodFetcher(cfg, logger)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown fetch mode %q", cfg.Fetch.Mode)
	}
}

type HTTPFetcher struct {
	client      *http.Client
	cfg         *config.Config
	logger      *observability.Logger
	robotsCache *RobotsCache
	rateLimiter *RateLimiter
}

func NewHTTPFetcher(cfg *config.Config, logger *observability.Logger) *HTTPFetcher {
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	dialer := &net.Dialer{Timeout: cfg.GetConnectTimeout()}
	client := &http.Client{
		Timeout: cfg.GetTotalTimeout(),
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         dialer.DialContext,
			MaxIdleConns:        cfg.HTTP.MaxIdleConnections,
			MaxIdleConnsPerHost: cfg.HTTP.MaxIdleConnectionsPerHost,
			IdleConnTimeout:     cfg.GetIdleConnectionTimeout(),
		},
	}

	f := &HTTPFetcher{
		client:      client,
		cfg:         cfg,
		logger:      logger,
		rateLimiter: NewRateLimiter(cfg.RateLimit.RPM),
	}
	if cfg.Robots.Enabled {
		f.robotsCache = NewRobotsCache(cfg.GetRobotsCacheTTL(), cfg.HTTP.UserAgent, logger)
	}
	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, urlStr string) (*FetchResponse, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	host := parsedURL.Host

	if f.robotsCache != nil {
		allowed, err := f.robotsCache.IsAllowed(ctx, parsedURL, f.client)
		if err != nil {
			return nil, fmt.Errorf("robots.txt check failed: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", urlStr, ErrDisallowed)
		}
	}

	if err := f.rateLimiter.Wait(ctx, host); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	// Повторы с экспоненциальной задержкой
	var lastErr error
	for attempt := 0; attempt <= f.cfg.HTTP.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := f.calculateBackoff(attempt)
			f.logger.Warn("retrying fetch", "url", urlStr, "attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := f.fetchOnce(ctx, urlStr)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		// 5xx и 429 повторяем, на последней попытке отдаём как есть
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			if attempt < f.cfg.HTTP.MaxRetries {
				continue
			}
		}

		return resp, nil
	}

	return nil, fmt.Errorf("fetch failed after %d retries: %w", f.cfg.HTTP.MaxRetries, lastErr)
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, urlStr string) (*FetchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.cfg.HTTP.UserAgent)
	if f.cfg.HTTP.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", f.cfg.HTTP.AcceptLanguage)
	}
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.Warn("failed to close response body", "url", urlStr, "error", err)
		}
	}()

	reader := io.Reader(resp.Body)
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer func() { _ = gzipReader.Close() }()
		reader = gzipReader
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("response received",
		"url", urlStr,
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"content_encoding", resp.Header.Get("Content-Encoding"),
		"body_bytes", len(body),
	)

	return &FetchResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
		URL:        resp.Request.URL.String(),
		Headers:    resp.Header,
	}, nil
}

func (f *HTTPFetcher) calculateBackoff(attempt int) time.Duration {
	return backoffDelay(f.cfg.Backoff, attempt)
}

func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// backoffDelay: min * 2^(attempt-1), не больше max, с разбросом ±jitter%
func backoffDelay(b config.BackoffConfig, attempt int) time.Duration {
	minMS := b.MinMS
	maxMS := b.MaxMS

	exponential := minMS
	if attempt > 1 {
		exponential = minMS * (1 << uint(attempt-1))
	}
	if exponential > maxMS || exponential <= 0 {
		exponential = maxMS
	}

	jitterRange := float64(exponential) * float64(b.JitterPct) / 100
	jitter := (rand.Float64() - 0.5) * 2 * jitterRange
	finalMS := float64(exponential) + jitter

	if finalMS < float64(minMS) {
		finalMS = float64(minMS)
	}

	return time.Duration(math.Max(finalMS, 0)) * time.Millisecond
}

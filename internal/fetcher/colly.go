package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"cian-offers-parser/internal/config"
	"cian-offers-parser/internal/observability"
)

// CollyFetcher загружает страницы через colly: свой транспорт, cookie jar и robots.txt
type CollyFetcher struct {
	base        *colly.Collector
	cfg         *config.Config
	logger      *observability.Logger
	rateLimiter *RateLimiter
}

func NewCollyFetcher(cfg *config.Config, logger *observability.Logger) *CollyFetcher {
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	c := colly.NewCollector(
		colly.UserAgent(cfg.HTTP.UserAgent),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	c.IgnoreRobotsTxt = !cfg.Robots.Enabled
	c.SetRequestTimeout(cfg.GetTotalTimeout())

	return &CollyFetcher{
		base:        c,
		cfg:         cfg,
		logger:      logger,
		rateLimiter: NewRateLimiter(cfg.RateLimit.RPM),
	}
}

func (f *CollyFetcher) Fetch(ctx context.Context, urlStr string) (*FetchResponse, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if err := f.rateLimiter.Wait(ctx, parsedURL.Host); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= f.cfg.HTTP.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := backoffDelay(f.cfg.Backoff, attempt)
			f.logger.Warn("retrying fetch", "url", urlStr, "attempt", attempt, "backoff", backoff, "error", lastErr)
			if err := sleepCtx(ctx, backoff); err != nil {
				return nil, err
			}
		}

		resp, err := f.visit(urlStr)
		if err != nil {
			if errors.Is(err, colly.ErrRobotsTxtBlocked) {
				return nil, fmt.Errorf("%s: %w", urlStr, ErrDisallowed)
			}
			lastErr = err
			continue
		}
		if (resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests) && attempt < f.cfg.HTTP.MaxRetries {
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}

	return nil, fmt.Errorf("fetch failed after %d retries: %w", f.cfg.HTTP.MaxRetries, lastErr)
}

// visit выполняет один синхронный запрос на клоне коллектора
func (f *CollyFetcher) visit(urlStr string) (*FetchResponse, error) {
	c := f.base.Clone()
	if f.cfg.HTTP.AcceptLanguage != "" {
		c.OnRequest(func(r *colly.Request) {
			r.Headers.Set("Accept-Language", f.cfg.HTTP.AcceptLanguage)
		})
	}

	var (
		result   *FetchResponse
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		result = toFetchResponse(r)
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil && r.StatusCode > 0 {
			result = toFetchResponse(r)
		}
	})

	if err := c.Visit(urlStr); err != nil {
		return nil, err
	}
	if result != nil {
		return result, nil
	}
	if fetchErr == nil {
		fetchErr = fmt.Errorf("no response for %s", urlStr)
	}
	return nil, fetchErr
}

func toFetchResponse(r *colly.Response) *FetchResponse {
	resp := &FetchResponse{
		StatusCode: r.StatusCode,
		Body:       r.Body,
	}
	if r.Request != nil && r.Request.URL != nil {
		resp.URL = r.Request.URL.String()
	}
	if r.Headers != nil {
		resp.Headers = *r.Headers
	}
	return resp
}

func (f *CollyFetcher) Close() error {
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"cian-offers-parser/internal/config"
	"cian-offers-parser/internal/observability"
)

// RodFetcher рендерит страницы в headless Chrome; выдача ЦИАН дорисовывает карточки скриптами
type RodFetcher struct {
	browser     *rod.Browser
	launcher    *launcher.Launcher
	cfg         *config.Config
	logger      *observability.Logger
	rateLimiter *RateLimiter
}

func NewRodFetcher(cfg *config.Config, logger *observability.Logger) (*RodFetcher, error) {
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	l := launcher.New().Headless(cfg.Rod.Headless)
	if cfg.Rod.ChromePath != "" {
		l = l.Bin(cfg.Rod.ChromePath)
	}
	if cfg.HTTP.UserAgent != "" {
		l = l.Set("user-agent", cfg.HTTP.UserAgent)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	logger.Info("browser started", "headless", cfg.Rod.Headless, "bin", cfg.Rod.ChromePath)

	return &RodFetcher{
		browser:     browser,
		launcher:    l,
		cfg:         cfg,
		logger:      logger,
		rateLimiter: NewRateLimiter(cfg.RateLimit.RPM),
	}, nil
}

func (f *RodFetcher) Fetch(ctx context.Context, urlStr string) (*FetchResponse, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if err := f.rateLimiter.Wait(ctx, parsedURL.Host); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	tab, err := f.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: urlStr})
	if err != nil {
		return nil, fmt.Errorf("failed to open page %s: %w", urlStr, err)
	}
	defer func() {
		if err := tab.Close(); err != nil {
			f.logger.Warn("failed to close page", "url", urlStr, "error", err)
		}
	}()

	page := tab.Timeout(f.cfg.GetRodPageTimeout())

	if err := page.Timeout(f.cfg.GetRodWaitLoadTimeout()).WaitLoad(); err != nil {
		return nil, fmt.Errorf("page %s did not load: %w", urlStr, err)
	}

	// Ленивые блоки подгружаются после load
	if delay := f.cfg.GetRodLazyLoadDelay(); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read page %s: %w", urlStr, err)
	}

	finalURL := urlStr
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	f.logger.Debug("page rendered", "url", finalURL, "body_bytes", len(html))

	return &FetchResponse{
		StatusCode: 200,
		Body:       []byte(html),
		URL:        finalURL,
	}, nil
}

func (f *RodFetcher) Close() error {
	err := f.browser.Close()
	f.launcher.Kill()
	return err
}

package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"cian-offers-parser/internal/observability"
)

type RobotsCache struct {
	cache     map[string]*robotsEntry
	ttl       time.Duration
	userAgent string
	mu        sync.RWMutex
	logger    *observability.Logger
}

type robotsEntry struct {
	data      *robotstxt.RobotsData
	expiresAt time.Time
}

func NewRobotsCache(ttl time.Duration, userAgent string, logger *observability.Logger) *RobotsCache {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &RobotsCache{
		cache:     make(map[string]*robotsEntry),
		ttl:       ttl,
		userAgent: userAgent,
		logger:    logger,
	}
}

// IsAllowed проверяет путь по robots.txt хоста; недоступный robots.txt разрешает всё
func (rc *RobotsCache) IsAllowed(ctx context.Context, target *url.URL, client *http.Client) (bool, error) {
	key := target.Scheme + "://" + target.Host

	rc.mu.RLock()
	cached, exists := rc.cache[key]
	rc.mu.RUnlock()

	if !exists || time.Now().After(cached.expiresAt) {
		data := rc.load(ctx, key, client)
		if err := ctx.Err(); err != nil {
			return false, err
		}
		cached = &robotsEntry{data: data, expiresAt: time.Now().Add(rc.ttl)}

		rc.mu.Lock()
		rc.cache[key] = cached
		rc.mu.Unlock()
	}

	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}
	return cached.data.TestAgent(path, rc.userAgent), nil
}

func (rc *RobotsCache) load(ctx context.Context, origin string, client *http.Client) *robotstxt.RobotsData {
	allowAll, _ := robotstxt.FromStatusAndBytes(http.StatusNotFound, nil)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return allowAll
	}
	req.Header.Set("User-Agent", rc.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		rc.logger.Warn("robots.txt unavailable, allowing all", "origin", origin, "error", err)
		return allowAll
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			rc.logger.Warn("failed to close robots.txt body", "origin", origin, "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return allowAll
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		rc.logger.Warn("robots.txt not parsable, allowing all", "origin", origin, "status", resp.StatusCode, "error", err)
		return allowAll
	}
	return data
}

package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cian-offers-parser/internal/config"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Backoff = config.BackoffConfig{MinMS: 1, MaxMS: 5, JitterPct: 0}
	cfg.RateLimit.RPM = 600000
	cfg.Robots.Enabled = false
	return cfg
}

func TestBackoffCalculation(t *testing.T) {
	b := config.BackoffConfig{MinMS: 250, MaxMS: 2000, JitterPct: 20}
	minD := 250 * time.Millisecond
	maxD := 2000 * time.Millisecond

	for attempt := 1; attempt <= 6; attempt++ {
		backoff := backoffDelay(b, attempt)
		if backoff < minD || backoff > maxD*12/10 {
			t.Errorf("attempt %d: backoff out of expected range: %v", attempt, backoff)
		}
	}

	noJitter := config.BackoffConfig{MinMS: 100, MaxMS: 1000, JitterPct: 0}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{5, 1000 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := backoffDelay(noJitter, tt.attempt); got != tt.want {
			t.Errorf("backoffDelay(attempt=%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRateLimiterSpacing(t *testing.T) {
	rl := NewRateLimiter(1200) // 50ms
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx, "example.com"); err != nil {
			t.Fatalf("Rate limiter error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("3 requests passed in %v, expected >= 100ms spacing", elapsed)
	}

	// другой хост не ждёт
	start = time.Now()
	if err := rl.Wait(ctx, "other.com"); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > 40*time.Millisecond {
		t.Errorf("first request to new host waited %v", elapsed)
	}
}

func TestRateLimiterCancel(t *testing.T) {
	rl := NewRateLimiter(1) // раз в минуту
	if err := rl.Wait(context.Background(), "example.com"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx, "example.com"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
}

func TestHTTPFetcherRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if got := r.Header.Get("Accept-Language"); got == "" {
			t.Errorf("Accept-Language header not set")
		}
		fmt.Fprint(w, "<html><body>ok</body></html>")
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.HTTP.MaxRetries = 2
	f := NewHTTPFetcher(cfg, nil)
	defer f.Close()

	resp, err := f.Fetch(context.Background(), srv.URL+"/cat.php?p=1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if resp.StatusCode != http.StatusOK || string(resp.Body) != "<html><body>ok</body></html>" {
		t.Errorf("unexpected response: %d %q", resp.StatusCode, resp.Body)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestHTTPFetcherReturnsLastServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "maintenance")
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.HTTP.MaxRetries = 1
	resp, err := NewHTTPFetcher(cfg, nil).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
}

func TestHTTPFetcherTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	cfg := testConfig()
	cfg.HTTP.MaxRetries = 1
	if _, err := NewHTTPFetcher(cfg, nil).Fetch(context.Background(), addr); err == nil {
		t.Error("expected error for closed server")
	}
}

func TestHTTPFetcherRobots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
			return
		}
		fmt.Fprint(w, "page")
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Robots.Enabled = true
	f := NewHTTPFetcher(cfg, nil)

	if _, err := f.Fetch(context.Background(), srv.URL+"/cat.php?p=2"); err != nil {
		t.Errorf("allowed path: %v", err)
	}
	if _, err := f.Fetch(context.Background(), srv.URL+"/private/offer/1"); !errors.Is(err, ErrDisallowed) {
		t.Errorf("expected ErrDisallowed, got %v", err)
	}
}

func TestCollyFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "<html><body>colly</body></html>")
	}))
	defer srv.Close()

	f := NewCollyFetcher(testConfig(), nil)
	defer f.Close()

	// повторный визит того же адреса разрешён
	for i := 0; i < 2; i++ {
		resp, err := f.Fetch(context.Background(), srv.URL+"/cat.php?p=1")
		if err != nil {
			t.Fatalf("Fetch #%d: %v", i, err)
		}
		if string(resp.Body) != "<html><body>colly</body></html>" {
			t.Errorf("Body = %q", resp.Body)
		}
	}

	resp, err := f.Fetch(context.Background(), srv.URL+"/missing")
	if err != nil {
		t.Fatalf("Fetch 404: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", resp.StatusCode)
	}
}

func TestNewSelectsMode(t *testing.T) {
	cfg := testConfig()

	cfg.Fetch.Mode = "http"
	f, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := f.(*HTTPFetcher); !ok {
		t.Errorf("http mode: got %T", f)
	}

	cfg.Fetch.Mode = "colly"
	if f, _ = New(cfg, nil); f == nil {
		t.Fatal("colly mode: nil fetcher")
	}
	if _, ok := f.(*CollyFetcher); !ok {
		t.Errorf("colly mode: got %T", f)
	}

	cfg.Fetch.Mode = "ftp"
	if _, err := New(cfg, nil); err == nil {
		t.Error("expected error for unknown mode")
	}
}

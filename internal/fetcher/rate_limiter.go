package fetcher

import (
	"context"
	"sync"
	"time"
)

// RateLimiter выдерживает минимальный интервал между запросами к одному хосту (60s / rpm)
type RateLimiter struct {
	interval time.Duration
	hosts    map[string]*hostSlot
	mu       sync.Mutex
}

type hostSlot struct {
	next time.Time
	mu   sync.Mutex
}

func NewRateLimiter(rpm int) *RateLimiter {
	interval := time.Duration(0)
	if rpm > 0 {
		interval = time.Minute / time.Duration(rpm)
	}
	return &RateLimiter{
		interval: interval,
		hosts:    make(map[string]*hostSlot),
	}
}

func (rl *RateLimiter) slot(host string) *hostSlot {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	s, ok := rl.hosts[host]
	if !ok {
		s = &hostSlot{}
		rl.hosts[host] = s
	}
	return s
}

// Wait блокирует до следующего разрешённого слота хоста или до отмены ctx
func (rl *RateLimiter) Wait(ctx context.Context, host string) error {
	if rl.interval <= 0 {
		return ctx.Err()
	}

	s := rl.slot(host)

	s.mu.Lock()
	now := time.Now()
	start := s.next
	if start.Before(now) {
		start = now
	}
	s.next = start.Add(rl.interval)
	s.mu.Unlock()

	wait := time.Until(start)
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

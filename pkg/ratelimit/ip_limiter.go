package ratelimit

import (
	"sync"
	"time"
)

// Config bounds the per-IP limiter.
type Config struct {
	RequestsPerWindow int           `mapstructure:"requests_per_window"`
	Window            time.Duration `mapstructure:"window"`
	MaxTrackedIPs     int           `mapstructure:"max_tracked_ips"`
	StaleAfterWindows int           `mapstructure:"stale_after_windows"`
	CleanupEvery      int           `mapstructure:"cleanup_every"`
}

// DefaultConfig allows 120 requests per minute for up to 5000 addresses.
func DefaultConfig() Config {
	return Config{
		RequestsPerWindow: 120,
		Window:            time.Minute,
		MaxTrackedIPs:     5000,
		StaleAfterWindows: 5,
		CleanupEvery:      50,
	}
}

type visitor struct {
	windowStart time.Time
	count       int
	lastSeen    time.Time
}

// IPLimiter counts requests per client address in fixed windows: an address gets
// at most RequestsPerWindow admissions until its window is Window old. Entries idle for StaleAfterWindows windows are evicted every CleanupEvery
// admitted requests, and on demand when the map is full. When the map is
// full of active entries, unseen addresses are rejected.
type IPLimiter struct {
	mu       sync.Mutex
	cfg      Config
	visitors map[string]*visitor
	admitted int
	now      func() time.Time
}

// NewIPLimiter creates an IPLimiter; zero config fields take DefaultConfig values.
func NewIPLimiter(cfg Config) *IPLimiter {
	def := DefaultConfig()
	if cfg.RequestsPerWindow <= 0 {
		cfg.RequestsPerWindow = def.RequestsPerWindow
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.MaxTrackedIPs <= 0 {
		cfg.MaxTrackedIPs = def.MaxTrackedIPs
	}
	if cfg.StaleAfterWindows <= 0 {
		cfg.StaleAfterWindows = def.StaleAfterWindows
	}
	if cfg.CleanupEvery <= 0 {
		cfg.CleanupEvery = def.CleanupEvery
	}
	return &IPLimiter{
		cfg:      cfg,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Allow reports whether a request from ip may proceed. It satisfies echo's
// middleware.RateLimiterStore.
func (l *IPLimiter) Allow(ip string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		if len(l.visitors) >= l.cfg.MaxTrackedIPs {
			l.evictStale(now)
			if len(l.visitors) >= l.cfg.MaxTrackedIPs {
				return false, nil
			}
		}
		v = &visitor{windowStart: now}
		l.visitors[ip] = v
	}
	v.lastSeen = now

	if now.Sub(v.windowStart) >= l.cfg.Window {
		v.windowStart = now
		v.count = 0
	}
	if v.count >= l.cfg.RequestsPerWindow {
		return false, nil
	}
	v.count++

	l.admitted++
	if l.admitted%l.cfg.CleanupEvery == 0 {
		l.evictStale(now)
	}
	return true, nil
}

// Tracked returns the number of addresses currently held.
func (l *IPLimiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// RetryAfter is the wait advertised to rejected clients.
func (l *IPLimiter) RetryAfter() time.Duration {
	return l.cfg.Window
}

func (l *IPLimiter) evictStale(now time.Time) {
	staleAfter := time.Duration(l.cfg.StaleAfterWindows) * l.cfg.Window
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > staleAfter {
			delete(l.visitors, ip)
		}
	}
}

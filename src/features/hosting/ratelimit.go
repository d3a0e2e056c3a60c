package hosting

import (
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/contre95/musevault/src/features/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimiter applies a per-client fixed window limit to the routes it guards.
// The underlying Fiber limiter is rebuilt on reload, so a new limit starts fresh windows.
type RateLimiter struct {
	handler  atomic.Pointer[fiber.Handler]
	onReject func()

	mu      sync.Mutex
	current config.RateLimit
}

// NewRateLimiter creates a limiter from the rate limit config. onReject may be nil.
func NewRateLimiter(cfg config.RateLimit, onReject func()) *RateLimiter {
	if onReject == nil {
		onReject = func() {}
	}
	rl := &RateLimiter{onReject: onReject, current: cfg}
	rl.store(cfg)
	return rl
}

// ApplyConfig swaps in a reloaded limit when it changed.
func (rl *RateLimiter) ApplyConfig(cfg *config.Config) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if cfg.RateLimit == rl.current {
		return
	}
	rl.current = cfg.RateLimit
	rl.store(cfg.RateLimit)
	slog.Info("Rate limit reloaded", "enabled", cfg.RateLimit.Enabled, "requests", cfg.RateLimit.Requests, "window", cfg.RateLimit.Window)
}

func (rl *RateLimiter) store(cfg config.RateLimit) {
	var h fiber.Handler
	if cfg.Enabled {
		h = limiter.New(limiter.Config{
			Max:               cfg.Requests,
			Expiration:        cfg.Window,
			KeyGenerator:      clientKey,
			LimiterMiddleware: limiter.FixedWindow{},
			LimitReached:      rl.limitReached,
		})
	} else {
		h = func(c *fiber.Ctx) error { return c.Next() }
	}
	rl.handler.Store(&h)
}

func (rl *RateLimiter) limitReached(c *fiber.Ctx) error {
	rl.onReject()
	slog.Debug("Rate limit reached", "client", ClientIP(c), "path", c.Path())
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error": "Too many requests. Please try again soon.",
	})
}

// Handler returns the Fiber middleware enforcing the current limit.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return (*rl.handler.Load())(c)
	}
}

// clientKey copies the client IP out of the request buffers before the limiter stores it.
func clientKey(c *fiber.Ctx) string {
	return strings.Clone(ClientIP(c))
}

// ClientIP identifies the caller, trusting proxy headers before the socket address.
func ClientIP(c *fiber.Ctx) string {
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	for _, header := range []string{"CF-Connecting-IP", "X-Real-IP", "X-Client-IP"} {
		if value := strings.TrimSpace(c.Get(header)); value != "" {
			return value
		}
	}
	return c.IP()
}

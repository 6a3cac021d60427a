package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sudharshini/backend/internal/infrastructure/config"
	"github.com/sudharshini/backend/internal/infrastructure/logger"
	"github.com/sudharshini/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig carries what the HTTP middleware stack needs
type EngineConfig struct {
	HTTP        config.HTTPConfig
	ServiceName string
	Production  bool
	Tracing     bool
	Profiling   bool
	Meter       metric.Meter
	Logger      *zap.Logger
}

// Engine is the configured gin engine plus the limiters it owns
type Engine struct {
	*gin.Engine
	authLimiter *middleware.RateLimiter
	limiters    []*middleware.RateLimiter
}

// NewEngine builds a gin engine with the middleware stack applied in order:
// recovery, request id, tracing, request logging, metrics, profiling,
// security headers, CORS, body limit and the global rate limit.
func NewEngine(cfg EngineConfig) *Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	e := &Engine{Engine: engine}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.Tracing,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(cfg.Meter))
	engine.Use(middleware.Profiling(middleware.ProfilingConfig{
		Enabled:          cfg.Profiling,
		SkipPathPrefixes: []string{"/api/health"},
	}))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		e.limiters = append(e.limiters, limiter)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		requests, window := cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow
		if requests <= 0 {
			requests = 5
		}
		if window <= 0 {
			window = time.Minute
		}
		e.authLimiter = middleware.NewRateLimiter(requests, window)
		e.limiters = append(e.limiters, e.authLimiter)
	}

	return e
}

// AuthRateLimit returns the stricter limiter for credential endpoints, or
// nil when it is disabled
func (e *Engine) AuthRateLimit() gin.HandlerFunc {
	if e.authLimiter == nil {
		return nil
	}
	return middleware.RateLimit(e.authLimiter)
}

// Close stops the limiter cleanup goroutines
func (e *Engine) Close() {
	for _, l := range e.limiters {
		l.Stop()
	}
}

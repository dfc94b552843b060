// Package container wires the application with Uber FX.
package container

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/pantrypairing/server/internal/application/ai"
	"github.com/pantrypairing/server/internal/application/session"
	"github.com/pantrypairing/server/internal/domain/shopping"
	"github.com/pantrypairing/server/internal/infrastructure/ai/gemini"
	"github.com/pantrypairing/server/internal/infrastructure/ai/ollama"
	"github.com/pantrypairing/server/internal/infrastructure/ai/openai"
	"github.com/pantrypairing/server/internal/infrastructure/config"
	"github.com/pantrypairing/server/internal/infrastructure/http/apiserver"
	"github.com/pantrypairing/server/internal/infrastructure/http/handlers"
	"github.com/pantrypairing/server/internal/infrastructure/monitoring"
	"github.com/pantrypairing/server/internal/infrastructure/ocr/donut"
	"github.com/pantrypairing/server/internal/infrastructure/persistence/memory"
	redisrepo "github.com/pantrypairing/server/internal/infrastructure/persistence/redis"
	"github.com/pantrypairing/server/internal/infrastructure/realtime"
	"github.com/pantrypairing/server/internal/infrastructure/security"
	"github.com/pantrypairing/server/internal/ports/inbound"
	"github.com/pantrypairing/server/internal/ports/outbound"
	"github.com/pantrypairing/server/pkg/healthcheck"
	"github.com/pantrypairing/server/pkg/logger"
)

// Module provides every component. The caller supplies *config.Config.
var Module = fx.Options(
	LoggerModule,
	MonitoringModule,
	CacheModule,
	AIModule,
	SessionModule,
	HTTPModule,
	LifecycleModule,
)

// LoggerModule provides logging. Log level changes in the config file apply
// without a restart.
var LoggerModule = fx.Options(
	fx.Provide(func(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
		return logger.NewWithLevel(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug || cfg.IsDevelopment(),
		})
	}),
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log.Named("fx")}
	}),
	fx.Invoke(func(cfg *config.Config, level zap.AtomicLevel, log *zap.Logger) {
		cfg.Watch(log, func(next *config.Config) {
			newLevel := logger.ParseLevel(next.App.LogLevel)
			if newLevel != level.Level() {
				level.SetLevel(newLevel)
				log.Info("Log level changed", zap.String("level", newLevel.String()))
			}
		})
	}),
)

// MonitoringModule provides metrics and tracing
var MonitoringModule = fx.Provide(
	monitoring.NewMetrics,
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		tp, err := monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			Insecure:       cfg.Monitoring.OTLPInsecure,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: tp.Shutdown})
		return tp, nil
	},
)

// cacheResult exposes the Redis client when one is configured so the health
// check can ping it.
type cacheResult struct {
	fx.Out

	Cache outbound.CacheRepository
	Redis redis.UniversalClient
}

// CacheModule provides the AI response cache selected by cache.driver
var CacheModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (cacheResult, error) {
		switch cfg.Cache.Driver {
		case "redis":
			client, err := redisrepo.NewClient(context.Background(), cfg.Redis, log)
			if err != nil {
				return cacheResult{}, err
			}
			lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})
			return cacheResult{
				Cache: redisrepo.NewCacheRepository(client, cfg.Redis.KeyPrefix, log),
				Redis: client,
			}, nil
		case "memory":
			cache := memory.NewCacheRepository(cfg.Cache.CleanupInterval)
			lc.Append(fx.Hook{OnStop: func(context.Context) error {
				cache.Close()
				return nil
			}})
			log.Info("Using in-memory AI response cache")
			return cacheResult{Cache: cache}, nil
		default:
			log.Info("AI response cache disabled")
			return cacheResult{}, nil
		}
	},
)

// AIModule provides the generative model, the OCR collaborator and the gateway
var AIModule = fx.Provide(
	NewGenerativeModel,
	func(cfg *config.Config, log *zap.Logger) outbound.ReceiptOCR {
		if !cfg.OCR.Enabled {
			return nil
		}
		return donut.NewClient(donut.Config{BaseURL: cfg.OCR.BaseURL, Timeout: cfg.OCR.Timeout}, log)
	},
	func(
		model outbound.GenerativeModel,
		ocr outbound.ReceiptOCR,
		cache outbound.CacheRepository,
		metrics *monitoring.Metrics,
		cfg *config.Config,
		log *zap.Logger,
	) inbound.AIGateway {
		return ai.NewGateway(model, ocr, cache, metrics, ai.Config{
			Retry: ai.RetryPolicy{
				MaxAttempts: cfg.AI.MaxAttempts,
				BaseDelay:   cfg.AI.BaseDelay,
				MaxDelay:    cfg.AI.MaxDelay,
			},
			CacheTTL: cfg.AI.CacheTTL,
		}, log)
	},
)

// NewGenerativeModel selects the model adapter named by ai.provider.
func NewGenerativeModel(cfg *config.Config, log *zap.Logger) (outbound.GenerativeModel, error) {
	p := cfg.ActiveProvider()
	switch cfg.AI.Provider {
	case "gemini":
		return gemini.NewClient(gemini.Config{APIKey: p.APIKey, BaseURL: p.BaseURL, Model: p.Model, Timeout: cfg.AI.Timeout}, log), nil
	case "openai":
		return openai.NewClient(openai.Config{APIKey: p.APIKey, BaseURL: p.BaseURL, Model: p.Model, Timeout: cfg.AI.Timeout}, log), nil
	case "ollama":
		return ollama.NewClient(ollama.Config{BaseURL: p.BaseURL, Model: p.Model, Timeout: cfg.AI.Timeout}, log), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}

// SessionModule provides the session manager, token service and event hub
var SessionModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) *realtime.Hub {
		return realtime.NewHub(cfg.Server.AllowedOrigins, log)
	},
	func(gateway inbound.AIGateway, hub *realtime.Hub, metrics *monitoring.Metrics, cfg *config.Config, log *zap.Logger) (*session.Manager, error) {
		loc, err := cfg.Session.Location()
		if err != nil {
			return nil, err
		}
		links, err := shopping.NewLinkBuilder(cfg.Shopping.SearchURL)
		if err != nil {
			return nil, err
		}
		return session.NewManager(gateway, hub, metrics, session.ManagerConfig{
			IdleTTL:       cfg.Session.IdleTTL,
			SweepInterval: cfg.Session.SweepInterval,
			Store: session.StoreConfig{
				ExpiryThresholdDays: cfg.Session.ExpiryThresholdDays,
				Location:            loc,
				Links:               links,
			},
		}, log), nil
	},
	func(cfg *config.Config, log *zap.Logger) *security.TokenService {
		return security.NewTokenService(cfg.Auth, log)
	},
)

// HTTPModule provides the health checks, handlers and API server
var HTTPModule = fx.Provide(
	NewHealthCheck,
	func(manager *session.Manager, tokens *security.TokenService, hub *realtime.Hub, cfg *config.Config, log *zap.Logger) *handlers.Handlers {
		return handlers.NewHandlers(manager, tokens, hub, cfg.Server.MaxUploadBytes, log)
	},
	func(
		cfg *config.Config,
		h *handlers.Handlers,
		tokens *security.TokenService,
		health *healthcheck.HealthCheck,
		metrics *monitoring.Metrics,
		tracing *monitoring.TracingProvider,
		log *zap.Logger,
	) *apiserver.Server {
		return apiserver.NewServer(apiserver.Options{
			Config:   cfg,
			Handlers: h,
			Tokens:   tokens,
			Health:   health,
			Metrics:  metrics,
			Tracing:  tracing.Enabled(),
		}, log)
	},
)

// HealthParams are the dependencies the health checks probe.
type HealthParams struct {
	fx.In

	Config  *config.Config
	Logger  *zap.Logger
	Model   outbound.GenerativeModel
	OCR     outbound.ReceiptOCR
	Redis   redis.UniversalClient `optional:"true"`
	Manager *session.Manager
}

// NewHealthCheck registers a check per external dependency. The model and
// OCR services are non-critical: without them the API still serves pantry,
// bookmark and shopping commands.
func NewHealthCheck(p HealthParams) *healthcheck.HealthCheck {
	h := healthcheck.New(p.Config.App.Version, p.Logger)

	if p.Redis != nil {
		h.Register("redis", healthcheck.NewRedisChecker(p.Redis))
	}
	if pinger, ok := p.Model.(healthcheck.Pinger); ok {
		h.Register("model", healthcheck.NewPingChecker("model", pinger, false))
	}
	if pinger, ok := p.OCR.(healthcheck.Pinger); ok {
		h.Register("ocr", healthcheck.NewPingChecker("ocr", pinger, false))
	}
	h.Register("sessions", healthcheck.NewCustomChecker("sessions", func(context.Context) (healthcheck.Status, string, interface{}) {
		return healthcheck.StatusHealthy, "", map[string]int{"active": p.Manager.Count()}
	}))

	return h
}

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(RegisterLifecycleHooks)

// RegisterLifecycleHooks starts the hub, the session sweeper and the HTTP
// server in that order. Shutdown runs in reverse: the server stops accepting
// requests, then background AI work drains, then the hub closes.
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	hub *realtime.Hub,
	manager *session.Manager,
	server *apiserver.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("Starting Pantry Pairing server",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("ai_provider", cfg.AI.Provider),
			)
			return nil
		},
		OnStop: func(context.Context) error {
			log.Info("Pantry Pairing server stopped")
			return log.Sync()
		},
	})
	lc.Append(fx.Hook{OnStart: hub.Start, OnStop: hub.Stop})
	lc.Append(fx.Hook{OnStart: manager.Start, OnStop: manager.Stop})
	lc.Append(fx.Hook{OnStart: server.Start, OnStop: server.Shutdown})
}

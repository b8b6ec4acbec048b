package bootstrap

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/redis/go-redis/v9"

	"stocksense/internal/adapters/config"
	errnoop "stocksense/internal/adapters/errors/noop"
	"stocksense/internal/adapters/errors/sentry"
	redisclient "stocksense/internal/adapters/redis"
	"stocksense/internal/adapters/telegram"
	"stocksense/internal/agent"
	"stocksense/internal/api"
	"stocksense/internal/api/health"
	"stocksense/internal/api/ws"
	"stocksense/internal/domain/focus"
	"stocksense/internal/knowledge"
	"stocksense/internal/marketdata"
	"stocksense/internal/metrics"
	memrepo "stocksense/internal/repository/memory"
	redisrepo "stocksense/internal/repository/redis"
	focussvc "stocksense/internal/services/focus"
	"stocksense/internal/services/tracking"
	"stocksense/internal/workers"
	"stocksense/pkg/errors"
	"stocksense/pkg/logger"
)

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// MustInitConfig loads configuration and initializes logger
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	c.Log = logger.Get()
	c.Log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	// Initialize error tracker
	c.ErrorTracker = provideErrorTracker(cfg, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)
}

// ========================================
// Phase 2: Infrastructure Layer
// ========================================

// MustInitInfrastructure initializes metrics and the optional Redis store
func (c *Container) MustInitInfrastructure() {
	metrics.Init()
	c.Log.Info("✓ Metrics initialized")

	if !c.Config.Redis.Enabled {
		c.Log.Info("Redis disabled, using in-memory stores")
		return
	}

	c.Log.Info("Connecting to Redis...")
	client, err := redisclient.NewClient(c.Config.Redis)
	if err != nil {
		c.Log.Fatalf("failed to connect redis: %v", err)
	}
	c.Redis = client
	c.Log.Info("✓ Redis connected")
}

// ========================================
// Phase 3: Domain Layer - Repositories
// ========================================

// MustInitRepositories initializes all domain repositories
// Redis-backed when configured, in-memory otherwise
func (c *Container) MustInitRepositories() {
	if c.Redis != nil {
		c.Repos.Profile = redisrepo.NewProfileRepository(c.Redis.Client())
		c.Repos.Focus = redisrepo.NewFocusRepository(c.Redis.Client())
		c.Repos.Layout = redisrepo.NewLayoutRepository(c.Redis.Client())
	} else {
		c.Repos.Profile = memrepo.NewProfileRepository()
		c.Repos.Focus = memrepo.NewFocusRepository()
		c.Repos.Layout = memrepo.NewLayoutRepository()
	}

	c.Log.Info("✓ Repositories initialized")
}

// ========================================
// Phase 4: Market Data Providers
// ========================================

// MustInitProviders initializes market data clients and the shared cache
func (c *Container) MustInitProviders() {
	c.Providers.Simulator = marketdata.NewSimulator(time.Now().UnixNano())
	c.Providers.Finnhub = marketdata.NewFinnhubClient(c.Config.Providers)
	c.Providers.IEX = marketdata.NewIEXClient(c.Config.Providers)
	c.Providers.News = marketdata.NewNewsClient(c.Config.Providers)
	c.Providers.Cache = marketdata.NewCache()

	c.Log.Info("✓ Market data providers initialized")
}

// ========================================
// Phase 5: Domain Services
// ========================================

// MustInitServices initializes domain services and the agent
func (c *Container) MustInitServices() {
	clk := clock.New()

	c.Services.Knowledge = knowledge.NewService(
		knowledge.NewDefinitionClient(c.Config.Providers.HTTPTimeout),
	)
	c.Services.Tracking = tracking.NewService(c.Repos.Profile, c.Services.Knowledge, clk)
	c.Services.Focus = focussvc.NewService(c.Repos.Focus, clk, focusDefaults(c.Config.Focus))

	c.Services.Dispatcher = agent.NewDispatcher()
	c.Services.Agent = agent.New(
		c.Providers.Simulator,
		c.Services.Tracking,
		c.Services.Dispatcher,
		clk,
		c.Config.Agent.CycleInterval,
	)

	c.Log.Info("✓ Services initialized")
}

// focusDefaults maps the env-driven focus section onto timer settings
func focusDefaults(cfg config.FocusConfig) focus.Settings {
	s := focus.DefaultSettings()
	s.WorkMinutes = int(cfg.WorkDuration.Minutes())
	s.ShortBreakMinutes = int(cfg.ShortBreakDuration.Minutes())
	s.LongBreakMinutes = int(cfg.LongBreakDuration.Minutes())
	s.SessionsUntilLongBreak = cfg.SessionsUntilLongBreak
	s.BreakIntervalMinutes = int(cfg.BreakReminderInterval.Minutes())
	s.AutoChain = cfg.AutoChain
	return s
}

// ========================================
// Phase 6: Application Layer
// ========================================

// MustInitApplication initializes the HTTP server, WebSocket hub and
// the optional Telegram notifier
func (c *Container) MustInitApplication() {
	// Health handler (nil redis reports the store as disabled)
	var redisHealth *redis.Client
	if c.Redis != nil {
		redisHealth = c.Redis.Client()
	}
	c.Application.HealthHandler = health.New(
		c.Log,
		redisHealth,
		c.Config.App.Name,
		c.Config.App.Version,
	)

	// WebSocket hub streams agent actions and focus notifications
	c.Application.Hub = ws.NewHub()
	c.Services.Dispatcher.Subscribe(func(a agent.Action) {
		c.Application.Hub.Broadcast("action", a)
	})
	c.Services.Focus.Subscribe(func(n focussvc.Notification) {
		c.Application.Hub.Broadcast("focus", n)
	})

	// Telegram notifier (config-gated)
	if c.Config.Telegram.Enabled() {
		notifier, err := telegram.NewNotifier(c.Config.Telegram)
		if err != nil {
			c.Log.Fatalf("failed to init telegram notifier: %v", err)
		}
		c.Application.Telegram = notifier
		c.Services.Dispatcher.Subscribe(notifier.NotifyAction)
		c.Services.Focus.Subscribe(notifier.NotifyFocus)
		c.Log.Info("✓ Telegram notifier enabled")
	}

	// HTTP server
	handlers := api.NewHandlers(
		c.Services.Tracking,
		c.Services.Focus,
		c.Services.Knowledge,
		c.Services.Agent,
		c.Providers.Cache,
		c.Providers.Simulator,
		c.Providers.Simulator,
		c.Providers.Finnhub,
		c.Providers.IEX,
		c.Repos.Layout,
	)
	c.Application.HTTPServer = api.NewServer(
		api.ServerConfig{
			Port:        c.Config.Server.Port,
			ServiceName: c.Config.App.Name,
			Version:     c.Config.App.Version,
		},
		handlers,
		c.Application.HealthHandler,
		c.Application.Hub,
		c.Log,
	)

	c.Log.Info("✓ Application layer initialized")
}

// ========================================
// Phase 7: Background Processing
// ========================================

// MustInitBackground initializes background workers
func (c *Container) MustInitBackground() {
	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workers.NewInsightRefreshWorker(
		c.Providers.Simulator,
		c.Providers.IEX,
		c.Providers.Cache,
		c.Config.Workers.InsightRefreshInterval,
	))
	scheduler.RegisterWorker(workers.NewNewsRefreshWorker(
		c.Providers.News,
		c.Services.Tracking,
		c.Providers.Cache,
		c.Config.Workers.NewsRefreshInterval,
	))
	scheduler.RegisterWorker(workers.NewFocusScoreWorker(
		c.Services.Focus,
		c.Config.Workers.FocusScoreInterval,
	))
	c.Background.WorkerScheduler = scheduler

	c.Log.Info("✓ Background processing initialized")
}

// ========================================
// Providers
// ========================================

// provideErrorTracker creates an error tracker (Sentry or noop)
func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnw("Failed to init Sentry, falling back to noop tracker", "error", err)
		return errnoop.New()
	}

	log.Info("✓ Sentry error tracking enabled")
	return tracker
}

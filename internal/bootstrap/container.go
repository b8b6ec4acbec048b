package bootstrap

import (
	"context"
	"sync"

	"stocksense/internal/adapters/config"
	redisclient "stocksense/internal/adapters/redis"
	"stocksense/internal/adapters/telegram"
	"stocksense/internal/agent"
	"stocksense/internal/api"
	"stocksense/internal/api/health"
	"stocksense/internal/api/ws"
	"stocksense/internal/domain/focus"
	"stocksense/internal/domain/layout"
	"stocksense/internal/domain/user"
	"stocksense/internal/knowledge"
	"stocksense/internal/marketdata"
	focussvc "stocksense/internal/services/focus"
	"stocksense/internal/services/tracking"
	"stocksense/internal/workers"
	"stocksense/pkg/errors"
	"stocksense/pkg/logger"
)

// Container holds all application dependencies and their lifecycle.
// Components are organized in initialization order.
type Container struct {
	// Core configuration & logging
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Infrastructure Layer (nil when running on in-memory stores)
	Redis *redisclient.Client

	// Domain Layer
	Repos    *Repositories
	Services *Services

	// Market data providers
	Providers *Providers

	// Application Layer
	Application *Application

	// Background Processing
	Background *Background

	// Lifecycle management
	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Repositories groups all domain repositories
type Repositories struct {
	Profile user.Repository
	Focus   focus.Repository
	Layout  layout.Repository
}

// Services groups all domain services
type Services struct {
	Knowledge  *knowledge.Service
	Tracking   *tracking.Service
	Focus      *focussvc.Service
	Dispatcher *agent.Dispatcher
	Agent      *agent.Agent
}

// Providers groups the market data clients and their shared cache
type Providers struct {
	Simulator *marketdata.Simulator
	Finnhub   *marketdata.FinnhubClient
	IEX       *marketdata.IEXClient
	News      *marketdata.NewsClient
	Cache     *marketdata.Cache
}

// Application groups application layer components
type Application struct {
	HTTPServer    *api.Server
	HealthHandler *health.Handler
	Hub           *ws.Hub
	Telegram      *telegram.Notifier // nil unless configured
}

// Background groups background processing components
type Background struct {
	WorkerScheduler *workers.Scheduler
}

// NewContainer creates a new dependency container
func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Repos:       &Repositories{},
		Services:    &Services{},
		Providers:   &Providers{},
		Application: &Application{},
		Background:  &Background{},
		Lifecycle:   NewLifecycle(),
		WG:          &sync.WaitGroup{},
		Context:     ctx,
		Cancel:      cancel,
	}
}

// MustInit initializes all components in the correct order
// Panics on any initialization error (fail-fast at startup)
func (c *Container) MustInit() {
	c.MustInitConfig()
	c.MustInitInfrastructure()
	c.MustInitRepositories()
	c.MustInitProviders()
	c.MustInitServices()
	c.MustInitApplication()
	c.MustInitBackground()
}

// Start starts all background components
func (c *Container) Start() error {
	c.Log.Info("Starting all systems...")

	if err := c.Services.Focus.Start(c.Context); err != nil {
		return errors.Wrap(err, "failed to start focus tracker")
	}

	if c.Config.Agent.AutoStart {
		c.Services.Agent.Start()
	}

	if err := c.Background.WorkerScheduler.Start(c.Context); err != nil {
		return errors.Wrap(err, "failed to start workers")
	}

	// Start HTTP server
	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.Application.HTTPServer.Start(); err != nil {
			c.Log.Errorf("HTTP server failed: %v", err)
			c.Cancel() // Trigger shutdown on fatal HTTP error
		}
	}()

	c.Log.Info("All systems operational")
	return nil
}

// Shutdown performs graceful shutdown in the correct order
func (c *Container) Shutdown() {
	c.Log.Info("Initiating graceful shutdown...")

	c.Cancel()

	c.Lifecycle.Shutdown(
		c.WG,
		c.Application.HTTPServer,
		c.Services.Agent,
		c.Services.Focus,
		c.Background.WorkerScheduler,
		c.Application.Hub,
		c.Redis,
		c.ErrorTracker,
		c.Log,
	)
}

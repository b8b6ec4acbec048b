package bootstrap

import (
	"context"
	"sync"
	"time"

	redisclient "stocksense/internal/adapters/redis"
	"stocksense/internal/agent"
	"stocksense/internal/api"
	"stocksense/internal/api/ws"
	focussvc "stocksense/internal/services/focus"
	"stocksense/internal/workers"
	"stocksense/pkg/errors"
	"stocksense/pkg/logger"
)

// Lifecycle manages graceful startup and shutdown of components
type Lifecycle struct {
	shutdownTimeout time.Duration
}

// NewLifecycle creates a new lifecycle manager
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		shutdownTimeout: 30 * time.Second,
	}
}

// Shutdown performs coordinated cleanup of all components in the correct order:
// 1. No new requests accepted
// 2. Agent and focus tracker stop producing events
// 3. Workers finish cleanly
// 4. WebSocket clients disconnected
// 5. Logs and errors flushed
// 6. Redis last (other components may need it during shutdown)
func (l *Lifecycle) Shutdown(
	wg *sync.WaitGroup,
	httpServer *api.Server,
	agentSvc *agent.Agent,
	focusSvc *focussvc.Service,
	workerScheduler *workers.Scheduler,
	hub *ws.Hub,
	redisClient *redisclient.Client,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer shutdownCancel()

	// ========================================
	// Step 1: Stop HTTP Server (5s timeout)
	// ========================================
	log.Info("[1/8] Stopping HTTP server...")
	httpCtx, httpCancel := context.WithTimeout(shutdownCtx, 5*time.Second)
	defer httpCancel()

	if err := httpServer.Shutdown(httpCtx); err != nil {
		log.Errorw("HTTP server shutdown failed", "error", err)
	} else {
		log.Info("✓ HTTP server stopped")
	}

	// ========================================
	// Step 2: Stop Agent
	// ========================================
	log.Info("[2/8] Stopping agent...")
	agentSvc.Stop()
	log.Info("✓ Agent stopped")

	// ========================================
	// Step 3: Stop Focus Tracker
	// ========================================
	log.Info("[3/8] Stopping focus tracker...")
	focusSvc.Stop()
	log.Info("✓ Focus tracker stopped")

	// ========================================
	// Step 4: Stop Background Workers
	// ========================================
	log.Info("[4/8] Stopping background workers...")
	if err := workerScheduler.Stop(); err != nil {
		log.Errorw("Workers shutdown failed", "error", err)
	} else {
		log.Info("✓ Workers stopped")
	}

	// ========================================
	// Step 5: Close WebSocket Hub & Wait for Goroutines
	// ========================================
	log.Info("[5/8] Closing WebSocket hub...")
	if hub != nil {
		hub.Close()
	}
	l.waitForGoroutines(wg, 5*time.Second, log)

	// ========================================
	// Step 6: Flush Error Tracker
	// ========================================
	log.Info("[6/8] Flushing error tracker...")
	l.flushErrorTracker(errorTracker, shutdownCtx, log)

	// ========================================
	// Step 7: Sync Logs
	// ========================================
	log.Info("[7/8] Syncing logs...")
	if err := logger.Sync(); err != nil {
		log.Warn("Log sync completed with warnings")
	} else {
		log.Info("✓ Logs synced")
	}

	// ========================================
	// Step 8: Close Redis
	// LAST - other components may need it during shutdown
	// ========================================
	log.Info("[8/8] Closing data stores...")
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Errorw("Redis close failed", "error", err)
		} else {
			log.Info("✓ Redis connection closed")
		}
	}

	log.Info("✅ Graceful shutdown complete")
}

// waitForGoroutines waits for all goroutines with a timeout
func (l *Lifecycle) waitForGoroutines(wg *sync.WaitGroup, timeout time.Duration, log *logger.Logger) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("✓ All goroutines finished")
	case <-time.After(timeout):
		log.Warnw("⚠ Some goroutines did not finish within timeout", "timeout", timeout)
	}
}

// flushErrorTracker flushes the error tracker (Sentry, etc.)
func (l *Lifecycle) flushErrorTracker(tracker errors.Tracker, ctx context.Context, log *logger.Logger) {
	if tracker == nil {
		return
	}

	flushCtx, flushCancel := context.WithTimeout(ctx, 3*time.Second)
	defer flushCancel()

	if err := tracker.Flush(flushCtx); err != nil {
		log.Errorw("Error tracker flush failed", "error", err)
	} else {
		log.Info("✓ Error tracker flushed")
	}
}

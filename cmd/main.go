package main

import (
	"os"
	"os/signal"
	"syscall"

	"stocksense/internal/bootstrap"
	"stocksense/pkg/logger"
)

func main() {
	container := bootstrap.NewContainer()
	container.MustInit()
	defer logger.Sync()

	if err := container.Start(); err != nil {
		container.Log.Fatalf("Failed to start: %v", err)
	}

	waitForShutdown(container)
}

// waitForShutdown blocks until a termination signal or a fatal
// component error, then runs the ordered shutdown sequence
func waitForShutdown(container *bootstrap.Container) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		container.Log.Infof("Received signal: %v", sig)
	case <-container.Context.Done():
		container.Log.Warn("Context cancelled, shutting down")
	}

	container.Shutdown()
}

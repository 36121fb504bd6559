package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"cian-offers-parser/internal/observability"
)

// GracefulShutdown отменяет context по SIGINT/SIGTERM; повторный сигнал завершает процесс
func GracefulShutdown(parent context.Context, logger *observability.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	// done закрывается вызовом stop; после первого сигнала ctx уже отменён
	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		cancel()
		once.Do(func() { close(done) })
	}

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
			return
		}

		select {
		case sig := <-sigChan:
			logger.Warn("Second signal, exiting", "signal", sig.String())
			os.Exit(130)
		case <-done:
		}
	}()

	return ctx, stop
}

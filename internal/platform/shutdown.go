// Package platform turns operating system stop signals into context cancellation.
package platform

import (
	"context"
	"os"
	"os/signal"

	"github.com/dalfonso89/currency-converter/internal/logger"
)

// NewShutdownContext returns a context canceled by the first stop signal or by
// the returned cancel func. The signal that arrived is logged at info level.
func NewShutdownContext(parent context.Context, log *logger.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	received := make(chan os.Signal, 1)
	signal.Notify(received, stopSignals...)

	go func() {
		select {
		case sig := <-received:
			log.WithField("signal", sig.String()).Info("Stop signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(received)
		cancel()
	}
}

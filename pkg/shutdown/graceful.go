package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/honeycarbs/zighang-ingest/pkg/logging"
)

type Stoppable interface {
	Shutdown(ctx context.Context) error
}

// Func adapts a plain function to Stoppable
type Func func(ctx context.Context) error

func (f Func) Shutdown(ctx context.Context) error {
	return f(ctx)
}

// Graceful blocks until one of signals arrives, then stops every component in order
func Graceful(signals []os.Signal, timeout time.Duration, log *logging.Logger, stoppables ...Stoppable) {
	sigCtx, stop := signal.NotifyContext(context.Background(), signals...)
	defer stop()

	<-sigCtx.Done()
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := Stop(ctx, stoppables...); err != nil {
		log.Warn("graceful shutdown completed with error", "err", err)
	} else {
		log.Info("graceful shutdown completed successfully")
	}
}

// Stop shuts components down in order; every component is stopped even if an earlier one fails
func Stop(ctx context.Context, stoppables ...Stoppable) error {
	var errs []error
	for _, s := range stoppables {
		if err := s.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

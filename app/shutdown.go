package app

import (
	"context"
	"errors"
	"fmt"
	"go-property-api/logger"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

type shutdownStep struct {
	name  string
	close func(ctx context.Context) error
}

// sequential folds steps into one shutdown operation that runs them in order.
// gfshutdown runs separate operations concurrently, so the HTTP drain has to
// share an operation with the stores its in-flight handlers still use.
// Every step runs even when an earlier one fails.
func sequential(steps ...shutdownStep) gfshutdown.Operation {
	return func(ctx context.Context) error {
		var errs []error
		for _, step := range steps {
			if err := step.close(ctx); err != nil {
				logger.Log.WithError(err).Errorf("Shutdown step %s failed", step.name)
				errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
			}
		}
		return errors.Join(errs...)
	}
}

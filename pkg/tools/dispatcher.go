package tools

import (
	"context"

	"go.uber.org/zap"
)

// JobFunc defines a function executed asynchronously.
type JobFunc func(ctx context.Context) error

// Dispatch runs the job in a separate goroutine, fire-and-forget. Errors and
// panics are logged, never propagated to the caller.
func Dispatch(ctx context.Context, name string, log *zap.Logger, fn JobFunc) {
	if log == nil {
		log = zap.NewNop()
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("background job panicked", zap.String("job", name), zap.Any("panic", r))
			}
		}()
		if err := fn(ctx); err != nil {
			log.Error("background job failed", zap.String("job", name), zap.Error(err))
		}
	}()
}

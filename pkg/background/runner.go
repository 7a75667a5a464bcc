package background

import (
	"context"

	"go.uber.org/zap"

	"factura-scanner.backend/pkg/logger"
)

// Runner schedules work without blocking the caller. The webhook handler
// must never wait on the heavy path, so submission returns immediately;
// tests substitute a synchronous runner to observe final state.
type Runner interface {
	Submit(ctx context.Context, name string, fn func(ctx context.Context))
}

// GoRunner runs tasks on their own goroutine. Panics are recovered and
// logged so a misbehaving task cannot crash the process.
type GoRunner struct{}

func NewGoRunner() *GoRunner {
	return &GoRunner{}
}

func (r *GoRunner) Submit(ctx context.Context, name string, fn func(ctx context.Context)) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(ctx, "background task panicked",
					zap.String("task", name),
					zap.Any("panic", rec),
				)
			}
		}()
		fn(ctx)
	}()
}

// SyncRunner executes tasks inline. Test wiring only.
type SyncRunner struct{}

func NewSyncRunner() *SyncRunner {
	return &SyncRunner{}
}

func (r *SyncRunner) Submit(ctx context.Context, name string, fn func(ctx context.Context)) {
	fn(ctx)
}

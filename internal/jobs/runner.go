package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/mycsd-points/internal/observability"
)

type Job func(ctx context.Context) error

type Runner struct {
	ctx context.Context
	log *zap.Logger
}

func New(ctx context.Context, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{ctx: ctx, log: log}
}

// Every запускает fn по тикеру до отмены контекста. Паника в задаче не роняет цикл.
func (r *Runner) Every(interval time.Duration, name string, fn Job) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.C:
				r.runOnce(name, fn)
			}
		}
	}()
}

func (r *Runner) runOnce(name string, fn Job) {
	start := time.Now()
	failed := true
	defer func() {
		if rec := recover(); rec != nil {
			observability.CaptureOp(name, fmt.Errorf("panic in job %s: %v", name, rec))
			r.log.Error("job panic", zap.String("job", name), zap.Any("panic", rec))
		}
		observeRun(name, start, failed)
	}()
	if err := fn(r.ctx); err != nil {
		r.log.Warn("job failed", zap.String("job", name), zap.Error(err))
		return
	}
	failed = false
}

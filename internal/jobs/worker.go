package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/go-billing/internal/config"
	"github.com/diewo77/go-billing/internal/logger"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// TypeRunJobs is the asynq task executing one scheduler run.
const TypeRunJobs = "billing:jobs:run"

// Worker runs the scheduler through asynq, so that only one instance of a
// deployment executes each run.
type Worker struct {
	cfg       config.JobsConfig
	srv       *asynq.Server
	scheduler *asynq.Scheduler
	handler   *RunHandler
	log       zerolog.Logger
}

func NewWorker(cfg config.JobsConfig, runner *Scheduler) *Worker {
	log := logger.WithComponent("worker")
	opt := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 1,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error().Err(err).Str("task", task.Type()).Msg("task failed")
		}),
	})
	return &Worker{
		cfg:       cfg,
		srv:       srv,
		scheduler: asynq.NewScheduler(opt, &asynq.SchedulerOpts{}),
		handler:   NewRunHandler(runner),
		log:       log,
	}
}

// Run registers the periodic task and processes it until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	task := asynq.NewTask(TypeRunJobs, nil)
	entry, err := w.scheduler.Register(w.cfg.Cron, task, asynq.Unique(w.uniqueTTL()), asynq.MaxRetry(0))
	if err != nil {
		return fmt.Errorf("register %s: %w", w.cfg.Cron, err)
	}
	if err := w.scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer w.scheduler.Shutdown()

	mux := asynq.NewServeMux()
	mux.Handle(TypeRunJobs, w.handler)
	if err := w.srv.Start(mux); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	w.log.Info().Str("entry", entry).Str("cron", w.cfg.Cron).Str("redis", w.cfg.RedisAddr).Msg("worker started")

	<-ctx.Done()
	w.srv.Shutdown()
	w.log.Info().Msg("worker stopped")
	return nil
}

func (w *Worker) uniqueTTL() time.Duration {
	if w.cfg.Interval > 0 {
		return w.cfg.Interval
	}
	return time.Hour
}

// RunHandler executes a scheduler run for each task.
type RunHandler struct {
	runner *Scheduler
}

func NewRunHandler(runner *Scheduler) *RunHandler {
	return &RunHandler{runner: runner}
}

func (h *RunHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	err := h.runner.RunOnce(ctx)
	if errors.Is(err, ErrRunInProgress) {
		return nil
	}
	return err
}

package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is one long-lived periodic worker under supervision.
type Task struct {
	Name         string
	InitialDelay time.Duration
	// Run performs one pass, or the whole loop for self-pacing tasks. A
	// self-pacing Run only returns on context cancellation.
	Run func(ctx context.Context) error
	// SuccessCooldown is the pause after a clean pass; zero marks the task
	// self-pacing.
	SuccessCooldown time.Duration
	// ErrorCooldown is the pause after a failed pass.
	ErrorCooldown time.Duration
}

// Supervisor launches tasks as independent goroutines with staggered startup
// delays so the stages do not contend at boot. A pass-level error never kills
// a task; it cools down and resumes.
type Supervisor struct {
	tasks  []Task
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewSupervisor registers the tasks to run.
func NewSupervisor(logger *slog.Logger, tasks ...Task) *Supervisor {
	return &Supervisor{tasks: tasks, logger: logger}
}

// Start launches every task and blocks until all of them have exited, which
// happens only when ctx is cancelled.
func (s *Supervisor) Start(ctx context.Context) {
	for _, task := range s.tasks {
		s.wg.Add(1)
		go func(task Task) {
			defer s.wg.Done()
			s.runTask(ctx, task)
		}(task)
	}
	s.wg.Wait()
}

func (s *Supervisor) runTask(ctx context.Context, task Task) {
	logger := s.logger.With("task", task.Name)

	if err := sleepCtx(ctx, task.InitialDelay); err != nil {
		return
	}
	logger.Info("task started")

	for {
		err := task.Run(ctx)
		if ctx.Err() != nil {
			logger.Info("task stopped")
			return
		}

		cooldown := task.SuccessCooldown
		if err != nil {
			logger.Error("pass failed", "error", err, "retry_in", task.ErrorCooldown)
			cooldown = task.ErrorCooldown
		} else if cooldown > 0 {
			logger.Info("pass finished", "next_in", cooldown)
		}

		if err := sleepCtx(ctx, cooldown); err != nil {
			logger.Info("task stopped")
			return
		}
	}
}

package queue

import (
	"fmt"

	"github.com/hibiken/asynq"
)

// Scheduler registers the periodic maintenance tasks.
type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddr string) *Scheduler {
	return &Scheduler{
		scheduler: asynq.NewScheduler(asynq.RedisClientOpt{Addr: redisAddr}, nil),
	}
}

// RegisterMaintenanceJobs wires the cron entries: count reconciliation
// hourly, staging-dir sweep every 30 minutes.
func (s *Scheduler) RegisterMaintenanceJobs() error {
	reconcile, err := NewReconcileCountsTask()
	if err != nil {
		return fmt.Errorf("failed to build reconcile task: %w", err)
	}
	if _, err := s.scheduler.Register("0 * * * *", reconcile); err != nil {
		return fmt.Errorf("failed to register reconcile job: %w", err)
	}

	sweep, err := NewSweepTmpTask()
	if err != nil {
		return fmt.Errorf("failed to build sweep task: %w", err)
	}
	if _, err := s.scheduler.Register("*/30 * * * *", sweep); err != nil {
		return fmt.Errorf("failed to register sweep job: %w", err)
	}

	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}

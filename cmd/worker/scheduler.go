package main

import (
	"log"

	"pubrepo-backend/internal/infrastructure/queue"
)

type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(redisAddr string) *asynqScheduler {
	scheduler := queue.NewScheduler(redisAddr)

	if err := scheduler.RegisterMaintenanceJobs(); err != nil {
		log.Fatalf("failed to register scheduled jobs: %v", err)
	}

	go func() {
		log.Println("scheduler starting...")
		if err := scheduler.Start(); err != nil {
			log.Fatalf("scheduler failed: %v", err)
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

func (s *asynqScheduler) Shutdown() {
	log.Println("scheduler shutting down...")
	s.Scheduler.Shutdown()
}

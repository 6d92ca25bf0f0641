package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"
)

type asynqServer struct {
	*asynq.Server
}

func setupAsynqServer(redisAddr string, handlers *handlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.register(mux)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 10,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
				log.Printf("task %s failed: %v", task.Type(), err)
			}),
		},
	)

	go func() {
		log.Println("worker starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("worker failed: %v", err)
		}
	}()

	return &asynqServer{Server: srv}
}

func (s *asynqServer) Shutdown() {
	log.Println("worker shutting down...")
	s.Server.Shutdown()
}

package main

import (
	"github.com/hibiken/asynq"

	"pubrepo-backend/internal/domains/publication/job"
	"pubrepo-backend/internal/infrastructure/queue"
	"pubrepo-backend/pkg/container"
)

type handlerRegistry struct {
	reconcileCounts *job.ReconcileCountsHandler
	sweepTmp        *job.SweepTmpHandler
}

func initializeHandlers(c *container.Container) *handlerRegistry {
	return &handlerRegistry{
		reconcileCounts: job.NewReconcileCountsHandler(c.PublicationRepo),
		sweepTmp:        job.NewSweepTmpHandler(c.Config.Upload.TmpDir, c.Config.Upload.StaleAfter),
	}
}

func (r *handlerRegistry) register(mux *asynq.ServeMux) {
	mux.Handle(queue.TypeReconcileCounts, r.reconcileCounts)
	mux.Handle(queue.TypeSweepTmpUploads, r.sweepTmp)
}

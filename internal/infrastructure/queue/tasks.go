package queue

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task types handled by cmd/worker.
const (
	TypeReconcileCounts = "publication:reconcile_counts"
	TypeSweepTmpUploads = "upload:sweep_tmp"
)

// ReconcileCountsPayload is empty today; the task always walks every
// active publication.
type ReconcileCountsPayload struct{}

// SweepTmpPayload carries no data; staging dir and age threshold come from
// worker config.
type SweepTmpPayload struct{}

func NewReconcileCountsTask() (*asynq.Task, error) {
	payload, err := json.Marshal(ReconcileCountsPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeReconcileCounts, payload), nil
}

func NewSweepTmpTask() (*asynq.Task, error) {
	payload, err := json.Marshal(SweepTmpPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSweepTmpUploads, payload), nil
}

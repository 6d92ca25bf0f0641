package job

import (
	"context"

	"github.com/hibiken/asynq"

	"pubrepo-backend/internal/domains/publication/repository"
	"pubrepo-backend/pkg/logger"
)

// ReconcileCountsHandler repairs co_author_count drift. The count is
// recomputed in-transaction on every assignment write, so drift only
// appears after manual data edits or partial restores; this job is the
// safety net.
type ReconcileCountsHandler struct {
	repo repository.RepositoryInterface
}

func NewReconcileCountsHandler(repo repository.RepositoryInterface) *ReconcileCountsHandler {
	return &ReconcileCountsHandler{repo: repo}
}

func (h *ReconcileCountsHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	ids, err := h.repo.ListIDs(ctx)
	if err != nil {
		return err
	}

	drifted := 0
	for _, id := range ids {
		before, err := h.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		after, err := h.repo.RecountCoAuthors(ctx, id)
		if err != nil {
			return err
		}
		if after != before.CoAuthorCount {
			drifted++
			logger.Warn("co-author count drift repaired", map[string]interface{}{
				"publication_id": id.String(),
				"stored":         before.CoAuthorCount,
				"actual":         after,
			})
		}
	}

	logger.Info("co-author count reconciliation finished", map[string]interface{}{
		"publications": len(ids),
		"drifted":      drifted,
	})
	return nil
}

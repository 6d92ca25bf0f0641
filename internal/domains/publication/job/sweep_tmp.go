package job

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"pubrepo-backend/pkg/logger"
)

// SweepTmpHandler removes staged upload files that outlived their request.
// Staged files are normally removed by the create flow; crashes mid-upload
// leave strays behind.
type SweepTmpHandler struct {
	tmpDir     string
	staleAfter time.Duration
}

func NewSweepTmpHandler(tmpDir string, staleAfter time.Duration) *SweepTmpHandler {
	return &SweepTmpHandler{tmpDir: tmpDir, staleAfter: staleAfter}
}

func (h *SweepTmpHandler) ProcessTask(_ context.Context, _ *asynq.Task) error {
	entries, err := os.ReadDir(h.tmpDir)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-h.staleAfter)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "upload-") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(h.tmpDir, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Warn("failed to remove stale upload file", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Info("stale upload files swept", map[string]interface{}{
			"removed": removed,
			"dir":     h.tmpDir,
		})
	}
	return nil
}

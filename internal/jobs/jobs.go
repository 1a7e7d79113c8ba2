// Package jobs holds periodic maintenance work for the storage backend.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// StaleUploadCleaner is implemented by backends that can leave temporary
// upload files behind after a crash.
type StaleUploadCleaner interface {
	RemoveStaleUploads(ctx context.Context, maxAge time.Duration) (int, error)
}

type CleanUpCounts struct {
	TempFilesDeleted int
}

// CleanUpExpired removes temporary uploads older than maxAge.
func CleanUpExpired(ctx context.Context, cleaner StaleUploadCleaner, maxAge time.Duration) (CleanUpCounts, error) {
	n, err := cleaner.RemoveStaleUploads(ctx, maxAge)
	if err != nil {
		return CleanUpCounts{TempFilesDeleted: n}, fmt.Errorf("failure while removing stale uploads; %w", err)
	}

	return CleanUpCounts{TempFilesDeleted: n}, nil
}

// RunPeriodically runs CleanUpExpired once immediately and then every
// interval until ctx is cancelled.
func RunPeriodically(ctx context.Context, cleaner StaleUploadCleaner, interval, maxAge time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		counts, err := CleanUpExpired(ctx, cleaner, maxAge)
		if err != nil {
			logger.Error("stale upload cleanup failed", "error", err)
		} else if counts.TempFilesDeleted > 0 {
			logger.Info("removed stale uploads", "count", counts.TempFilesDeleted)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/shopdesk/shopdesk/internal/catalog"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeCatalogRefresh re-fetches the product catalog and re-warms the
	// Redis cache so that new billing sessions see fresh prices.
	TaskTypeCatalogRefresh = "catalog:refresh"
)

// NewCatalogRefreshTask constructs an Asynq task. The task carries no
// payload; the worker always refreshes the whole catalog.
func NewCatalogRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskTypeCatalogRefresh, nil)
}

// NewCatalogRefreshHandler binds the refresh task to a catalog loader.
func NewCatalogRefreshHandler(loader *catalog.Loader, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		snap, err := loader.Refresh(ctx)
		if err != nil {
			logger.Error("catalog refresh failed", slog.Any("error", err))
			return err
		}
		logger.Info("catalog refreshed", slog.Int("products", len(snap.Products())))
		return nil
	}
}

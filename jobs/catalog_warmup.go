package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/mercato-app/mercato/internal/products"
	"github.com/mercato-app/mercato/internal/shared"
)

// CatalogWarmupJob pre-populates the approved-products listing cache so the
// first storefront request after an invalidation hits warm pages.
type CatalogWarmupJob struct {
	Products *products.Service
	Logger   *slog.Logger
}

// NewCatalogWarmupJob wires dependencies for the warmup handler.
func NewCatalogWarmupJob(productsSvc *products.Service, logger *slog.Logger) *CatalogWarmupJob {
	return &CatalogWarmupJob{Products: productsSvc, Logger: logger}
}

// Handle processes catalog warmup tasks.
func (j *CatalogWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Products == nil {
		return errors.New("catalog warmup: handler not configured")
	}
	var payload CatalogWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Pages < 1 {
		payload.Pages = 1
	}

	for page := 1; page <= payload.Pages; page++ {
		filters := products.ListFilters{PageRequest: shared.PageRequest{
			Page:   page,
			Limit:  shared.DefaultLimit,
			Status: string(products.StatusApproved),
		}}
		result, err := j.Products.List(ctx, filters)
		if err != nil {
			j.logger().Warn("catalog warmup page", slog.Int("page", page), slog.Any("error", err))
			return err
		}
		j.logger().Info("catalog page warmed",
			slog.Int("page", page),
			slog.Int("rows", len(result.Rows)))
		// Past the last populated page there is nothing left to warm.
		if !result.Meta.HasNextPage {
			break
		}
	}
	return nil
}

func (j *CatalogWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

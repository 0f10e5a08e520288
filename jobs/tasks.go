package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogWarmup is the task type for pre-populating listing caches.
	TaskCatalogWarmup = "catalog:warmup"
)

// CatalogWarmupPayload bounds how many leading pages of the approved catalog
// get warmed.
type CatalogWarmupPayload struct {
	Pages int `json:"pages"`
}

// NewCatalogWarmupTask constructs an Asynq task.
func NewCatalogWarmupTask(payload CatalogWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogWarmup, data), nil
}

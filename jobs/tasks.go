package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRecycleBinCleanup purges soft deleted rows past the retention window.
	TaskRecycleBinCleanup = "recyclebin:cleanup"
)

// RecycleBinCleanupPayload carries scheduling metadata for the cleanup task.
type RecycleBinCleanupPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewRecycleBinCleanupTask constructs an Asynq task for the nightly cleanup.
func NewRecycleBinCleanupTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(RecycleBinCleanupPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecycleBinCleanup, body, asynq.Queue(QueueDefault)), nil
}

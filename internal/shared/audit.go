package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLog is a record of a state-changing operation, stored in audit_logs.
type AuditLog struct {
	ActorID  int64
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// AuditRecorder persists audit entries outside the core transactions;
// failures are logged by callers and never fail the operation itself.
type AuditRecorder struct {
	pool *pgxpool.Pool
}

// NewAuditRecorder returns a new AuditRecorder.
func NewAuditRecorder(pool *pgxpool.Pool) *AuditRecorder {
	return &AuditRecorder{pool: pool}
}

// Record persists the log entry.
func (r *AuditRecorder) Record(ctx context.Context, log AuditLog) error {
	if r == nil {
		return errors.New("audit recorder not initialised")
	}
	if log.Action == "" || log.Entity == "" {
		return errors.New("audit log requires action and entity")
	}
	metaJSON, err := json.Marshal(log.Meta)
	if err != nil {
		return err
	}
	at := log.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO audit_logs (actor_id, action, entity, entity_id, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		log.ActorID, log.Action, log.Entity, log.EntityID, metaJSON, at)
	return err
}

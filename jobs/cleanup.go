package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/abed1srour/POS-backend/internal/jobs"
)

// DefaultRetention is how long soft deleted rows stay recoverable.
const DefaultRetention = 7 * 24 * time.Hour

// CleanupReport summarises how many rows each table lost in a cleanup run.
type CleanupReport struct {
	Products  int64 `json:"products_deleted"`
	Customers int64 `json:"customers_deleted"`
	Orders    int64 `json:"orders_deleted"`
	Payments  int64 `json:"payments_deleted"`
}

// Cleaner permanently removes rows that sat in the recycle bin past retention.
type Cleaner struct {
	pool      *pgxpool.Pool
	logger    *slog.Logger
	metrics   *jobmetrics.Metrics
	retention time.Duration
}

// NewCleaner constructs a Cleaner. A zero retention falls back to DefaultRetention.
func NewCleaner(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics, retention time.Duration) *Cleaner {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Cleaner{pool: pool, logger: logger, metrics: metrics, retention: retention}
}

// Run purges expired soft deleted rows and reports per table counts.
// Payments go first so order rows are never orphan-referenced, and products
// still referenced by order or purchase order lines are kept regardless of age.
func (c *Cleaner) Run(ctx context.Context) (CleanupReport, error) {
	tracker := c.metrics.Track("recyclebin_cleanup")
	report, err := c.purge(ctx)
	if err := tracker.End(err); err != nil {
		return report, err
	}
	c.logger.Info("recycle bin cleanup finished",
		slog.Int64("products", report.Products),
		slog.Int64("customers", report.Customers),
		slog.Int64("orders", report.Orders),
		slog.Int64("payments", report.Payments),
	)
	return report, nil
}

func (c *Cleaner) purge(ctx context.Context) (CleanupReport, error) {
	var report CleanupReport
	cutoff := time.Now().Add(-c.retention)

	tag, err := c.pool.Exec(ctx,
		`DELETE FROM payments WHERE deleted_at IS NOT NULL AND deleted_at < $1`, cutoff)
	if err != nil {
		return report, fmt.Errorf("purge payments: %w", err)
	}
	report.Payments = tag.RowsAffected()
	c.metrics.AddPurged("payments", report.Payments)

	tag, err = c.pool.Exec(ctx,
		`DELETE FROM orders o
		  WHERE o.deleted_at IS NOT NULL AND o.deleted_at < $1
		    AND NOT EXISTS (SELECT 1 FROM payments p WHERE p.order_id = o.id)`, cutoff)
	if err != nil {
		return report, fmt.Errorf("purge orders: %w", err)
	}
	report.Orders = tag.RowsAffected()
	c.metrics.AddPurged("orders", report.Orders)

	tag, err = c.pool.Exec(ctx,
		`DELETE FROM customers c
		  WHERE c.deleted_at IS NOT NULL AND c.deleted_at < $1
		    AND NOT EXISTS (SELECT 1 FROM orders o WHERE o.customer_id = c.id)`, cutoff)
	if err != nil {
		return report, fmt.Errorf("purge customers: %w", err)
	}
	report.Customers = tag.RowsAffected()
	c.metrics.AddPurged("customers", report.Customers)

	tag, err = c.pool.Exec(ctx,
		`DELETE FROM products p
		  WHERE p.deleted_at IS NOT NULL AND p.deleted_at < $1
		    AND NOT EXISTS (SELECT 1 FROM order_items oi WHERE oi.product_id = p.id)
		    AND NOT EXISTS (SELECT 1 FROM purchase_order_items poi WHERE poi.product_id = p.id)`, cutoff)
	if err != nil {
		return report, fmt.Errorf("purge products: %w", err)
	}
	report.Products = tag.RowsAffected()
	c.metrics.AddPurged("products", report.Products)

	return report, nil
}

// HandleTask adapts the cleaner to an Asynq handler.
func (c *Cleaner) HandleTask(ctx context.Context, t *asynq.Task) error {
	var payload RecycleBinCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	_, err := c.Run(ctx)
	return err
}

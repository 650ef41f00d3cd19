package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
)

const (
	defaultPendingOrderTTL   = 24 * time.Hour
	defaultPendingOrderBatch = 200
)

// PendingOrderJobParams configure the stale order sweeper.
type PendingOrderJobParams struct {
	Logger    *logger.Logger
	Orders    pendingOrderExpirer
	TTL       time.Duration
	BatchSize int
}

type pendingOrderExpirer interface {
	ExpirePending(ctx context.Context, cutoff time.Time, batchSize int) (int, error)
}

// NewPendingOrderJob builds the cron job that cancels orders whose payment
// proof never arrived within the TTL.
func NewPendingOrderJob(params PendingOrderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultPendingOrderTTL
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultPendingOrderBatch
	}
	return &pendingOrderJob{
		logg:      params.Logger,
		orders:    params.Orders,
		ttl:       ttl,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type pendingOrderJob struct {
	logg      *logger.Logger
	orders    pendingOrderExpirer
	ttl       time.Duration
	batchSize int
	now       func() time.Time
}

func (j *pendingOrderJob) Name() string { return "pending-order-ttl" }

func (j *pendingOrderJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	expired, err := j.orders.ExpirePending(ctx, cutoff, j.batchSize)
	if err != nil {
		return fmt.Errorf("expire pending orders: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":  cutoff,
		"expired": expired,
	})
	j.logg.Info(logCtx, "pending order sweep complete")
	return nil
}

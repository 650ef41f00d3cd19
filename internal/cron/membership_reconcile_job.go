package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
)

const defaultMembershipBatch = 500

// MembershipReconcileJobParams configure the lapsed membership sweep.
type MembershipReconcileJobParams struct {
	Logger      *logger.Logger
	Memberships membershipReconciler
	BatchSize   int
}

type membershipReconciler interface {
	ReconcileExpired(ctx context.Context, now time.Time, limit int) (int, error)
}

// NewMembershipReconcileJob builds the cron job that clears lapsed
// subscription tiers back to NONE.
func NewMembershipReconcileJob(params MembershipReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Memberships == nil {
		return nil, fmt.Errorf("memberships service required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultMembershipBatch
	}
	return &membershipReconcileJob{
		logg:        params.Logger,
		memberships: params.Memberships,
		batchSize:   batchSize,
		now:         time.Now,
	}, nil
}

type membershipReconcileJob struct {
	logg        *logger.Logger
	memberships membershipReconciler
	batchSize   int
	now         func() time.Time
}

func (j *membershipReconcileJob) Name() string { return "membership-reconcile" }

func (j *membershipReconcileJob) Run(ctx context.Context) error {
	cleared, err := j.memberships.ReconcileExpired(ctx, j.now().UTC(), j.batchSize)
	if err != nil {
		return fmt.Errorf("reconcile memberships: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"cleared": cleared})
	j.logg.Info(logCtx, "membership reconcile sweep complete")
	return nil
}

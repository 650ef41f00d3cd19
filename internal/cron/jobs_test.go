package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adiprasetyo/lokalmart-backend/internal/archive"
	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
)

type fakeOrderExpirer struct {
	lastCutoff time.Time
	lastBatch  int
	expired    int
	err        error
}

func (f *fakeOrderExpirer) ExpirePending(ctx context.Context, cutoff time.Time, batchSize int) (int, error) {
	f.lastCutoff = cutoff
	f.lastBatch = batchSize
	if f.err != nil {
		return 0, f.err
	}
	return f.expired, nil
}

func TestPendingOrderJobUsesConfiguredTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expirer := &fakeOrderExpirer{expired: 3}
	jobIface, err := NewPendingOrderJob(PendingOrderJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Orders:    expirer,
		TTL:       24 * time.Hour,
		BatchSize: 50,
	})
	if err != nil {
		t.Fatalf("NewPendingOrderJob: %v", err)
	}
	job := jobIface.(*pendingOrderJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := now.Add(-24 * time.Hour); !expirer.lastCutoff.Equal(want) {
		t.Fatalf("cutoff = %s, want %s", expirer.lastCutoff, want)
	}
	if expirer.lastBatch != 50 {
		t.Fatalf("batch = %d, want 50", expirer.lastBatch)
	}
}

func TestPendingOrderJobPropagatesError(t *testing.T) {
	jobIface, err := NewPendingOrderJob(PendingOrderJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		Orders: &fakeOrderExpirer{err: errors.New("boom")},
	})
	if err != nil {
		t.Fatalf("NewPendingOrderJob: %v", err)
	}
	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakeArchiveCleaner struct {
	lastNow time.Time
	result  *archive.CleanupResult
	err     error
}

func (f *fakeArchiveCleaner) Cleanup(ctx context.Context, now time.Time) (*archive.CleanupResult, error) {
	f.lastNow = now
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestCleanupJobReportsCounts(t *testing.T) {
	now := time.Date(2026, 3, 8, 3, 0, 0, 0, time.UTC)
	cleaner := &fakeArchiveCleaner{result: &archive.CleanupResult{ActivityLogs: 12, Orders: 4}}
	jobIface, err := NewCleanupJob(CleanupJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Archive: cleaner,
	})
	if err != nil {
		t.Fatalf("NewCleanupJob: %v", err)
	}
	job := jobIface.(*cleanupJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !cleaner.lastNow.Equal(now) {
		t.Fatalf("now = %s, want %s", cleaner.lastNow, now)
	}

	cleaner.err = errors.New("boom")
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakeMembershipReconciler struct {
	lastLimit int
	err       error
}

func (f *fakeMembershipReconciler) ReconcileExpired(ctx context.Context, now time.Time, limit int) (int, error) {
	f.lastLimit = limit
	if f.err != nil {
		return 0, f.err
	}
	return 2, nil
}

func TestMembershipReconcileJobDefaultsBatch(t *testing.T) {
	reconciler := &fakeMembershipReconciler{}
	jobIface, err := NewMembershipReconcileJob(MembershipReconcileJobParams{
		Logger:      logger.New(logger.Options{ServiceName: "test"}),
		Memberships: reconciler,
	})
	if err != nil {
		t.Fatalf("NewMembershipReconcileJob: %v", err)
	}
	if err := jobIface.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if reconciler.lastLimit != defaultMembershipBatch {
		t.Fatalf("limit = %d, want %d", reconciler.lastLimit, defaultMembershipBatch)
	}

	reconciler.err = errors.New("boom")
	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

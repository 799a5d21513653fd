package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maheshrc27/coolify-admin/internal/metrics"
	"github.com/maheshrc27/coolify-admin/internal/models"
)

// ErrRunInProgress is returned when another reconciler run, in this process
// or another one sharing the database, has not finished yet.
var ErrRunInProgress = errors.New("subscription check already in progress")

// lockKey identifies the reconciler's Postgres advisory lock.
const lockKey int64 = 0x636f6f6c6966

const defaultConcurrency = 10

type Deployer interface {
	StopProject(ctx context.Context, projectUUID string) error
	StartProject(ctx context.Context, projectUUID string) error
}

type SubscriptionStore interface {
	ListExpired(ctx context.Context, now time.Time) ([]*models.ClientProject, error)
	ListRenewed(ctx context.Context, now time.Time) ([]*models.ClientProject, error)
	TransitionStatus(ctx context.Context, id int64, from, to string) (bool, error)
}

type Locker interface {
	TryLock(ctx context.Context, key int64) (release func(), acquired bool, err error)
}

type RunSummary struct {
	PausedCount  int       `json:"pausedCount"`
	ResumedCount int       `json:"resumedCount"`
	FailedCount  int       `json:"failedCount"`
	Timestamp    time.Time `json:"timestamp"`
}

// SubscriptionJob pauses the Coolify projects of expired subscriptions and
// resumes the ones whose end date was moved into the future.
type SubscriptionJob struct {
	store       SubscriptionStore
	deployer    Deployer
	locker      Locker
	concurrency int
	now         func() time.Time
	running     atomic.Bool
}

// NewSubscriptionJob builds the job. locker may be nil, in which case runs are
// only excluded within this process.
func NewSubscriptionJob(store SubscriptionStore, deployer Deployer, locker Locker, concurrency int) *SubscriptionJob {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &SubscriptionJob{
		store:       store,
		deployer:    deployer,
		locker:      locker,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// CheckSubscriptions is the cron entry point.
func (j *SubscriptionJob) CheckSubscriptions() {
	summary, err := j.Run(context.Background())
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			slog.Info("skipping subscription check, previous run still active")
			return
		}
		slog.Error("subscription check failed", "error", err)
		return
	}

	if summary.PausedCount+summary.ResumedCount+summary.FailedCount > 0 {
		slog.Info("subscription check finished",
			"paused", summary.PausedCount,
			"resumed", summary.ResumedCount,
			"failed", summary.FailedCount,
		)
	}
}

// Run executes one pause pass followed by one resume pass. Each pass reads all
// of its candidates before touching Coolify; a failing item is counted and
// left in its current status, it never aborts the run.
func (j *SubscriptionJob) Run(ctx context.Context) (*RunSummary, error) {
	if !j.running.CompareAndSwap(false, true) {
		metrics.RecordReconcilerRun("skipped", 0, 0, 0, 0)
		return nil, ErrRunInProgress
	}
	defer j.running.Store(false)

	if j.locker != nil {
		release, acquired, err := j.locker.TryLock(ctx, lockKey)
		if err != nil {
			metrics.RecordReconcilerRun("error", 0, 0, 0, 0)
			return nil, fmt.Errorf("acquiring reconciler lock: %w", err)
		}
		if !acquired {
			metrics.RecordReconcilerRun("skipped", 0, 0, 0, 0)
			return nil, ErrRunInProgress
		}
		defer release()
	}

	start := time.Now()
	now := j.now().UTC()

	paused, pauseFailed, err := j.pass(ctx, now, "pause", j.store.ListExpired,
		models.ClientProjectStatusActive, models.ClientProjectStatusPaused, j.deployer.StopProject)
	if err != nil {
		metrics.RecordReconcilerRun("error", paused, 0, pauseFailed, time.Since(start))
		return nil, fmt.Errorf("listing expired subscriptions: %w", err)
	}

	resumed, resumeFailed, err := j.pass(ctx, now, "resume", j.store.ListRenewed,
		models.ClientProjectStatusPaused, models.ClientProjectStatusActive, j.deployer.StartProject)
	if err != nil {
		metrics.RecordReconcilerRun("error", paused, resumed, pauseFailed+resumeFailed, time.Since(start))
		return nil, fmt.Errorf("listing renewed subscriptions: %w", err)
	}

	summary := &RunSummary{
		PausedCount:  paused,
		ResumedCount: resumed,
		FailedCount:  pauseFailed + resumeFailed,
		Timestamp:    now,
	}
	metrics.RecordReconcilerRun("ok", summary.PausedCount, summary.ResumedCount, summary.FailedCount, time.Since(start))
	return summary, nil
}

type listFunc func(ctx context.Context, now time.Time) ([]*models.ClientProject, error)

func (j *SubscriptionJob) pass(
	ctx context.Context,
	now time.Time,
	action string,
	list listFunc,
	from, to string,
	apply func(ctx context.Context, projectUUID string) error) (int, int, error) {
	subscriptions, err := list(ctx, now)
	if err != nil {
		slog.Info(err.Error())
		return 0, 0, err
	}

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
		failed    atomic.Int64
	)
	semaphore := make(chan struct{}, j.concurrency)

	for _, cp := range subscriptions {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(cp *models.ClientProject) {
			defer wg.Done()
			defer func() { <-semaphore }()

			log := slog.With(
				"action", action,
				"client_project", cp.ID,
				"client", cp.ClientName,
				"project", cp.ProjectName,
				"uuid", cp.CoolifyUUID,
			)

			if err := apply(ctx, cp.CoolifyUUID); err != nil {
				log.Warn("coolify action failed", "error", err)
				failed.Add(1)
				return
			}

			changed, err := j.store.TransitionStatus(ctx, cp.ID, from, to)
			if err != nil {
				log.Warn("status update failed", "error", err)
				failed.Add(1)
				return
			}
			if !changed {
				log.Warn("status changed concurrently, leaving it as is", "expected", from)
				failed.Add(1)
				return
			}

			log.Info("subscription updated", "status", to)
			succeeded.Add(1)
		}(cp)
	}

	wg.Wait()
	return int(succeeded.Load()), int(failed.Load()), nil
}

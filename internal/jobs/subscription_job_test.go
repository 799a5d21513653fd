package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maheshrc27/coolify-admin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type memoryStore struct {
	mu       sync.Mutex
	rows     map[int64]*models.ClientProject
	events   *eventLog
	listErr  error
	writeErr error
	// beforeWrite runs just before a status write, outside the lock.
	beforeWrite func(id int64)
}

func newMemoryStore(events *eventLog, rows ...*models.ClientProject) *memoryStore {
	s := &memoryStore{rows: map[int64]*models.ClientProject{}, events: events}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *memoryStore) list(match func(*models.ClientProject) bool) []*models.ClientProject {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []*models.ClientProject{}
	for _, r := range s.rows {
		if match(r) {
			cp := *r
			list = append(list, &cp)
		}
	}
	return list
}

func (s *memoryStore) ListExpired(_ context.Context, now time.Time) ([]*models.ClientProject, error) {
	s.events.add("list-expired")
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.list(func(r *models.ClientProject) bool {
		return r.Status == models.ClientProjectStatusActive && r.EndDate.Before(now)
	}), nil
}

func (s *memoryStore) ListRenewed(_ context.Context, now time.Time) ([]*models.ClientProject, error) {
	s.events.add("list-renewed")
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.list(func(r *models.ClientProject) bool {
		return r.Status == models.ClientProjectStatusPaused && r.EndDate.After(now)
	}), nil
}

func (s *memoryStore) TransitionStatus(_ context.Context, id int64, from, to string) (bool, error) {
	if s.beforeWrite != nil {
		s.beforeWrite(id)
	}
	if s.writeErr != nil {
		return false, s.writeErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	return true, nil
}

func (s *memoryStore) status(id int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[id].Status
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type fakeDeployer struct {
	events   *eventLog
	fail     map[string]bool
	block    chan struct{}
	entered  chan struct{}
	calls    atomic.Int64
	inFlight atomic.Int64
	maxSeen  atomic.Int64
	delay    time.Duration
}

func (d *fakeDeployer) do(action, uuid string) error {
	d.calls.Add(1)
	d.events.add(action + ":" + uuid)

	n := d.inFlight.Add(1)
	defer d.inFlight.Add(-1)
	for {
		seen := d.maxSeen.Load()
		if n <= seen || d.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	if d.entered != nil {
		select {
		case d.entered <- struct{}{}:
		default:
		}
	}
	if d.block != nil {
		<-d.block
	}
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	if d.fail[uuid] {
		return fmt.Errorf("%s %s: coolify returned 500", action, uuid)
	}
	return nil
}

func (d *fakeDeployer) StopProject(_ context.Context, uuid string) error  { return d.do("stop", uuid) }
func (d *fakeDeployer) StartProject(_ context.Context, uuid string) error { return d.do("start", uuid) }

type fakeLocker struct {
	acquired bool
	err      error
	released atomic.Int64
}

func (l *fakeLocker) TryLock(context.Context, int64) (func(), bool, error) {
	if l.err != nil || !l.acquired {
		return nil, false, l.err
	}
	return func() { l.released.Add(1) }, true, nil
}

func subscription(id int64, status string, endDate time.Time) *models.ClientProject {
	return &models.ClientProject{
		ID:          id,
		Status:      status,
		EndDate:     endDate,
		CoolifyUUID: fmt.Sprintf("project-%d", id),
	}
}

func newJob(store SubscriptionStore, deployer Deployer, locker Locker, concurrency int) *SubscriptionJob {
	j := NewSubscriptionJob(store, deployer, locker, concurrency)
	j.now = func() time.Time { return fixedNow }
	return j
}

func TestRunPausesExpiredAndResumesRenewed(t *testing.T) {
	events := &eventLog{}
	store := newMemoryStore(events,
		subscription(1, models.ClientProjectStatusActive, fixedNow.Add(-time.Hour)),
		subscription(2, models.ClientProjectStatusActive, fixedNow.Add(time.Hour)),
		subscription(3, models.ClientProjectStatusPaused, fixedNow.Add(24*time.Hour)),
		subscription(4, models.ClientProjectStatusPaused, fixedNow.Add(-24*time.Hour)),
	)
	deployer := &fakeDeployer{events: events}

	summary, err := newJob(store, deployer, nil, 4).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.PausedCount)
	assert.Equal(t, 1, summary.ResumedCount)
	assert.Equal(t, 0, summary.FailedCount)
	assert.Equal(t, fixedNow, summary.Timestamp)
	assert.Equal(t, time.UTC, summary.Timestamp.Location())

	assert.Equal(t, models.ClientProjectStatusPaused, store.status(1))
	assert.Equal(t, models.ClientProjectStatusActive, store.status(2))
	assert.Equal(t, models.ClientProjectStatusActive, store.status(3))
	assert.Equal(t, models.ClientProjectStatusPaused, store.status(4))
	assert.ElementsMatch(t, []string{"list-expired", "stop:project-1", "list-renewed", "start:project-3"}, events.all())
}

func TestRunIsIdempotent(t *testing.T) {
	events := &eventLog{}
	store := newMemoryStore(events,
		subscription(1, models.ClientProjectStatusActive, fixedNow.Add(-time.Hour)),
		subscription(2, models.ClientProjectStatusPaused, fixedNow.Add(time.Hour)),
	)
	deployer := &fakeDeployer{events: events}
	j := newJob(store, deployer, nil, 2)

	_, err := j.Run(context.Background())
	require.NoError(t, err)
	calls := deployer.calls.Load()

	summary, err := j.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunSummary{Timestamp: fixedNow}, *summary)
	assert.Equal(t, calls, deployer.calls.Load())
}

func TestRunIsolatesFailures(t *testing.T) {
	events := &eventLog{}
	store := newMemoryStore(events,
		subscription(1, models.ClientProjectStatusActive, fixedNow.Add(-time.Hour)),
		subscription(2, models.ClientProjectStatusActive, fixedNow.Add(-time.Hour)),
		subscription(3, models.ClientProjectStatusActive, fixedNow.Add(-time.Hour)),
		subscription(4, models.ClientProjectStatusPaused, fixedNow.Add(time.Hour)),
	)
	deployer := &fakeDeployer{events: events, fail: map[string]bool{"project-2": true, "project-4": true}}

	summary, err := newJob(store, deployer, nil, 1).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.PausedCount)
	assert.Equal(t, 0, summary.ResumedCount)
	assert.Equal(t, 2, summary.FailedCount)
	assert.Equal(t, models.ClientProjectStatusActive, store.status(2))
	assert.Equal(t, models.ClientProjectStatusPaused, store.status(4))
	assert.Equal(t, int64(4), deployer.calls.Load())
}

func TestRunReadsWholeSnapshotBeforeActing(t *testing.T) {
	events := &eventLog{}
	store := newMemoryStore(events,
		subscription(1, models.ClientProjectStatusActive, fixedNow.Add(-time.Hour)),
		subscription(2, models.ClientProjectStatusActive, fixedNow.Add(-time.Hour)),
		subscription(3, models.ClientProjectStatusPaused, fixedNow.Add(time.Hour)),
	)
	deployer := &fakeDeployer{events: events}

	_, err := newJob(store, deployer, nil, 2).Run(context.Background())
	require.NoError(t, err)

	got := events.all()
	require.Len(t, got, 5)
	assert.Equal(t, "list-expired", got[0])
	assert.ElementsMatch(t, []string{"stop:project-1", "stop:project-2"}, got[1:3])
	assert.Equal(t, "list-renewed", got[3])
	assert.Equal(t, "start:project-3", got[4])
}

func TestRunFailsWhenSnapshotCannotBeRead(t *testing.T) {
	events := &eventLog{}
	store := newMemoryStore(events, subscription(1, models.ClientProjectStatusActive, fixedNow.Add(-time.Hour)))
	store.listErr = errors.New("connection refused")
	deployer := &fakeDeployer{events: events}

	summary, err := newJob(store, deployer, nil, 1).Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, store.listErr)
	assert.Zero(t, deployer.calls.Load())
}

func TestRunCountsFailedStatusWrite(t *testing.T) {
	events := &eventLog{}
	store := newMemoryStore(events, subscription(1, models.ClientProjectStatusActive, fixedNow.Add(-time.Hour)))
	store.writeErr = errors.New("deadlock detected")

	summary, err := newJob(store, &fakeDeployer{events: events}, nil, 1).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.PausedCount)
	assert.Equal(t, 1, summary.FailedCount)
	assert.Equal(t, models.ClientProjectStatusActive, store.status(1))
}

func TestRunDoesNotOverwriteConcurrentStatusChange(t *testing.T) {
	events := &eventLog{}
	store := newMemoryStore(events, subscription(1, models.ClientProjectStatusActive, fixedNow.Add(-time.Hour)))
	store.beforeWrite = func(id int64) {
		// An operator pauses the project by hand while the stop is in flight.
		store.mu.Lock()
		store.rows[id].Status = models.ClientProjectStatusPaused
		store.mu.Unlock()
	}

	summary, err := newJob(store, &fakeDeployer{events: events}, nil, 1).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.PausedCount)
	assert.Equal(t, 1, summary.FailedCount)
}

func TestRunRespectsConcurrencyLimit(t *testing.T) {
	events := &eventLog{}
	var rows []*models.ClientProject
	for i := int64(1); i <= 12; i++ {
		rows = append(rows, subscription(i, models.ClientProjectStatusActive, fixedNow.Add(-time.Hour)))
	}
	store := newMemoryStore(events, rows...)
	deployer := &fakeDeployer{events: events, delay: 5 * time.Millisecond}

	summary, err := newJob(store, deployer, nil, 3).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, summary.PausedCount)
	assert.LessOrEqual(t, deployer.maxSeen.Load(), int64(3))
}

func TestOverlappingRunIsRejected(t *testing.T) {
	events := &eventLog{}
	store := newMemoryStore(events, subscription(1, models.ClientProjectStatusActive, fixedNow.Add(-time.Hour)))
	deployer := &fakeDeployer{events: events, block: make(chan struct{}), entered: make(chan struct{}, 1)}
	j := newJob(store, deployer, nil, 1)

	done := make(chan error, 1)
	go func() {
		_, err := j.Run(context.Background())
		done <- err
	}()

	select {
	case <-deployer.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first run never reached coolify")
	}

	_, err := j.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(deployer.block)
	require.NoError(t, <-done)
	assert.Equal(t, int64(1), deployer.calls.Load())
}

func TestRunSkipsWhenLockHeldElsewhere(t *testing.T) {
	events := &eventLog{}
	store := newMemoryStore(events, subscription(1, models.ClientProjectStatusActive, fixedNow.Add(-time.Hour)))
	deployer := &fakeDeployer{events: events}

	_, err := newJob(store, deployer, &fakeLocker{acquired: false}, 1).Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Empty(t, events.all())
}

func TestRunReleasesLock(t *testing.T) {
	events := &eventLog{}
	locker := &fakeLocker{acquired: true}

	_, err := newJob(newMemoryStore(events), &fakeDeployer{events: events}, locker, 1).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), locker.released.Load())
}

func TestRunLockError(t *testing.T) {
	events := &eventLog{}
	locker := &fakeLocker{err: errors.New("too many connections")}

	_, err := newJob(newMemoryStore(events), &fakeDeployer{events: events}, locker, 1).Run(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRunInProgress)
}

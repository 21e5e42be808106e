package engine

import (
	"context"
	"testing"
	"time"

	ptestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	empireMocks "github.com/donaldgifford/empire-watcher/internal/empire/mocks"
	"github.com/donaldgifford/empire-watcher/internal/metrics"
	notifyMocks "github.com/donaldgifford/empire-watcher/internal/notify/mocks"
	"github.com/donaldgifford/empire-watcher/internal/store"
	domain "github.com/donaldgifford/empire-watcher/pkg/types"
)

func newSchedulerTestEngine(t *testing.T) *Engine {
	t.Helper()
	return newTestEngine(nil, store.NewMemoryStore(),
		empireMocks.NewMockCatalogClient(t), notifyMocks.NewMockNotifier(t))
}

func TestNewScheduler_RegistersCronEntry(t *testing.T) {
	t.Parallel()

	sched, err := NewScheduler(context.Background(), newSchedulerTestEngine(t), 10*time.Second, quietLogger())
	require.NoError(t, err)

	assert.Len(t, sched.Entries(), 1)
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	sched, err := NewScheduler(context.Background(), newSchedulerTestEngine(t), time.Hour, quietLogger())
	require.NoError(t, err)

	sched.Start()
	ctx := sched.Stop()
	<-ctx.Done()
}

func TestScheduler_SyncNextRunTimestamp(t *testing.T) {
	t.Parallel()

	sched, err := NewScheduler(context.Background(), newSchedulerTestEngine(t), time.Hour, quietLogger())
	require.NoError(t, err)

	sched.Start()
	defer sched.Stop()

	assert.Eventually(t, func() bool {
		sched.SyncNextRunTimestamp()
		return ptestutil.ToFloat64(metrics.SchedulerNextSnapshotTimestamp) > float64(time.Now().Unix())
	}, time.Second, 10*time.Millisecond)
}

func TestScheduler_RunSnapshotWithNoRules(t *testing.T) {
	t.Parallel()

	eng := newSchedulerTestEngine(t)
	sched, err := NewScheduler(context.Background(), eng, time.Hour, quietLogger())
	require.NoError(t, err)

	sched.runSnapshot()
	assert.True(t, eng.Ready())
}

func TestScheduler_RunSnapshotHonoursContext(t *testing.T) {
	t.Parallel()

	eng := newTestEngine([]domain.WatchRule{redlineRule()}, store.NewMemoryStore(),
		empireMocks.NewMockCatalogClient(t), notifyMocks.NewMockNotifier(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sched, err := NewScheduler(ctx, eng, time.Hour, quietLogger())
	require.NoError(t, err)

	// A cancelled scheduler never reaches the catalog.
	sched.runSnapshot()
	assert.False(t, eng.Ready())
}

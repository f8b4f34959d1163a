package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testEpoch = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*store, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(testEpoch)
	st, err := openStore(context.Background(), filepath.Join(t.TempDir(), "test.db"), mock, zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st, mock
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	logger := zap.NewNop().Sugar()

	for i := 0; i < 2; i++ {
		st, err := openStore(context.Background(), path, clock.New(), logger)
		require.NoError(t, err)

		var version int
		require.NoError(t, st.db.QueryRow("PRAGMA user_version").Scan(&version))
		assert.Equal(t, len(migrations), version)
		require.NoError(t, st.Close())
	}
}

func TestStoreStats(t *testing.T) {
	st, mock := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.RecordVisit(ctx, "aaaa", "curl", "/"))
	require.NoError(t, st.RecordVisit(ctx, "aaaa", "curl", "/projects"))
	require.NoError(t, st.RecordVisit(ctx, "bbbb", "firefox", "/"))
	require.NoError(t, st.RecordClick(ctx, 3, "code", "aaaa"))

	mock.Add(8 * 24 * time.Hour)
	require.NoError(t, st.RecordVisit(ctx, "cccc", "safari", "/"))
	require.NoError(t, st.RecordClick(ctx, 1, "demo", "cccc"))
	require.NoError(t, st.RecordClick(ctx, 1, "code", "cccc"))

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalVisitors)
	assert.EqualValues(t, 3, stats.UniqueVisitors)
	assert.EqualValues(t, 1, stats.VisitorsToday)
	assert.EqualValues(t, 1, stats.VisitorsThisWeek)
	assert.EqualValues(t, 3, stats.TotalClicks)

	require.Len(t, stats.TopProjects, 2)
	assert.Equal(t, 1, stats.TopProjects[0].ProjectID)
	assert.EqualValues(t, 1, stats.TopProjects[0].DemoClicks)
	assert.EqualValues(t, 1, stats.TopProjects[0].CodeClicks)
	assert.EqualValues(t, 2, stats.TopProjects[0].Clicks())
	assert.Equal(t, 3, stats.TopProjects[1].ProjectID)

	require.Len(t, stats.RecentVisitors, 4)
	assert.Equal(t, "cccc", stats.RecentVisitors[0].HashedIP)
	assert.True(t, testEpoch.Add(8*24*time.Hour).Equal(stats.RecentVisitors[0].Timestamp))
}

func TestStoreRejectsUnknownLink(t *testing.T) {
	st, _ := newTestStore(t)
	assert.Error(t, st.RecordClick(context.Background(), 1, "slides", "aaaa"))
}

func TestStoreCleanup(t *testing.T) {
	st, mock := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.RecordVisit(ctx, "aaaa", "curl", "/"))
	require.NoError(t, st.RecordClick(ctx, 1, "demo", "aaaa"))
	mock.Add(30 * 24 * time.Hour)
	require.NoError(t, st.RecordVisit(ctx, "bbbb", "curl", "/"))

	removed, err := st.Cleanup(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalVisitors)
	assert.EqualValues(t, 0, stats.TotalClicks)
}

func TestStoreCleanupRejectsNonPositiveRetention(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.RecordVisit(ctx, "aaaa", "curl", "/"))

	for _, retention := range []time.Duration{0, -time.Hour} {
		removed, err := st.Cleanup(ctx, retention)
		assert.Error(t, err)
		assert.Zero(t, removed)
	}

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalVisitors)
}

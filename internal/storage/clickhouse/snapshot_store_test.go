package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfolio-backtest-lab/internal/domain"
	"portfolio-backtest-lab/internal/storage"
)

func sampleSnapshots() []domain.Snapshot {
	return []domain.Snapshot{
		{Day: domain.NewDay(2010, time.September, 28), AccountValue: 400, NAV: 496, RateOfReturn: -0.8},
		{Day: domain.NewDay(2010, time.September, 29), AccountValue: 0, NAV: 932, RateOfReturn: 86.4},
		{Day: domain.NewDay(2010, time.September, 30), AccountValue: -900, NAV: 928, RateOfReturn: 85.6},
	}
}

func TestSnapshotStore_InsertAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, "run-1", sampleSnapshots()))

	got, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.Equal(t, domain.NewDay(2010, time.September, 28), got[0].Day)
	require.Equal(t, 496.0, got[0].NAV)
	require.Equal(t, -900.0, got[2].AccountValue)
	require.InDelta(t, 85.6, got[2].RateOfReturn, 1e-9)
}

func TestSnapshotStore_ReturnsCalendarOrder(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	ctx := context.Background()

	snaps := sampleSnapshots()
	snaps[0], snaps[2] = snaps[2], snaps[0]
	require.NoError(t, store.InsertBulk(ctx, "run-1", snaps))

	got, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	for i := 1; i < len(got); i++ {
		require.True(t, got[i-1].Day.Before(got[i].Day), "snapshots out of order at %d", i)
	}
}

func TestSnapshotStore_DuplicateRun(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, "run-1", sampleSnapshots()))

	err := store.InsertBulk(ctx, "run-1", sampleSnapshots())
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestSnapshotStore_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)

	snaps := sampleSnapshots()
	snaps[1].Day = snaps[0].Day
	err := store.InsertBulk(context.Background(), "run-1", snaps)
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestSnapshotStore_NotFound(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(conn)

	_, err := store.GetByRunID(context.Background(), "nonexistent")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

package memory

import (
	"context"
	"sort"
	"sync"

	"portfolio-backtest-lab/internal/domain"
	"portfolio-backtest-lab/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[string][]domain.Snapshot // run_id -> snapshots in calendar order
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		data: make(map[string][]domain.Snapshot),
	}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// InsertBulk persists a run's valuation series. Fails the entire batch on
// any duplicate (run_id, date).
func (s *SnapshotStore) InsertBulk(_ context.Context, runID string, snapshots []domain.Snapshot) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[domain.Day]struct{})
	for _, snap := range s.data[runID] {
		existing[snap.Day] = struct{}{}
	}
	for _, snap := range snapshots {
		if snap.Day.IsZero() {
			return storage.ErrInvalidInput
		}
		if _, exists := existing[snap.Day]; exists {
			return storage.ErrDuplicateKey
		}
		existing[snap.Day] = struct{}{}
	}

	merged := append(s.data[runID], snapshots...)
	sortSnapshots(merged)
	s.data[runID] = merged
	return nil
}

// GetByRunID retrieves the valuation series of a run in calendar order.
func (s *SnapshotStore) GetByRunID(_ context.Context, runID string) ([]domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	result := make([]domain.Snapshot, len(run))
	copy(result, run)
	return result, nil
}

func sortSnapshots(snapshots []domain.Snapshot) {
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Day.Before(snapshots[j].Day)
	})
}

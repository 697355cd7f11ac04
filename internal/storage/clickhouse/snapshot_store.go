package clickhouse

import (
	"context"
	"fmt"
	"time"

	"portfolio-backtest-lab/internal/domain"
	"portfolio-backtest-lab/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using ClickHouse.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// InsertBulk persists a run's valuation series. MergeTree does not enforce
// uniqueness at insert time, so duplicates are checked explicitly before the
// batch is sent.
func (s *SnapshotStore) InsertBulk(ctx context.Context, runID string, snapshots []domain.Snapshot) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(snapshots) == 0 {
		return nil
	}

	// Intra-batch duplicates
	seen := make(map[domain.Day]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if snap.Day.IsZero() {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[snap.Day]; exists {
			return storage.ErrDuplicateKey
		}
		seen[snap.Day] = struct{}{}
	}

	// Duplicates against existing rows
	exists, err := s.runExists(ctx, runID)
	if err != nil {
		return fmt.Errorf("check run exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO snapshots (
			run_id, ds, account_value, nav, rate_of_return
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		err = batch.Append(
			runID, snap.Day.Time(), snap.AccountValue, snap.NAV, snap.RateOfReturn,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRunID retrieves the valuation series of a run in calendar order.
func (s *SnapshotStore) GetByRunID(ctx context.Context, runID string) ([]domain.Snapshot, error) {
	query := `
		SELECT ds, account_value, nav, rate_of_return
		FROM snapshots
		WHERE run_id = ?
		ORDER BY ds ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots by run id: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.Snapshot
	for rows.Next() {
		var (
			ds   time.Time
			snap domain.Snapshot
		)
		if err := rows.Scan(&ds, &snap.AccountValue, &snap.NAV, &snap.RateOfReturn); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.Day = domain.NewDay(ds.Year(), ds.Month(), ds.Day())
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	if len(snapshots) == 0 {
		return nil, storage.ErrNotFound
	}
	return snapshots, nil
}

// runExists checks whether any snapshot rows exist for the run.
func (s *SnapshotStore) runExists(ctx context.Context, runID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count(*) FROM snapshots WHERE run_id = ?`, runID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

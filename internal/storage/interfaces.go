// Package storage defines the persistence interfaces for run results.
package storage

import (
	"context"

	"portfolio-backtest-lab/internal/domain"
)

// TradeStore provides access to the persisted trade ledger of a run.
type TradeStore interface {
	// InsertBulk persists a run's trade ledger keyed by trade id. Returns
	// ErrDuplicateKey if any (run_id, trade_id) pair already exists; the
	// whole batch fails in that case.
	InsertBulk(ctx context.Context, runID string, trades map[string]domain.Trade) error

	// GetByRunID retrieves the trade ledger of a run keyed by trade id.
	// Returns ErrNotFound if the run has no trades stored.
	GetByRunID(ctx context.Context, runID string) (map[string]domain.Trade, error)
}

// SnapshotStore provides access to the persisted daily valuation series.
type SnapshotStore interface {
	// InsertBulk persists a run's valuation series. Returns ErrDuplicateKey
	// if any (run_id, date) pair already exists; the whole batch fails in
	// that case.
	InsertBulk(ctx context.Context, runID string, snapshots []domain.Snapshot) error

	// GetByRunID retrieves the valuation series of a run in calendar order.
	// Returns ErrNotFound if the run has no snapshots stored.
	GetByRunID(ctx context.Context, runID string) ([]domain.Snapshot, error)
}

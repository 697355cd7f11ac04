// Package memory provides in-memory storage implementations for tests and
// single-process runs.
package memory

import (
	"context"
	"sync"

	"portfolio-backtest-lab/internal/domain"
	"portfolio-backtest-lab/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]map[string]domain.Trade // run_id -> trade_id -> trade
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]map[string]domain.Trade),
	}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// InsertBulk persists a run's trade ledger. Fails the entire batch on any
// duplicate (run_id, trade_id).
func (s *TradeStore) InsertBulk(_ context.Context, runID string, trades map[string]domain.Trade) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(trades) == 0 {
		return nil
	}
	for id := range trades {
		if id == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	run := s.data[runID]
	for id := range trades {
		if _, exists := run[id]; exists {
			return storage.ErrDuplicateKey
		}
	}

	if run == nil {
		run = make(map[string]domain.Trade, len(trades))
		s.data[runID] = run
	}
	for id, t := range trades {
		run[id] = t
	}
	return nil
}

// GetByRunID retrieves the trade ledger of a run keyed by trade id.
func (s *TradeStore) GetByRunID(_ context.Context, runID string) (map[string]domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	result := make(map[string]domain.Trade, len(run))
	for id, t := range run {
		result[id] = t
	}
	return result, nil
}

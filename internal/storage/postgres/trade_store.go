package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"portfolio-backtest-lab/internal/domain"
	"portfolio-backtest-lab/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// InsertBulk persists a run's trade ledger atomically. Fails the entire
// batch on any duplicate (run_id, trade_id).
func (s *TradeStore) InsertBulk(ctx context.Context, runID string, trades map[string]domain.Trade) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO trades (
			run_id, trade_id, entry_type, buy_ds,
			trx_value_no_fee, trx_value_gross,
			closed, sell_ds, sell_value_no_fee, sell_value_gross
		) VALUES (
			$1, $2, $3, $4,
			$5, $6,
			$7, $8, $9, $10
		)
	`

	// Deterministic insert order keeps duplicate reporting stable.
	ids := make([]string, 0, len(trades))
	for id := range trades {
		if id == "" {
			return storage.ErrInvalidInput
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		t := trades[id]
		var sellDs *time.Time
		var sellNoFee, sellGross *float64
		if t.Closed {
			d := t.SellDay.Time()
			sellDs = &d
			sellNoFee = &t.SellValueNoFee
			sellGross = &t.SellValueGross
		}

		_, err := tx.Exec(ctx, query,
			runID, id, string(t.Type), t.BuyDay.Time(),
			t.TrxValueNoFee, t.TrxValueGross,
			t.Closed, sellDs, sellNoFee, sellGross,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByRunID retrieves the trade ledger of a run keyed by trade id.
func (s *TradeStore) GetByRunID(ctx context.Context, runID string) (map[string]domain.Trade, error) {
	query := `
		SELECT
			trade_id, entry_type, buy_ds,
			trx_value_no_fee, trx_value_gross,
			closed, sell_ds, sell_value_no_fee, sell_value_gross
		FROM trades
		WHERE run_id = $1
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query trades by run id: %w", err)
	}
	defer rows.Close()

	trades := make(map[string]domain.Trade)
	for rows.Next() {
		var (
			id        string
			entryType string
			buyDs     time.Time
			t         domain.Trade
			sellDs    *time.Time
			sellNoFee *float64
			sellGross *float64
		)
		err := rows.Scan(
			&id, &entryType, &buyDs,
			&t.TrxValueNoFee, &t.TrxValueGross,
			&t.Closed, &sellDs, &sellNoFee, &sellGross,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}

		t.Type = domain.EntryType(entryType)
		t.BuyDay = domain.NewDay(buyDs.Year(), buyDs.Month(), buyDs.Day())
		if t.Closed && sellDs != nil {
			t.SellDay = domain.NewDay(sellDs.Year(), sellDs.Month(), sellDs.Day())
			t.SellValueNoFee = *sellNoFee
			t.SellValueGross = *sellGross
		}
		trades[id] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}

	if len(trades) == 0 {
		return nil, storage.ErrNotFound
	}
	return trades, nil
}

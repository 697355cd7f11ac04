package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"portfolio-backtest-lab/internal/domain"
	"portfolio-backtest-lab/internal/storage"
)

func sampleTrades() map[string]domain.Trade {
	return map[string]domain.Trade{
		"2010-09-28_CDR_long": {
			BuyDay:        domain.NewDay(2010, time.September, 28),
			Type:          domain.EntryLong,
			TrxValueNoFee: 400,
			TrxValueGross: 404,
		},
		"2010-09-29_KGH_short": {
			BuyDay:         domain.NewDay(2010, time.September, 29),
			Type:           domain.EntryShort,
			TrxValueNoFee:  900,
			TrxValueGross:  896,
			Closed:         true,
			SellDay:        domain.NewDay(2010, time.October, 1),
			SellValueNoFee: -800,
			SellValueGross: -804,
		},
	}
}

func TestTradeStore_InsertAndGet(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, "run-1", sampleTrades()); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByRunID(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d trades, want 2", len(got))
	}

	short := got["2010-09-29_KGH_short"]
	if !short.Closed || short.SellValueGross != -804 {
		t.Errorf("trade mismatch: %+v", short)
	}
}

func TestTradeStore_DuplicateKey(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, "run-1", sampleTrades()); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, "run-1", sampleTrades())
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestTradeStore_RunsAreIsolated(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, "run-1", sampleTrades()); err != nil {
		t.Fatalf("InsertBulk run-1 failed: %v", err)
	}
	if err := store.InsertBulk(ctx, "run-2", sampleTrades()); err != nil {
		t.Fatalf("InsertBulk run-2 failed: %v", err)
	}

	got, err := store.GetByRunID(ctx, "run-2")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d trades, want 2", len(got))
	}
}

func TestTradeStore_NotFound(t *testing.T) {
	store := NewTradeStore()

	_, err := store.GetByRunID(context.Background(), "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTradeStore_InvalidInput(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, "", sampleTrades()); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty run id, got %v", err)
	}
	err := store.InsertBulk(ctx, "run-1", map[string]domain.Trade{"": {}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty trade id, got %v", err)
	}
}

func TestTradeStore_GetReturnsCopy(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, "run-1", sampleTrades()); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	first, _ := store.GetByRunID(ctx, "run-1")
	delete(first, "2010-09-28_CDR_long")

	second, _ := store.GetByRunID(ctx, "run-1")
	if len(second) != 2 {
		t.Errorf("store mutated through returned map: %d trades left", len(second))
	}
}

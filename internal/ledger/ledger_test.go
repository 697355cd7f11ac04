package ledger

import (
	"errors"
	"testing"
	"time"

	"portfolio-backtest-lab/internal/domain"
)

func testKey() domain.TradeKey {
	return domain.TradeKey{
		Day:       domain.NewDay(2010, time.September, 28),
		Symbol:    "TEST_SIGS_1",
		EntryType: domain.EntryLong,
	}
}

func TestOpenAndClose(t *testing.T) {
	l := New()
	key := testKey()

	l.Open(key, 400, 404)
	got, ok := l.Get(key)
	if !ok {
		t.Fatal("trade not recorded")
	}
	if got.Closed || got.TrxValueNoFee != 400 || got.TrxValueGross != 404 || got.Type != domain.EntryLong {
		t.Fatalf("unexpected open record: %+v", got)
	}

	sellDay := domain.NewDay(2010, time.September, 29)
	if err := l.Close(key, sellDay, 840, 836); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	got, _ = l.Get(key)
	if !got.Closed || got.SellDay != sellDay || got.SellValueNoFee != 840 || got.SellValueGross != 836 {
		t.Fatalf("unexpected closed record: %+v", got)
	}
}

func TestCloseUnknownTrade(t *testing.T) {
	l := New()
	err := l.Close(testKey(), domain.NewDay(2010, time.September, 29), 840, 836)
	if !errors.Is(err, ErrUnknownTrade) {
		t.Fatalf("expected ErrUnknownTrade, got %v", err)
	}
}

func TestCloseTwice(t *testing.T) {
	l := New()
	key := testKey()
	l.Open(key, 400, 404)

	sellDay := domain.NewDay(2010, time.September, 29)
	if err := l.Close(key, sellDay, 840, 836); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := l.Close(key, sellDay, 840, 836); !errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("expected ErrAlreadyClosed, got %v", err)
	}
}

func TestReopenOverwrites(t *testing.T) {
	// Same-day re-entry into the same symbol and type replaces the open record.
	l := New()
	key := testKey()
	l.Open(key, 400, 404)
	l.Open(key, 500, 505)

	got, _ := l.Get(key)
	if got.TrxValueNoFee != 500 || got.TrxValueGross != 505 {
		t.Fatalf("expected overwritten record, got %+v", got)
	}
	if l.Len() != 1 {
		t.Fatalf("expected 1 trade, got %d", l.Len())
	}
}

func TestTradesExportKeyedByDisplayID(t *testing.T) {
	l := New()
	key := testKey()
	l.Open(key, 400, 404)

	trades := l.Trades()
	if _, ok := trades["2010-09-28_TEST_SIGS_1_long"]; !ok {
		t.Fatalf("expected display id key, got %v", trades)
	}
}

func TestKeysOrdered(t *testing.T) {
	l := New()
	d1 := domain.NewDay(2010, time.September, 28)
	d2 := domain.NewDay(2010, time.September, 30)
	l.Open(domain.TradeKey{Day: d2, Symbol: "B", EntryType: domain.EntryShort}, 1, 1)
	l.Open(domain.TradeKey{Day: d1, Symbol: "B", EntryType: domain.EntryLong}, 1, 1)
	l.Open(domain.TradeKey{Day: d1, Symbol: "A", EntryType: domain.EntryLong}, 1, 1)

	keys := l.Keys()
	want := []string{"2010-09-28_A_long", "2010-09-28_B_long", "2010-09-30_B_short"}
	for i, k := range keys {
		if k.ID() != want[i] {
			t.Fatalf("unexpected key order: got %v at %d, want %v", k.ID(), i, want[i])
		}
	}
}

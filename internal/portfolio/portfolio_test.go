package portfolio

import (
	"errors"
	"testing"
	"time"

	"portfolio-backtest-lab/internal/domain"
)

func key(symbol string, entryType domain.EntryType) domain.TradeKey {
	return domain.TradeKey{
		Day:       domain.NewDay(2010, time.September, 28),
		Symbol:    symbol,
		EntryType: entryType,
	}
}

func TestBuyLong(t *testing.T) {
	s := NewState(500)
	gross := s.Buy(domain.Fill{
		Symbol: "X", EntryType: domain.EntryLong,
		SharesCount: 4, Price: 100, TrxValue: 400, Fee: 4,
	}, key("X", domain.EntryLong))

	if gross != 404 {
		t.Errorf("gross = %v, want 404", gross)
	}
	if s.Cash() != 96 {
		t.Errorf("cash = %v, want 96", s.Cash())
	}
	h, ok := s.Held("X")
	if !ok || h.SharesCount != 4 {
		t.Fatalf("unexpected holding: %+v ok=%v", h, ok)
	}
}

func TestBuyShort(t *testing.T) {
	s := NewState(932)
	gross := s.Buy(domain.Fill{
		Symbol: "X", EntryType: domain.EntryShort,
		SharesCount: 10, Price: 90, TrxValue: 900, Fee: 4,
	}, key("X", domain.EntryShort))

	if gross != 896 {
		t.Errorf("gross = %v, want 896", gross)
	}
	if s.Cash() != 1828 {
		t.Errorf("cash = %v, want 1828", s.Cash())
	}
	h, _ := s.Held("X")
	if h.SharesCount != -10 {
		t.Errorf("shares = %v, want -10", h.SharesCount)
	}
}

func TestSellLong(t *testing.T) {
	s := NewState(500)
	k := key("X", domain.EntryLong)
	s.Buy(domain.Fill{Symbol: "X", EntryType: domain.EntryLong, SharesCount: 4, Price: 100, TrxValue: 400, Fee: 4}, k)

	gotKey, noFee, gross, err := s.Sell("X", domain.EntryLong, 210, 4)
	if err != nil {
		t.Fatalf("Sell failed: %v", err)
	}
	if gotKey != k {
		t.Errorf("trade key = %+v, want %+v", gotKey, k)
	}
	if noFee != 840 || gross != 836 {
		t.Errorf("sell values = %v/%v, want 840/836", noFee, gross)
	}
	if s.Cash() != 932 {
		t.Errorf("cash = %v, want 932", s.Cash())
	}
	if _, ok := s.Held("X"); ok {
		t.Error("holding not removed after sell")
	}
}

func TestSellShortDebitsCoverCost(t *testing.T) {
	s := NewState(932)
	k := key("X", domain.EntryShort)
	s.Buy(domain.Fill{Symbol: "X", EntryType: domain.EntryShort, SharesCount: 10, Price: 90, TrxValue: 900, Fee: 4}, k)

	_, noFee, gross, err := s.Sell("X", domain.EntryShort, 80, 4)
	if err != nil {
		t.Fatalf("Sell failed: %v", err)
	}
	if noFee != -800 || gross != -804 {
		t.Errorf("sell values = %v/%v, want -800/-804", noFee, gross)
	}
	if s.Cash() != 1024 {
		t.Errorf("cash = %v, want 1024", s.Cash())
	}
}

func TestSellNotHeld(t *testing.T) {
	s := NewState(100)
	if _, _, _, err := s.Sell("X", domain.EntryLong, 100, 4); !errors.Is(err, ErrNotHeld) {
		t.Fatalf("expected ErrNotHeld, got %v", err)
	}
}

func TestSellWrongSide(t *testing.T) {
	s := NewState(932)
	s.Buy(domain.Fill{Symbol: "X", EntryType: domain.EntryShort, SharesCount: 10, Price: 90, TrxValue: 900, Fee: 4}, key("X", domain.EntryShort))

	if _, _, _, err := s.Sell("X", domain.EntryLong, 80, 4); !errors.Is(err, ErrWrongSide) {
		t.Fatalf("expected ErrWrongSide, got %v", err)
	}
}

func TestAccountValue(t *testing.T) {
	s := NewState(2000)
	s.Buy(domain.Fill{Symbol: "L", EntryType: domain.EntryLong, SharesCount: 4, Price: 100, TrxValue: 400, Fee: 4}, key("L", domain.EntryLong))
	s.Buy(domain.Fill{Symbol: "S", EntryType: domain.EntryShort, SharesCount: 10, Price: 90, TrxValue: 900, Fee: 4}, key("S", domain.EntryShort))

	prices := map[string]float64{"L": 110, "S": 95}
	got := s.AccountValue(func(symbol string) (float64, bool) {
		p, ok := prices[symbol]
		return p, ok
	})
	if got != 4*110-10*95 {
		t.Errorf("account value = %v, want %v", got, 4*110-10*95)
	}
}

func TestAccountValueFlat(t *testing.T) {
	s := NewState(100)
	if got := s.AccountValue(func(string) (float64, bool) { return 0, false }); got != 0 {
		t.Errorf("flat account value = %v, want 0", got)
	}
}

func TestHeldSymbolsSorted(t *testing.T) {
	s := NewState(100000)
	for _, sym := range []string{"C", "A", "B"} {
		s.Buy(domain.Fill{Symbol: sym, EntryType: domain.EntryLong, SharesCount: 1, Price: 10, TrxValue: 10, Fee: 4}, key(sym, domain.EntryLong))
	}
	got := s.HeldSymbols()
	want := []string{"A", "B", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("symbols = %v, want %v", got, want)
		}
	}
}

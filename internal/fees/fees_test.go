package fees

import "testing"

func TestCalculate(t *testing.T) {
	m := DefaultModel()

	tests := []struct {
		name     string
		trxValue float64
		want     float64
	}{
		{"below floor", 400, 4},        // 400*0.0038 = 1.52 -> floored
		{"at small value", 900, 4},     // 3.42 -> floored
		{"above floor", 9888, 37.57},   // 37.5744 rounded down
		{"rounding up", 9879, 37.54},   // 37.5402
		{"large value", 8901, 33.82},   // 33.8238
		{"negative sell value", -800, 4}, // short cover always hits the floor
		{"zero", 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Calculate(tt.trxValue); got != tt.want {
				t.Errorf("Calculate(%v) = %v, want %v", tt.trxValue, got, tt.want)
			}
		})
	}
}

func TestCalculateCustomModel(t *testing.T) {
	m := Model{FeePerc: 0.01, MinFee: 1}

	if got := m.Calculate(50); got != 1 {
		t.Errorf("Calculate(50) = %v, want floor 1", got)
	}
	if got := m.Calculate(12345); got != 123.45 {
		t.Errorf("Calculate(12345) = %v, want 123.45", got)
	}
}

func TestSharesCount(t *testing.T) {
	m := DefaultModel()

	tests := []struct {
		name  string
		money float64
		price float64
		want  int64
	}{
		{"whole shares only", 500, 100, 4},    // 500/100.38 = 4.98
		{"short entry sizing", 932, 90, 10},   // 932/90.342 = 10.31
		{"cannot afford one", 96, 210, 0},
		{"exact boundary below", 10000, 103, 96}, // 10000/103.3914 = 96.72
		{"zero money", 0, 100, 0},
		{"negative money", -10, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.SharesCount(tt.money, tt.price); got != tt.want {
				t.Errorf("SharesCount(%v, %v) = %v, want %v", tt.money, tt.price, got, tt.want)
			}
		})
	}
}

func TestFeeFloorInvariant(t *testing.T) {
	m := DefaultModel()
	for _, v := range []float64{-10000, -1, 0, 1, 100, 1000, 100000} {
		if fee := m.Calculate(v); fee < m.MinFee {
			t.Errorf("Calculate(%v) = %v, below floor %v", v, fee, m.MinFee)
		}
	}
}

package usecase_test

import (
	"testing"

	"github.com/vitos/hyperliquid_donchian/internal/domain"
	"github.com/vitos/hyperliquid_donchian/internal/usecase"
)

func fullWindow(prices ...float64) *domain.PriceWindow {
	w := domain.NewPriceWindow(len(prices))
	for _, p := range prices {
		w.Append(p)
	}
	return w
}

func TestSignalEngine_PartialWindowIsAlwaysNone(t *testing.T) {
	engine := usecase.NewSignalEngine()
	w := domain.NewPriceWindow(12)
	for _, p := range []float64{100, 90, 110} {
		w.Append(p)
	}

	for _, price := range []float64{0.01, 89, 100, 111, 1e9} {
		if got := engine.Evaluate(w, price); got != domain.SignalNone {
			t.Errorf("partial window, price %v: signal = %v, want NONE", price, got)
		}
	}
}

func TestSignalEngine_Breakouts(t *testing.T) {
	engine := usecase.NewSignalEngine()

	cases := []struct {
		name  string
		price float64
		want  domain.Signal
	}{
		{"above max", 111, domain.SignalLong},
		{"below min", 89, domain.SignalShort},
		{"inside channel", 100, domain.SignalNone},
		{"equals max", 110, domain.SignalNone},
		{"equals min", 90, domain.SignalNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := fullWindow(100, 90, 105, 110, 95)
			if got := engine.Evaluate(w, tc.price); got != tc.want {
				t.Errorf("Evaluate(%v) = %v, want %v", tc.price, got, tc.want)
			}
		})
	}
}

func TestSignalEngine_DoesNotMutateWindow(t *testing.T) {
	engine := usecase.NewSignalEngine()
	w := fullWindow(100, 90, 110)

	engine.Evaluate(w, 120)

	if w.Len() != 3 {
		t.Errorf("window length changed during evaluation: %d", w.Len())
	}
}

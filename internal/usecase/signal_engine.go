package usecase

import "github.com/vitos/hyperliquid_donchian/internal/domain"

// SignalEngine derives breakout signals from the price channel. It is
// stateless; the window holds all the history it needs.
type SignalEngine struct{}

func NewSignalEngine() *SignalEngine {
	return &SignalEngine{}
}

// Evaluate compares the current price against the channel boundaries. The
// window must hold historical prices only: the caller appends currentPrice
// after evaluation, never before, so the breakout is always measured
// against the pre-trade channel.
func (e *SignalEngine) Evaluate(window *domain.PriceWindow, currentPrice float64) domain.Signal {
	if !window.IsFull() {
		return domain.SignalNone
	}

	lo, err := window.Min()
	if err != nil {
		return domain.SignalNone
	}
	hi, _ := window.Max()

	// Strict inequality: touching the boundary is not a breakout.
	switch {
	case currentPrice > hi:
		return domain.SignalLong
	case currentPrice < lo:
		return domain.SignalShort
	}
	return domain.SignalNone
}

package domain

// PriceWindow is a fixed-capacity FIFO of recent prices, the lookback for
// the breakout channel. It is owned by the trading loop and accessed from a
// single goroutine, so it carries no lock.
type PriceWindow struct {
	capacity int
	prices   []float64
}

func NewPriceWindow(capacity int) *PriceWindow {
	return &PriceWindow{
		capacity: capacity,
		prices:   make([]float64, 0, capacity),
	}
}

// Append adds a price, evicting the oldest sample once capacity is reached.
func (w *PriceWindow) Append(price float64) {
	if len(w.prices) == w.capacity {
		copy(w.prices, w.prices[1:])
		w.prices = w.prices[:w.capacity-1]
	}
	w.prices = append(w.prices, price)
}

func (w *PriceWindow) Len() int { return len(w.prices) }

func (w *PriceWindow) Capacity() int { return w.capacity }

func (w *PriceWindow) IsFull() bool { return len(w.prices) == w.capacity }

func (w *PriceWindow) Min() (float64, error) {
	if len(w.prices) == 0 {
		return 0, ErrEmptyWindow
	}
	min := w.prices[0]
	for _, p := range w.prices[1:] {
		if p < min {
			min = p
		}
	}
	return min, nil
}

func (w *PriceWindow) Max() (float64, error) {
	if len(w.prices) == 0 {
		return 0, ErrEmptyWindow
	}
	max := w.prices[0]
	for _, p := range w.prices[1:] {
		if p > max {
			max = p
		}
	}
	return max, nil
}

// Clear resets the channel. Called exactly once per executed trade so the
// lookback restarts from scratch; skipped cycles never clear.
func (w *PriceWindow) Clear() {
	w.prices = w.prices[:0]
}

// Snapshot returns a copy of the buffered prices, oldest first.
func (w *PriceWindow) Snapshot() []float64 {
	out := make([]float64, len(w.prices))
	copy(out, w.prices)
	return out
}

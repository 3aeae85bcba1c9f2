package domain

import "time"

// TradeStatus records how far the order lifecycle got.
type TradeStatus string

const (
	// StatusProtected means entry plus both protective exits were accepted.
	StatusProtected TradeStatus = "protected"
	// StatusUnprotected means the entry filled but at least one exit was
	// rejected; the position is live without full protection.
	StatusUnprotected TradeStatus = "unprotected"
)

// Trade is one executed entry with its derived exit orders, as written to
// the journal.
type Trade struct {
	ID              string
	Coin            string
	Side            Side
	Size            float64
	EntryPrice      float64
	StopPrice       float64
	TakeProfitPrice float64
	Status          TradeStatus
	CreatedAt       time.Time
}

// Event is a notable non-trade occurrence worth keeping past process
// restarts, most importantly unprotected-position alerts.
type Event struct {
	ID        int64
	Kind      string
	Coin      string
	Detail    string
	CreatedAt time.Time
}

const (
	EventUnprotectedPosition = "unprotected_position"
	EventEntryRejected       = "entry_rejected"
)

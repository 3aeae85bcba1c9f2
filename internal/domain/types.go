package domain

type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Signal is the outcome of one breakout evaluation.
type Signal int

const (
	SignalNone Signal = iota
	SignalLong
	SignalShort
)

func (s Signal) String() string {
	switch s {
	case SignalLong:
		return "LONG"
	case SignalShort:
		return "SHORT"
	}
	return "NONE"
}

// Side maps a trade signal to its position side. SignalNone has no side.
func (s Signal) Side() Side {
	if s == SignalShort {
		return SideShort
	}
	return SideLong
}

// TriggerRole tells the exchange which protective slot a trigger order
// occupies. Values match the Hyperliquid tpsl field.
type TriggerRole string

const (
	RoleStopLoss   TriggerRole = "sl"
	RoleTakeProfit TriggerRole = "tp"
)

// Position is an open perpetual position as reported by the exchange.
// Size is signed: positive long, negative short, zero flat.
type Position struct {
	Coin             string
	Size             float64
	EntryPrice       float64
	LiquidationPrice float64 // 0 when the exchange reports none
}

func (p *Position) IsOpen() bool { return p != nil && p.Size != 0 }

func (p *Position) Side() Side {
	if p.Size < 0 {
		return SideShort
	}
	return SideLong
}

// UnrealizedPnL is size * (mark - entry); the sign of Size makes the short
// case come out right.
func (p *Position) UnrealizedPnL(markPrice float64) float64 {
	return p.Size * (markPrice - p.EntryPrice)
}

// AccountState is one snapshot of the account: quote balance plus all open
// positions. Fetched fresh every cycle, never cached across cycles.
type AccountState struct {
	Balance   float64
	Positions []Position
}

// Position returns the position for coin, or nil when flat.
func (a *AccountState) Position(coin string) *Position {
	for i := range a.Positions {
		if a.Positions[i].Coin == coin {
			return &a.Positions[i]
		}
	}
	return nil
}

// AssetMeta is the per-asset market metadata the sizer needs.
type AssetMeta struct {
	Name       string
	SzDecimals int
}

// OrderFill is the exchange's acknowledgement of a filled market order.
type OrderFill struct {
	AvgPrice float64
	Size     float64
}

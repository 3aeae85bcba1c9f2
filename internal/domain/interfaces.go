package domain

import "context"

// Exchange defines the interface for interacting with the derivatives
// exchange. The trading core only ever talks to this interface; transport,
// signing and rate limiting live behind it.
type Exchange interface {
	GetAccountState(ctx context.Context, address string) (*AccountState, error)
	GetMidPrice(ctx context.Context, coin string) (float64, error)
	GetAssetMeta(ctx context.Context, coin string) (*AssetMeta, error)

	// SubmitMarketOrder opens or extends a position at market.
	SubmitMarketOrder(ctx context.Context, coin string, isBuy bool, size float64) (*OrderFill, error)

	// SubmitTriggerOrder places a reduce-only market-on-trigger order in the
	// given protective role.
	SubmitTriggerOrder(ctx context.Context, coin string, isBuy bool, size, triggerPrice float64, role TriggerRole) error

	// OnPriceUpdate registers a callback for streamed mid prices.
	OnPriceUpdate(callback func(coin string, price float64))
	Subscribe(coins []string) error
}

// TradeRepository journals executed trades and notable events.
type TradeRepository interface {
	SaveTrade(ctx context.Context, trade *Trade) error
	ListTrades(ctx context.Context, limit int) ([]*Trade, error)
	SaveEvent(ctx context.Context, event *Event) error
	ListEvents(ctx context.Context, limit int) ([]*Event, error)
}

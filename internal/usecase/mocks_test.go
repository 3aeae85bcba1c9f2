package usecase_test

import (
	"context"

	"github.com/vitos/hyperliquid_donchian/internal/domain"
)

type MarketCall struct {
	Coin  string
	IsBuy bool
	Size  float64
}

type TriggerCall struct {
	Coin    string
	IsBuy   bool
	Size    float64
	Trigger float64
	Role    domain.TriggerRole
}

// MockExchange is a scriptable in-memory exchange implementing
// domain.Exchange.
type MockExchange struct {
	Balance   float64
	Positions []domain.Position

	Mid     float64
	MidErr  error
	Meta    *domain.AssetMeta
	MetaErr error

	Fill      *domain.OrderFill
	MarketErr error
	// TriggerErrs rejects specific legs; unlisted roles succeed.
	TriggerErrs map[domain.TriggerRole]error

	MarketCalls  []MarketCall
	TriggerCalls []TriggerCall
}

func NewMockExchange() *MockExchange {
	return &MockExchange{
		Balance: 1000,
		Meta:    &domain.AssetMeta{Name: "BTC", SzDecimals: 5},
	}
}

func (m *MockExchange) GetAccountState(ctx context.Context, address string) (*domain.AccountState, error) {
	return &domain.AccountState{Balance: m.Balance, Positions: m.Positions}, nil
}

func (m *MockExchange) GetMidPrice(ctx context.Context, coin string) (float64, error) {
	return m.Mid, m.MidErr
}

func (m *MockExchange) GetAssetMeta(ctx context.Context, coin string) (*domain.AssetMeta, error) {
	if m.MetaErr != nil {
		return nil, m.MetaErr
	}
	return m.Meta, nil
}

func (m *MockExchange) SubmitMarketOrder(ctx context.Context, coin string, isBuy bool, size float64) (*domain.OrderFill, error) {
	m.MarketCalls = append(m.MarketCalls, MarketCall{Coin: coin, IsBuy: isBuy, Size: size})
	if m.MarketErr != nil {
		return nil, m.MarketErr
	}
	if m.Fill != nil {
		return m.Fill, nil
	}
	return &domain.OrderFill{AvgPrice: m.Mid, Size: size}, nil
}

func (m *MockExchange) SubmitTriggerOrder(ctx context.Context, coin string, isBuy bool, size, triggerPrice float64, role domain.TriggerRole) error {
	m.TriggerCalls = append(m.TriggerCalls, TriggerCall{Coin: coin, IsBuy: isBuy, Size: size, Trigger: triggerPrice, Role: role})
	if err, ok := m.TriggerErrs[role]; ok {
		return err
	}
	return nil
}

func (m *MockExchange) OnPriceUpdate(callback func(coin string, price float64)) {}

func (m *MockExchange) Subscribe(coins []string) error { return nil }

// MockTradeRepository records journal writes.
type MockTradeRepository struct {
	Trades []*domain.Trade
	Events []*domain.Event
}

func (m *MockTradeRepository) SaveTrade(ctx context.Context, trade *domain.Trade) error {
	m.Trades = append(m.Trades, trade)
	return nil
}

func (m *MockTradeRepository) ListTrades(ctx context.Context, limit int) ([]*domain.Trade, error) {
	return m.Trades, nil
}

func (m *MockTradeRepository) SaveEvent(ctx context.Context, event *domain.Event) error {
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockTradeRepository) ListEvents(ctx context.Context, limit int) ([]*domain.Event, error) {
	return m.Events, nil
}

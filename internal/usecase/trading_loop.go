package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vitos/hyperliquid_donchian/internal/config"
	"github.com/vitos/hyperliquid_donchian/internal/domain"
	"go.uber.org/zap"
)

// TradingService owns the polling cadence: fetch account state and mid
// price, report an open position or evaluate the breakout channel, trade,
// sleep. One iteration at a time; the window is never touched from
// anywhere else.
type TradingService struct {
	exchange domain.Exchange
	trades   domain.TradeRepository
	sizer    *RiskSizer
	engine   *SignalEngine
	executor *TradeExecutor
	window   *domain.PriceWindow
	cfg      config.StrategyConfig
	address  string
	logger   *zap.Logger
}

func NewTradingService(
	exchange domain.Exchange,
	trades domain.TradeRepository,
	cfg config.StrategyConfig,
	address string,
	logger *zap.Logger,
) *TradingService {
	return &TradingService{
		exchange: exchange,
		trades:   trades,
		sizer:    NewRiskSizer(exchange, cfg, logger),
		engine:   NewSignalEngine(),
		executor: NewTradeExecutor(exchange, cfg, logger),
		window:   domain.NewPriceWindow(cfg.WindowSize),
		cfg:      cfg,
		address:  address,
		logger:   logger,
	}
}

// Window exposes the channel state for diagnostics and tests.
func (s *TradingService) Window() *domain.PriceWindow { return s.window }

// Run polls until ctx is cancelled. Errors escaping a cycle are logged and
// the loop continues after the standard sleep; a single bad cycle never
// takes the process down. Cancellation is checked between iterations only,
// so an in-flight order submission always completes.
func (s *TradingService) Run(ctx context.Context) error {
	s.logger.Info("Starting trading loop",
		zap.String("asset", s.cfg.Asset),
		zap.Int("window_size", s.cfg.WindowSize),
		zap.Duration("poll_interval", s.cfg.PollInterval()),
		zap.Float64("risk_per_trade_pct", s.cfg.RiskPerTradePct),
		zap.Float64("stop_loss_pct", s.cfg.StopLossPct),
		zap.Float64("take_profit_pct", s.cfg.TakeProfitPct()))

	ticker := time.NewTicker(s.cfg.PollInterval())
	defer ticker.Stop()

	for {
		if err := s.RunCycle(ctx); err != nil {
			s.logger.Error("Trading cycle failed, continuing", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			s.logger.Info("Trading loop stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunCycle executes exactly one polling iteration.
func (s *TradingService) RunCycle(ctx context.Context) error {
	state, err := s.exchange.GetAccountState(ctx, s.address)
	if err != nil {
		return err
	}

	price, err := s.exchange.GetMidPrice(ctx, s.cfg.Asset)
	if err != nil {
		return err
	}

	if pos := state.Position(s.cfg.Asset); pos.IsOpen() {
		s.reportPosition(pos, price, state.Balance)
		return nil
	}

	// Evaluate against the existing window first; the current price joins
	// the channel only when no trade fires.
	if !s.window.IsFull() {
		s.logger.Info("Collecting prices",
			zap.Int("collected", s.window.Len()+1),
			zap.Int("target", s.window.Capacity()),
			zap.Float64("price", price))
		s.window.Append(price)
		return nil
	}

	lo, err := s.window.Min()
	if err != nil {
		return err
	}
	hi, _ := s.window.Max()

	s.logger.Info("Analyzing prices",
		zap.Float64("current", price),
		zap.Float64("min", lo),
		zap.Float64("max", hi),
		zap.Float64("range", hi-lo),
		zap.Float64s("window", s.window.Snapshot()))

	signal := s.engine.Evaluate(s.window, price)
	if signal == domain.SignalNone {
		s.window.Append(price)
		return nil
	}

	s.logger.Info("Breakout signal",
		zap.String("signal", signal.String()),
		zap.Float64("price", price),
		zap.Float64("channel_min", lo),
		zap.Float64("channel_max", hi))

	size, err := s.sizer.Size(ctx, s.cfg.Asset, state.Balance, price)
	if err != nil {
		// Window stays intact: next cycle re-evaluates the same channel.
		return err
	}

	result, err := s.executor.Execute(ctx, s.cfg.Asset, signal.Side(), size)

	var unprotected *domain.UnprotectedPositionError
	if err != nil && !errors.As(err, &unprotected) {
		// Entry never filled; nothing is at risk and the channel is kept.
		s.journalEvent(ctx, domain.EventEntryRejected, err.Error())
		return err
	}

	if unprotected != nil {
		s.logger.Error("UNPROTECTED POSITION: exit order rejected after entry fill",
			zap.String("coin", unprotected.Coin),
			zap.String("side", string(unprotected.Side)),
			zap.Float64("size", unprotected.Size),
			zap.Float64("entry_price", unprotected.EntryPrice),
			zap.Any("failed_legs", unprotected.FailedLegs()),
			zap.Error(unprotected))
		s.journalEvent(ctx, domain.EventUnprotectedPosition, unprotected.Error())
	}

	s.journalTrade(ctx, result)

	// The entry filled, so a trade happened: restart the channel from
	// scratch without appending the trigger price.
	s.window.Clear()
	s.logger.Info("Price history cleared")
	return nil
}

func (s *TradingService) reportPosition(pos *domain.Position, price, balance float64) {
	pnl := pos.UnrealizedPnL(price)
	var pnlPct float64
	if balance > 0 {
		pnlPct = pnl / balance * 100
	}

	fields := []zap.Field{
		zap.String("coin", pos.Coin),
		zap.Float64("size", pos.Size),
		zap.Float64("entry_price", pos.EntryPrice),
		zap.Float64("current_price", price),
		zap.Float64("unrealized_pnl", pnl),
		zap.Float64("pnl_pct", pnlPct),
	}
	if pos.LiquidationPrice > 0 {
		fields = append(fields, zap.Float64("liquidation_price", pos.LiquidationPrice))
	}
	s.logger.Info("Open position, skipping signal evaluation", fields...)
}

func (s *TradingService) journalTrade(ctx context.Context, result *TradeResult) {
	status := domain.StatusProtected
	if !result.Protected() {
		status = domain.StatusUnprotected
	}

	trade := &domain.Trade{
		ID:              uuid.NewString(),
		Coin:            result.Coin,
		Side:            result.Side,
		Size:            result.Size,
		EntryPrice:      result.EntryPrice,
		StopPrice:       result.StopPrice,
		TakeProfitPrice: result.TakeProfitPrice,
		Status:          status,
		CreatedAt:       time.Now(),
	}
	if err := s.trades.SaveTrade(ctx, trade); err != nil {
		s.logger.Warn("Failed to journal trade", zap.Error(err))
	}
}

func (s *TradingService) journalEvent(ctx context.Context, kind, detail string) {
	event := &domain.Event{
		Kind:      kind,
		Coin:      s.cfg.Asset,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	if err := s.trades.SaveEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to journal event", zap.String("kind", kind), zap.Error(err))
	}
}

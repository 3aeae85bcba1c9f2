package usecase

import (
	"context"
	"math"

	"github.com/vitos/hyperliquid_donchian/internal/config"
	"github.com/vitos/hyperliquid_donchian/internal/domain"
	"go.uber.org/zap"
)

// TradeResult describes how far one trade attempt got. EntryPrice is only
// meaningful once the entry filled.
type TradeResult struct {
	Coin            string
	Side            domain.Side
	Size            float64
	EntryPrice      float64
	StopPrice       float64
	TakeProfitPrice float64
	StopLossPlaced  bool
	TakeProfitSet   bool
}

// Protected reports whether both exit orders were accepted.
func (r *TradeResult) Protected() bool {
	return r.StopLossPlaced && r.TakeProfitSet
}

// TradeExecutor drives the three-order protocol for one trade: market
// entry, then stop-loss and take-profit trigger orders derived from the
// fill price. An entry rejection aborts the attempt; exit rejections after
// a fill leave the position open and are reported as an
// UnprotectedPositionError; the executor never closes the entry on its own.
type TradeExecutor struct {
	exchange domain.Exchange
	cfg      config.StrategyConfig
	logger   *zap.Logger
}

func NewTradeExecutor(exchange domain.Exchange, cfg config.StrategyConfig, logger *zap.Logger) *TradeExecutor {
	return &TradeExecutor{
		exchange: exchange,
		cfg:      cfg,
		logger:   logger,
	}
}

func (e *TradeExecutor) Execute(ctx context.Context, coin string, side domain.Side, size float64) (*TradeResult, error) {
	isBuy := side == domain.SideLong

	fill, err := e.exchange.SubmitMarketOrder(ctx, coin, isBuy, size)
	if err != nil {
		return nil, err
	}
	if fill == nil || fill.AvgPrice <= 0 {
		return nil, &domain.EntryRejectedError{Coin: coin, Reason: "fill response missing average price"}
	}

	// Quantize the fill to whole price units, the asset's price tick.
	entryPrice := math.Trunc(fill.AvgPrice)
	stopPrice, takeProfitPrice := e.exitPrices(entryPrice, side)

	result := &TradeResult{
		Coin:            coin,
		Side:            side,
		Size:            size,
		EntryPrice:      entryPrice,
		StopPrice:       stopPrice,
		TakeProfitPrice: takeProfitPrice,
	}

	e.logger.Info("Entry filled",
		zap.String("coin", coin),
		zap.String("side", string(side)),
		zap.Float64("size", size),
		zap.Float64("entry_price", entryPrice),
		zap.Float64("stop_price", stopPrice),
		zap.Float64("take_profit_price", takeProfitPrice))

	// Exits are reduce-only and face the opposite direction. Each leg is
	// attempted regardless of the other's outcome so a stop-loss rejection
	// does not cost us the take-profit too.
	var legs []*domain.ExitOrderRejectedError

	if err := e.exchange.SubmitTriggerOrder(ctx, coin, !isBuy, size, stopPrice, domain.RoleStopLoss); err != nil {
		legs = append(legs, &domain.ExitOrderRejectedError{Coin: coin, Leg: domain.RoleStopLoss, Err: err})
	} else {
		result.StopLossPlaced = true
		e.logger.Info("Stop loss placed", zap.String("coin", coin), zap.Float64("trigger", stopPrice))
	}

	if err := e.exchange.SubmitTriggerOrder(ctx, coin, !isBuy, size, takeProfitPrice, domain.RoleTakeProfit); err != nil {
		legs = append(legs, &domain.ExitOrderRejectedError{Coin: coin, Leg: domain.RoleTakeProfit, Err: err})
	} else {
		result.TakeProfitSet = true
		e.logger.Info("Take profit placed", zap.String("coin", coin), zap.Float64("trigger", takeProfitPrice))
	}

	if len(legs) > 0 {
		return result, &domain.UnprotectedPositionError{
			Coin:       coin,
			Side:       side,
			Size:       size,
			EntryPrice: entryPrice,
			Legs:       legs,
		}
	}
	return result, nil
}

// exitPrices derives the protective trigger prices from the quantized entry
// price. Both are truncated to whole price units like the entry.
func (e *TradeExecutor) exitPrices(entryPrice float64, side domain.Side) (stop, takeProfit float64) {
	sl := e.cfg.StopLossPct
	tp := e.cfg.TakeProfitPct()

	if side == domain.SideLong {
		stop = math.Trunc(entryPrice * (1 - sl/100))
		takeProfit = math.Trunc(entryPrice * (1 + tp/100))
	} else {
		stop = math.Trunc(entryPrice * (1 + sl/100))
		takeProfit = math.Trunc(entryPrice * (1 - tp/100))
	}
	return stop, takeProfit
}

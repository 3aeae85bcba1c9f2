package usecase

import (
	"context"
	"math"

	"github.com/vitos/hyperliquid_donchian/internal/config"
	"github.com/vitos/hyperliquid_donchian/internal/domain"
	"go.uber.org/zap"
)

// RiskSizer converts account balance and current price into an order
// quantity under fixed-fractional risk: the distance to the stop-loss is
// worth RiskPerTradePct of the balance.
type RiskSizer struct {
	exchange domain.Exchange
	cfg      config.StrategyConfig
	logger   *zap.Logger
}

func NewRiskSizer(exchange domain.Exchange, cfg config.StrategyConfig, logger *zap.Logger) *RiskSizer {
	return &RiskSizer{
		exchange: exchange,
		cfg:      cfg,
		logger:   logger,
	}
}

// Size returns the order quantity for one trade, rounded to the asset's
// size decimals and floored at MinOrderSize. With FallbackMinSize enabled
// any failure degrades to MinOrderSize with a warning, matching the legacy
// behavior; otherwise errors propagate and the caller skips the trade.
func (r *RiskSizer) Size(ctx context.Context, coin string, balance, currentPrice float64) (float64, error) {
	size, err := r.size(ctx, coin, balance, currentPrice)
	if err != nil {
		if r.cfg.FallbackMinSize {
			r.logger.Warn("Sizing failed, falling back to minimum order size",
				zap.String("coin", coin),
				zap.Float64("min_size", r.cfg.MinOrderSize),
				zap.Error(err))
			return r.cfg.MinOrderSize, nil
		}
		return 0, err
	}
	return size, nil
}

func (r *RiskSizer) size(ctx context.Context, coin string, balance, currentPrice float64) (float64, error) {
	if r.cfg.StopLossPct == 0 {
		return 0, &domain.InvalidSizingInputError{Reason: "stop-loss percent is zero"}
	}
	if currentPrice <= 0 {
		return 0, &domain.InvalidSizingInputError{Reason: "current price is not positive"}
	}

	meta, err := r.exchange.GetAssetMeta(ctx, coin)
	if err != nil {
		return 0, err
	}

	riskAmount := balance * r.cfg.RiskPerTradePct / 100
	quantity := riskAmount / (currentPrice * r.cfg.StopLossPct / 100)
	quantity = roundToDecimals(quantity, meta.SzDecimals)

	if quantity < r.cfg.MinOrderSize {
		r.logger.Debug("Adjusting quantity up to minimum order size",
			zap.Float64("quantity", quantity),
			zap.Float64("min_size", r.cfg.MinOrderSize))
		quantity = r.cfg.MinOrderSize
	}

	r.logger.Debug("Position sized",
		zap.Float64("balance", balance),
		zap.Float64("risk_amount", riskAmount),
		zap.Float64("price", currentPrice),
		zap.Float64("quantity", quantity))

	return quantity, nil
}

func roundToDecimals(v float64, decimals int) float64 {
	pow := math.Pow10(decimals)
	return math.Round(v*pow) / pow
}

package position

import (
	"fmt"
	"strings"
	"time"

	"quorum/internal/vote"
)

// 中文说明：
// Context 是当前持仓的不可变快照，会议开始前采集一次，过期就整体替换。
// 执行前必须重新采集，避免基于陈旧状态下单。

type Context struct {
	HasPosition bool           `json:"has_position"`
	Symbol      string         `json:"symbol"`
	Direction   vote.Direction `json:"direction"`

	Size         float64 `json:"size"`
	EntryPrice   float64 `json:"entry_price"`
	CurrentPrice float64 `json:"current_price"`
	Margin       float64 `json:"margin"`
	Leverage     int     `json:"leverage"`

	UnrealizedPnL        float64 `json:"unrealized_pnl"`
	UnrealizedPnLPercent float64 `json:"unrealized_pnl_percent"`

	LiquidationPrice float64 `json:"liquidation_price"`
	TakeProfitPrice  float64 `json:"take_profit_price"`
	StopLossPrice    float64 `json:"stop_loss_price"`

	HoldingDuration time.Duration `json:"holding_duration"`
	CapturedAt      time.Time     `json:"captured_at"`
}

// Normalize 补全派生字段：保证金回算、清算价估算。
func (c Context) Normalize() Context {
	if !c.HasPosition {
		return c
	}
	if c.Leverage <= 0 {
		c.Leverage = 1
	}
	if c.Margin <= 0 && c.Size > 0 && c.EntryPrice > 0 {
		c.Margin = c.Size * c.EntryPrice / float64(c.Leverage)
	}
	if c.LiquidationPrice <= 0 {
		c.LiquidationPrice = EstimateLiquidation(c.EntryPrice, c.Leverage, c.Direction)
	}
	if c.CapturedAt.IsZero() {
		c.CapturedAt = time.Now()
	}
	return c
}

// EstimateLiquidation 在交易所未提供清算价时按“亏掉 80% 保证金”估算：
// entry × (1 ∓ 0.8/leverage)。
func EstimateLiquidation(entry float64, leverage int, dir vote.Direction) float64 {
	if entry <= 0 || leverage <= 0 {
		return 0
	}
	move := 0.8 / float64(leverage)
	if dir.Bearish() || dir == vote.DirectionShort {
		return entry * (1 + move)
	}
	return entry * (1 - move)
}

// Brief 持仓的一段提示词描述；无持仓时明示空仓。
func (c Context) Brief() string {
	if !c.HasPosition {
		if c.CurrentPrice > 0 {
			return fmt.Sprintf("No open position. Current price: %.4f", c.CurrentPrice)
		}
		return "No open position."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Open %s position on %s:\n", strings.ToUpper(string(c.Direction)), c.Symbol)
	fmt.Fprintf(&b, "- entry=%.4f current=%.4f leverage=%dx size=%.6f\n", c.EntryPrice, c.CurrentPrice, c.Leverage, c.Size)
	fmt.Fprintf(&b, "- unrealized_pnl=%.2f (%.2f%%)\n", c.UnrealizedPnL, c.UnrealizedPnLPercent)
	if c.LiquidationPrice > 0 {
		fmt.Fprintf(&b, "- liquidation=%.4f\n", c.LiquidationPrice)
	}
	if c.TakeProfitPrice > 0 || c.StopLossPrice > 0 {
		fmt.Fprintf(&b, "- tp=%.4f sl=%.4f\n", c.TakeProfitPrice, c.StopLossPrice)
	}
	if c.HoldingDuration > 0 {
		fmt.Fprintf(&b, "- holding=%s\n", c.HoldingDuration.Truncate(time.Minute))
	}
	return strings.TrimRight(b.String(), "\n")
}

package position

import (
	"testing"

	"quorum/internal/vote"

	"github.com/stretchr/testify/assert"
)

func TestEstimateLiquidation(t *testing.T) {
	// 80% 保证金亏损口径：10 倍杠杆下价格反向移动 8% 触发
	long := EstimateLiquidation(100, 10, vote.DirectionLong)
	assert.InDelta(t, 92.0, long, 1e-9)

	short := EstimateLiquidation(100, 10, vote.DirectionShort)
	assert.InDelta(t, 108.0, short, 1e-9)

	assert.Zero(t, EstimateLiquidation(0, 10, vote.DirectionLong))
	assert.Zero(t, EstimateLiquidation(100, 0, vote.DirectionLong))
}

func TestNormalizeFillsDerivedFields(t *testing.T) {
	c := Context{
		HasPosition: true,
		Symbol:      "BTCUSDT",
		Direction:   vote.DirectionLong,
		Size:        0.5,
		EntryPrice:  50000,
		Leverage:    5,
	}.Normalize()

	assert.InDelta(t, 5000, c.Margin, 1e-9)
	assert.InDelta(t, 42000, c.LiquidationPrice, 1e-6)
	assert.False(t, c.CapturedAt.IsZero())
}

func TestNormalizeNoPosition(t *testing.T) {
	c := Context{CurrentPrice: 1234}.Normalize()
	assert.False(t, c.HasPosition)
	assert.Zero(t, c.LiquidationPrice)
}

func TestBrief(t *testing.T) {
	flat := Context{CurrentPrice: 100}
	assert.Contains(t, flat.Brief(), "No open position")

	open := Context{
		HasPosition: true, Symbol: "ETHUSDT", Direction: vote.DirectionShort,
		EntryPrice: 3000, CurrentPrice: 2950, Leverage: 3, Size: 2,
		UnrealizedPnL: 100, UnrealizedPnLPercent: 5,
	}
	brief := open.Brief()
	assert.Contains(t, brief, "SHORT")
	assert.Contains(t, brief, "ETHUSDT")
}

package signal

import (
	"errors"
	"testing"

	"quorum/internal/vote"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTargetsLong(t *testing.T) {
	s := &TradingSignal{
		Direction:         vote.DirectionLong,
		EntryPrice:        100,
		Leverage:          5,
		TakeProfitPercent: 5,
		StopLossPercent:   2,
	}
	s.DeriveTargets()
	// 保证金口径：5% 止盈在 5 倍杠杆下只需 1% 的价格移动
	assert.InDelta(t, 101.0, s.TakeProfitPrice, 1e-9)
	assert.InDelta(t, 99.6, s.StopLossPrice, 1e-9)
}

func TestDeriveTargetsShort(t *testing.T) {
	s := &TradingSignal{
		Direction:         vote.DirectionShort,
		EntryPrice:        200,
		Leverage:          10,
		TakeProfitPercent: 10,
		StopLossPercent:   5,
	}
	s.DeriveTargets()
	assert.InDelta(t, 198.0, s.TakeProfitPrice, 1e-9)
	assert.InDelta(t, 201.0, s.StopLossPrice, 1e-9)
}

func TestDeriveTargetsAddDirections(t *testing.T) {
	s := &TradingSignal{
		Direction:         vote.DirectionAddLong,
		EntryPrice:        100,
		Leverage:          5,
		TakeProfitPercent: 5,
		StopLossPercent:   2,
	}
	s.DeriveTargets()
	assert.Greater(t, s.TakeProfitPrice, s.EntryPrice)
	assert.Less(t, s.StopLossPrice, s.EntryPrice)
}

func TestDeriveTargetsNoEntry(t *testing.T) {
	s := &TradingSignal{Direction: vote.DirectionLong, Leverage: 5, TakeProfitPercent: 5}
	s.DeriveTargets()
	assert.Zero(t, s.TakeProfitPrice)
	assert.Zero(t, s.StopLossPrice)
}

func TestIsActionable(t *testing.T) {
	assert.True(t, (&TradingSignal{Direction: vote.DirectionLong}).IsActionable())
	assert.True(t, (&TradingSignal{Direction: vote.DirectionClose}).IsActionable())
	assert.False(t, (&TradingSignal{Direction: vote.DirectionHold}).IsActionable())
}

func TestFallbackHold(t *testing.T) {
	s := FallbackHold("BTCUSDT", "", "manual", errors.New("phase blew up"))
	assert.Equal(t, vote.DirectionHold, s.Direction)
	assert.Equal(t, "Fallback HOLD: phase blew up", s.Reasoning)
	assert.NotEmpty(t, s.MeetingID)
	assert.Equal(t, "BTCUSDT", s.Symbol)
}

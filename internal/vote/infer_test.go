package vote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferVoteDominantBullish(t *testing.T) {
	v := InferVote("Momentum is bullish, clean breakout above resistance, uptrend intact")
	assert.Equal(t, DirectionLong, v.Direction)
	// bull=4 bear=0 → min(85, 50+5*4)
	assert.Equal(t, 70, v.Confidence)
}

func TestInferVoteDominantBearishChinese(t *testing.T) {
	v := InferVote("跌破关键支撑，趋势转弱，建议做空，注意暴跌风险")
	assert.Equal(t, DirectionShort, v.Direction)
	assert.GreaterOrEqual(t, v.Confidence, 50)
	assert.LessOrEqual(t, v.Confidence, 85)
}

func TestInferVoteSlightEdge(t *testing.T) {
	// bull=1 (long) bear=0，不满足 2 倍且 ≥2 的强信号条件
	v := InferVote("lean long here")
	assert.Equal(t, DirectionLong, v.Direction)
	assert.Equal(t, 48, v.Confidence)
}

func TestInferVoteNeutralDominates(t *testing.T) {
	v := InferVote("市场震荡为主，建议观望，等待方向明确")
	assert.Equal(t, DirectionHold, v.Direction)
	assert.Equal(t, 50, v.Confidence)
}

func TestInferVoteTie(t *testing.T) {
	v := InferVote("could go long or short from here")
	assert.Equal(t, DirectionHold, v.Direction)
	assert.Equal(t, 40, v.Confidence)
}

func TestInferVoteEmpty(t *testing.T) {
	v := InferVote("   ")
	assert.Equal(t, DirectionHold, v.Direction)
	assert.Equal(t, 30, v.Confidence)
}

func TestInferVoteExtractsNumbers(t *testing.T) {
	v := InferVote("strongly bullish breakout, use 10x leverage, take profit 8%, stop loss 3%")
	assert.Equal(t, DirectionLong, v.Direction)
	assert.Equal(t, 10, v.Leverage)
	assert.InDelta(t, 8, v.TakeProfitPercent, 1e-9)
	assert.InDelta(t, 3, v.StopLossPercent, 1e-9)
}

func TestInferVoteNumberDefaults(t *testing.T) {
	v := InferVote("看多，突破放量上涨")
	assert.Equal(t, DefaultLeverage, v.Leverage)
	assert.InDelta(t, DefaultTakeProfitPct, v.TakeProfitPercent, 1e-9)
	assert.InDelta(t, DefaultStopLossPct, v.StopLossPercent, 1e-9)
}

func TestInferVoteLeverageClamp(t *testing.T) {
	v := InferVote("bullish breakout with 500x leverage")
	assert.Equal(t, MaxLeverage, v.Leverage)
}

package executor

import (
	"quorum/internal/logger"
	"quorum/internal/position"
	"quorum/internal/vote"
)

// 止损价相对估算清算价要留出 5% 的安全边际，
// 否则止损单还没成交仓位就先被清算。
const liquidationBuffer = 0.05

// SafeStopLoss 把止损价夹回清算价的安全侧。sl 为 0 表示不挂止损，原样放行。
// liq 优先用交易所给的清算价，没有（0）才按 80% 保证金估算。
func SafeStopLoss(dir vote.Direction, entry, sl, liq float64, leverage int) float64 {
	if sl <= 0 || entry <= 0 || leverage <= 0 {
		return sl
	}
	if liq <= 0 {
		liq = position.EstimateLiquidation(entry, leverage, dir)
	}
	if liq <= 0 {
		return sl
	}
	if dir.Bullish() {
		minSafe := liq * (1 + liquidationBuffer)
		if sl < minSafe {
			logger.Warnf("stop loss %.4f beyond liquidation %.4f, clamped to %.4f", sl, liq, minSafe)
			return minSafe
		}
		return sl
	}
	maxSafe := liq * (1 - liquidationBuffer)
	if sl > maxSafe {
		logger.Warnf("stop loss %.4f beyond liquidation %.4f, clamped to %.4f", sl, liq, maxSafe)
		return maxSafe
	}
	return sl
}

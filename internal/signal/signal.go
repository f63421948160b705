package signal

import (
	"strings"
	"time"

	"quorum/internal/vote"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// 中文说明：
// TradingSignal 是一次会议的最终产物。止盈止损是保证金百分比口径：
// 名义价格需要移动 percent/leverage 才触发，因此换算价格时先除以杠杆。

type TradingSignal struct {
	MeetingID string         `json:"meeting_id"`
	Symbol    string         `json:"symbol"`
	Direction vote.Direction `json:"direction"`

	Leverage      int     `json:"leverage"`
	AmountPercent float64 `json:"amount_percent"`
	EntryPrice    float64 `json:"entry_price"`

	TakeProfitPercent float64 `json:"take_profit_percent"`
	StopLossPercent   float64 `json:"stop_loss_percent"`
	TakeProfitPrice   float64 `json:"take_profit_price"`
	StopLossPrice     float64 `json:"stop_loss_price"`

	Confidence        int     `json:"confidence"`
	ConsensusStrength float64 `json:"consensus_strength"`
	Reasoning         string  `json:"reasoning"`

	AgentsConsensus map[string]vote.Direction `json:"agents_consensus"`
	Votes           []vote.AgentVote          `json:"votes"`

	TriggerReason string    `json:"trigger_reason"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewMeetingID() string {
	return uuid.NewString()
}

// DeriveTargets 由入场价、杠杆与保证金百分比确定性地推导止盈止损价。
// entry_price 或 leverage 缺失时不做任何事。
func (s *TradingSignal) DeriveTargets() {
	if s.EntryPrice <= 0 || s.Leverage <= 0 {
		return
	}
	s.TakeProfitPrice = TargetPrice(s.Direction, s.EntryPrice, s.TakeProfitPercent, s.Leverage, false)
	s.StopLossPrice = TargetPrice(s.Direction, s.EntryPrice, s.StopLossPercent, s.Leverage, true)
}

// TargetPrice 计算保证金口径的目标价。
// 多头止盈在上方、止损在下方；空头相反。
func TargetPrice(dir vote.Direction, entry, marginPct float64, leverage int, isStop bool) float64 {
	if entry <= 0 || leverage <= 0 || marginPct <= 0 {
		return 0
	}
	move := decimal.NewFromFloat(marginPct).
		Div(decimal.NewFromInt(int64(leverage))).
		Div(decimal.NewFromInt(100))

	up := dir.Bullish()
	if isStop {
		up = !up
	}
	one := decimal.NewFromInt(1)
	factor := one.Add(move)
	if !up {
		factor = one.Sub(move)
	}
	price, _ := decimal.NewFromFloat(entry).Mul(factor).Float64()
	return price
}

// IsActionable 报告该信号是否需要触发交易动作。
func (s *TradingSignal) IsActionable() bool {
	switch s.Direction {
	case vote.DirectionLong, vote.DirectionShort, vote.DirectionClose,
		vote.DirectionAddLong, vote.DirectionAddShort:
		return true
	default:
		return false
	}
}

// FallbackHold 构造兜底 HOLD 信号，会议编排出现不可恢复错误时使用。
func FallbackHold(symbol, meetingID, triggerReason string, err error) *TradingSignal {
	reason := "Fallback HOLD"
	if err != nil {
		reason = "Fallback HOLD: " + strings.TrimSpace(err.Error())
	}
	if meetingID == "" {
		meetingID = NewMeetingID()
	}
	return &TradingSignal{
		MeetingID:     meetingID,
		Symbol:        symbol,
		Direction:     vote.DirectionHold,
		Confidence:    0,
		Reasoning:     reason,
		TriggerReason: triggerReason,
		Timestamp:     time.Now(),
	}
}

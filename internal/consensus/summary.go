package consensus

import (
	"fmt"
	"sort"
	"strings"

	"quorum/internal/vote"
)

// 中文说明：
// Summary 是一组专家投票的只读聚合视图，按需重算、不落盘。
// 共识规则（按序评估）：
//  1. 多头票多于空头且 ≥2 → LONG
//  2. 空头票多于多头且 ≥2 → SHORT
//  3. 平仓票 ≥2 → CLOSE
//  4. 其余 → HOLD（分歧永不产生方向信号）

type Summary struct {
	Total      int
	LongCount  int
	ShortCount int
	HoldCount  int
	CloseCount int

	Direction vote.Direction
	Strength  float64

	AvgConfidence    float64
	AvgLeverage      float64
	AvgTakeProfitPct float64
	AvgStopLossPct   float64

	PerAgent map[string]vote.Direction
}

// Summarize 聚合投票。结果与输入顺序无关。
func Summarize(votes []vote.AgentVote) Summary {
	s := Summary{
		Total:    len(votes),
		PerAgent: make(map[string]vote.Direction, len(votes)),
	}
	if s.Total == 0 {
		s.Direction = vote.DirectionHold
		return s
	}

	var sumConf, sumLev, sumTP, sumSL float64
	for _, av := range votes {
		d := av.Vote.Direction
		switch {
		case d.Bullish():
			s.LongCount++
		case d.Bearish():
			s.ShortCount++
		case d == vote.DirectionClose:
			s.CloseCount++
		default:
			s.HoldCount++
		}
		sumConf += float64(av.Vote.Confidence)
		sumLev += float64(av.Vote.Leverage)
		sumTP += av.Vote.TakeProfitPercent
		sumSL += av.Vote.StopLossPercent
		s.PerAgent[av.AgentID] = d
	}

	n := float64(s.Total)
	s.AvgConfidence = sumConf / n
	s.AvgLeverage = sumLev / n
	s.AvgTakeProfitPct = sumTP / n
	s.AvgStopLossPct = sumSL / n

	switch {
	case s.LongCount > s.ShortCount && s.LongCount >= 2:
		s.Direction = vote.DirectionLong
	case s.ShortCount > s.LongCount && s.ShortCount >= 2:
		s.Direction = vote.DirectionShort
	case s.CloseCount >= 2:
		s.Direction = vote.DirectionClose
	default:
		s.Direction = vote.DirectionHold
	}

	top := s.LongCount
	if s.ShortCount > top {
		top = s.ShortCount
	}
	if s.HoldCount > top {
		top = s.HoldCount
	}
	s.Strength = float64(top) / n

	return s
}

// Describe 给领袖提示词用的一行统计。
func (s Summary) Describe() string {
	if s.Total == 0 {
		return "no votes collected"
	}
	parts := []string{
		fmt.Sprintf("votes=%d", s.Total),
		fmt.Sprintf("long=%d short=%d hold=%d close=%d", s.LongCount, s.ShortCount, s.HoldCount, s.CloseCount),
		fmt.Sprintf("consensus=%s strength=%.2f", s.Direction, s.Strength),
		fmt.Sprintf("avg_confidence=%.0f avg_leverage=%.1f", s.AvgConfidence, s.AvgLeverage),
	}
	return strings.Join(parts, " | ")
}

// AgentLines 按 agent_id 排序输出每个专家的立场，用于通知与领袖提示词。
func (s Summary) AgentLines() []string {
	ids := make([]string, 0, len(s.PerAgent))
	for id := range s.PerAgent {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, fmt.Sprintf("%s: %s", id, s.PerAgent[id]))
	}
	return lines
}

package meeting

import (
	"context"
	"fmt"
	"math"
	"time"

	"quorum/internal/agent"
	"quorum/internal/consensus"
	"quorum/internal/logger"
	"quorum/internal/position"
	"quorum/internal/signal"
	"quorum/internal/vote"
)

// MarketFn 采集行情摘要，供提示词引用。失败只记日志，会议照常进行。
type MarketFn func(ctx context.Context, symbol string) (string, error)

// Runner 主持一次完整会议：分析 → 投票 → 风险 → 共识。
// 任何阶段出错都不会让 Run 返回 nil，最坏情况得到兜底 HOLD。
type Runner struct {
	Symbol   string
	Analysts []agent.Agent
	Risk     agent.Agent
	Leader   agent.Agent
	Parser   *vote.Parser

	AmountPercent float64
	Parallelism   int
	MinVotes      int

	MarketFn MarketFn
}

func (r *Runner) Run(ctx context.Context, pos position.Context, triggerReason string) (sig *signal.TradingSignal) {
	meetingID := signal.NewMeetingID()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Errorf("meeting %s panicked: %v", meetingID, rec)
			sig = signal.FallbackHold(r.Symbol, meetingID, triggerReason, fmt.Errorf("meeting panic: %v", rec))
		}
	}()

	pc := NewPhaseContext(meetingID, r.Symbol, triggerReason, pos.Normalize())
	logger.Infof("meeting %s started symbol=%s trigger=%q analysts=%d", meetingID, r.Symbol, triggerReason, len(r.Analysts))

	if r.MarketFn != nil {
		brief, err := r.MarketFn(ctx, r.Symbol)
		if err != nil {
			logger.Warnf("meeting %s: market brief unavailable: %v", meetingID, err)
		} else {
			pc.MarketBrief = brief
		}
	}

	phases := []Phase{
		&AnalysisPhase{Analysts: r.Analysts, Parallelism: r.Parallelism},
		&SignalPhase{Analysts: r.Analysts, Parser: r.Parser, MinVotes: r.MinVotes},
		&RiskPhase{Assessor: r.Risk},
		&ConsensusPhase{Leader: r.Leader},
	}
	// 阶段失败不中断会议：带着残缺上下文继续走完，
	// 票数不足时共识规则自然落到 HOLD。兜底信号只留给 panic。
	for _, p := range phases {
		res := p.Run(ctx, pc)
		logger.Infof("meeting %s: %s", meetingID, res)
	}

	return r.assemble(pc)
}

func (r *Runner) assemble(pc *PhaseContext) *signal.TradingSignal {
	summary := consensus.Summarize(pc.Votes)

	reasoning := pc.LeaderSummary
	if reasoning == "" {
		reasoning = summary.Describe()
	}

	sig := &signal.TradingSignal{
		MeetingID: pc.MeetingID,
		Symbol:    pc.Symbol,
		Direction: summary.Direction,

		Leverage:      vote.ClampLeverage(int(math.Round(summary.AvgLeverage))),
		AmountPercent: r.AmountPercent,
		EntryPrice:    pc.Position.CurrentPrice,

		TakeProfitPercent: summary.AvgTakeProfitPct,
		StopLossPercent:   summary.AvgStopLossPct,

		Confidence:        vote.ClampConfidence(int(math.Round(summary.AvgConfidence))),
		ConsensusStrength: summary.Strength,
		Reasoning:         reasoning,

		AgentsConsensus: summary.PerAgent,
		Votes:           pc.Votes,

		TriggerReason: pc.TriggerReason,
		Timestamp:     time.Now(),
	}
	sig.DeriveTargets()

	logger.Infof("meeting %s concluded direction=%s confidence=%d strength=%.2f leverage=%dx elapsed=%s",
		pc.MeetingID, sig.Direction, sig.Confidence, sig.ConsensusStrength, sig.Leverage,
		time.Since(pc.StartedAt).Truncate(time.Millisecond))
	return sig
}

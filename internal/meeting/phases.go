package meeting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"quorum/internal/agent"
	"quorum/internal/consensus"
	"quorum/internal/logger"
	"quorum/internal/vote"

	"golang.org/x/sync/errgroup"
)

// 中文说明：
// 四个阶段严格串行执行；单个专家失败只影响它自己的那一份结果。
// 专家之间的评估顺序不影响聚合（投票满足交换律），因此分析阶段
// 允许并发，上限由 Parallelism 控制。

const defaultMinVotes = 2

func promptInput(pc *PhaseContext) agent.PromptInput {
	return agent.PromptInput{
		Symbol:        pc.Symbol,
		TriggerReason: pc.TriggerReason,
		PositionBrief: pc.Position.Brief(),
		MarketBrief:   pc.MarketBrief,
		HasPosition:   pc.Position.HasPosition,
	}
}

// AnalysisPhase 让每位分析师给出自由文本行情判断。
type AnalysisPhase struct {
	Analysts    []agent.Agent
	Parallelism int
}

func (p *AnalysisPhase) Name() string { return "analysis" }

func (p *AnalysisPhase) Run(ctx context.Context, pc *PhaseContext) PhaseResult {
	start := time.Now()
	if len(p.Analysts) == 0 {
		return PhaseResult{Phase: p.Name(), Success: true, Duration: time.Since(start), Note: "no analysts"}
	}
	limit := p.Parallelism
	if limit <= 0 {
		limit = 1
	}

	input := agent.BuildAnalysisPrompt(promptInput(pc))
	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for _, a := range p.Analysts {
		a := a
		eg.Go(func() error {
			out, err := a.Analyze(egCtx, input)
			if err != nil {
				logger.Warnf("meeting %s: analysis by %s failed: %v", pc.MeetingID, a.ID(), err)
				return nil
			}
			mu.Lock()
			pc.AnalysisResults[a.ID()] = out
			pc.AddMessage("analyst", a.ID(), out)
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	return PhaseResult{
		Phase:    p.Name(),
		Success:  true,
		Duration: time.Since(start),
		Note:     fmt.Sprintf("results=%d/%d", len(pc.AnalysisResults), len(p.Analysts)),
	}
}

// SignalPhase 重新唤起分析师投出结构化一票；解析永不失败，
// 但调用失败的专家被直接排除。少于 MinVotes 票则阶段失败。
type SignalPhase struct {
	Analysts []agent.Agent
	Parser   *vote.Parser
	MinVotes int
}

func (p *SignalPhase) Name() string { return "signal" }

func (p *SignalPhase) Run(ctx context.Context, pc *PhaseContext) PhaseResult {
	start := time.Now()
	minVotes := p.MinVotes
	if minVotes <= 0 {
		minVotes = defaultMinVotes
	}

	input := agent.BuildVotePrompt(promptInput(pc), pc.AnalysisDigest())
	for _, a := range p.Analysts {
		out, err := a.Analyze(ctx, input)
		if err != nil {
			logger.Warnf("meeting %s: vote by %s failed: %v", pc.MeetingID, a.ID(), err)
			continue
		}
		res := p.Parser.Parse(out)
		pc.Votes = append(pc.Votes, vote.AgentVote{
			AgentID:     a.ID(),
			AgentName:   a.Name(),
			Vote:        res.Vote,
			RawResponse: out,
			ParseMethod: res.Method,
			Timestamp:   time.Now(),
		})
		pc.AddMessage("vote", a.ID(), out)
	}

	got := len(pc.Votes)
	result := PhaseResult{
		Phase:    p.Name(),
		Duration: time.Since(start),
		Note:     fmt.Sprintf("votes=%d/%d", got, len(p.Analysts)),
	}
	if got < minVotes {
		result.Err = fmt.Errorf("only %d votes collected, need %d", got, minVotes)
		return result
	}
	result.Success = true
	return result
}

// RiskPhase 单个风险评估员；非关键，失败也不阻断决策。
type RiskPhase struct {
	Assessor agent.Agent
}

func (p *RiskPhase) Name() string { return "risk" }

func (p *RiskPhase) Run(ctx context.Context, pc *PhaseContext) PhaseResult {
	start := time.Now()
	if p.Assessor == nil {
		return PhaseResult{Phase: p.Name(), Success: true, Skipped: true, Duration: time.Since(start)}
	}
	digest := consensus.Summarize(pc.Votes).Describe()
	input := agent.BuildRiskPrompt(promptInput(pc), pc.AnalysisDigest(), digest)
	out, err := p.Assessor.Analyze(ctx, input)
	if err != nil {
		logger.Warnf("meeting %s: risk assessment failed: %v", pc.MeetingID, err)
		return PhaseResult{Phase: p.Name(), Success: true, Skipped: true, Err: err, Duration: time.Since(start)}
	}
	pc.RiskAssessment = out
	pc.AddMessage("risk", p.Assessor.ID(), out)
	return PhaseResult{Phase: p.Name(), Success: true, Duration: time.Since(start)}
}

// ConsensusPhase 领袖综述。失败只丢失叙事，数值共识照常推进。
type ConsensusPhase struct {
	Leader agent.Agent
}

func (p *ConsensusPhase) Name() string { return "consensus" }

func (p *ConsensusPhase) Run(ctx context.Context, pc *PhaseContext) PhaseResult {
	start := time.Now()
	if p.Leader == nil {
		return PhaseResult{Phase: p.Name(), Duration: time.Since(start), Err: fmt.Errorf("no leader configured")}
	}
	summary := consensus.Summarize(pc.Votes)
	digest := summary.Describe()
	for _, line := range summary.AgentLines() {
		digest += "\n" + line
	}
	input := agent.BuildLeaderPrompt(promptInput(pc), pc.AnalysisDigest(), digest, pc.RiskAssessment)
	out, err := p.Leader.Analyze(ctx, input)
	if err != nil {
		logger.Warnf("meeting %s: leader synthesis failed: %v", pc.MeetingID, err)
		return PhaseResult{Phase: p.Name(), Err: err, Duration: time.Since(start)}
	}
	pc.LeaderSummary = out
	pc.AddMessage("leader", p.Leader.ID(), out)
	return PhaseResult{Phase: p.Name(), Success: true, Duration: time.Since(start)}
}

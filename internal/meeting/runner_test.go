package meeting

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"quorum/internal/agent"
	"quorum/internal/position"
	"quorum/internal/vote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAgent 按调用次数依次返回脚本化输出；第一次调用对应分析阶段，
// 第二次对应投票阶段。
type stubAgent struct {
	id      string
	outputs []string
	err     error
	calls   int
}

func (s *stubAgent) ID() string   { return s.id }
func (s *stubAgent) Name() string { return s.id }

func (s *stubAgent) Analyze(_ context.Context, _ agent.Input) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	i := s.calls
	s.calls++
	if i >= len(s.outputs) {
		i = len(s.outputs) - 1
	}
	return s.outputs[i], nil
}

func voteJSON(dir string, conf, lev int) string {
	return `{"direction":"` + dir + `","confidence":` + strconv.Itoa(conf) + `,"leverage":` + strconv.Itoa(lev) +
		`,"take_profit_percent":5,"stop_loss_percent":2,"reasoning":"stub"}`
}

func newRunner(analysts []agent.Agent, risk, leader agent.Agent) *Runner {
	return &Runner{
		Symbol:        "BTCUSDT",
		Analysts:      analysts,
		Risk:          risk,
		Leader:        leader,
		Parser:        vote.NewParser(),
		AmountPercent: 10,
	}
}

func TestRunMajorityLong(t *testing.T) {
	analysts := []agent.Agent{
		&stubAgent{id: "a1", outputs: []string{"trend up", voteJSON("long", 80, 5)}},
		&stubAgent{id: "a2", outputs: []string{"momentum strong", voteJSON("long", 60, 3)}},
		&stubAgent{id: "a3", outputs: []string{"not convinced", voteJSON("hold", 50, 3)}},
	}
	leader := &stubAgent{id: "lead", outputs: []string{"committee leans long"}}
	r := newRunner(analysts, &stubAgent{id: "risk", outputs: []string{"leverage acceptable"}}, leader)

	pos := position.Context{CurrentPrice: 100}
	sig := r.Run(context.Background(), pos, "manual")
	require.NotNil(t, sig)

	assert.Equal(t, vote.DirectionLong, sig.Direction)
	assert.Equal(t, "BTCUSDT", sig.Symbol)
	assert.NotEmpty(t, sig.MeetingID)
	assert.Equal(t, 63, sig.Confidence)                  // (80+60+50)/3 四舍五入
	assert.InDelta(t, 2.0/3.0, sig.ConsensusStrength, 1e-9)
	assert.Equal(t, 4, sig.Leverage) // (5+3+3)/3 ≈ 3.67 → 4
	assert.Equal(t, 100.0, sig.EntryPrice)
	assert.Greater(t, sig.TakeProfitPrice, sig.EntryPrice)
	assert.Less(t, sig.StopLossPrice, sig.EntryPrice)
	assert.Equal(t, "committee leans long", sig.Reasoning)
	assert.Len(t, sig.Votes, 3)
	assert.Equal(t, vote.DirectionLong, sig.AgentsConsensus["a1"])
}

func TestRunTooFewVotesProceedsWithPartialContext(t *testing.T) {
	analysts := []agent.Agent{
		&stubAgent{id: "a1", outputs: []string{"up", voteJSON("long", 70, 3)}},
		&stubAgent{id: "a2", err: errors.New("provider down")},
		&stubAgent{id: "a3", err: errors.New("provider down")},
	}
	leader := &stubAgent{id: "lead", outputs: []string{"one voice is not a committee"}}
	r := newRunner(analysts, nil, leader)

	sig := r.Run(context.Background(), position.Context{CurrentPrice: 50}, "scheduled")
	require.NotNil(t, sig)

	// 信号阶段失败也不放弃会议：单票永不成方向，落为 HOLD，
	// 但收集到的投票与领袖叙事都要带出来。
	assert.Equal(t, vote.DirectionHold, sig.Direction)
	assert.Len(t, sig.Votes, 1)
	assert.Equal(t, 70, sig.Confidence)
	assert.Equal(t, "one voice is not a committee", sig.Reasoning)
	assert.NotContains(t, sig.Reasoning, "Fallback HOLD")
	assert.Equal(t, vote.DirectionLong, sig.AgentsConsensus["a1"])
}

func TestRunLeaderFailureKeepsConsensus(t *testing.T) {
	analysts := []agent.Agent{
		&stubAgent{id: "a1", outputs: []string{"down", voteJSON("short", 70, 4)}},
		&stubAgent{id: "a2", outputs: []string{"down too", voteJSON("short", 60, 4)}},
	}
	r := newRunner(analysts, nil, &stubAgent{id: "lead", err: errors.New("timeout")})

	sig := r.Run(context.Background(), position.Context{CurrentPrice: 200}, "")
	require.NotNil(t, sig)
	assert.Equal(t, vote.DirectionShort, sig.Direction)
	// 领袖失败时退回统计描述。
	assert.True(t, strings.Contains(sig.Reasoning, "consensus=short"), sig.Reasoning)
}

func TestRunRiskFailureNonBlocking(t *testing.T) {
	analysts := []agent.Agent{
		&stubAgent{id: "a1", outputs: []string{"up", voteJSON("long", 70, 3)}},
		&stubAgent{id: "a2", outputs: []string{"up", voteJSON("long", 70, 3)}},
	}
	r := newRunner(analysts, &stubAgent{id: "risk", err: errors.New("breaker open")},
		&stubAgent{id: "lead", outputs: []string{"go long"}})

	sig := r.Run(context.Background(), position.Context{CurrentPrice: 100}, "")
	require.NotNil(t, sig)
	assert.Equal(t, vote.DirectionLong, sig.Direction)
}

func TestRunUnparseableVotesStillCount(t *testing.T) {
	// 解析永不失败：乱码投票落为 HOLD 票而不是被丢弃。
	analysts := []agent.Agent{
		&stubAgent{id: "a1", outputs: []string{"up", "complete nonsense %%%"}},
		&stubAgent{id: "a2", outputs: []string{"up", "more nonsense"}},
	}
	r := newRunner(analysts, nil, nil)

	sig := r.Run(context.Background(), position.Context{CurrentPrice: 100}, "")
	require.NotNil(t, sig)
	assert.Equal(t, vote.DirectionHold, sig.Direction)
	assert.Len(t, sig.Votes, 2)
	for _, av := range sig.Votes {
		assert.Equal(t, vote.MethodTextInference, av.ParseMethod)
		assert.Equal(t, vote.DirectionHold, av.Vote.Direction)
	}
}

func TestSignalPhaseMinVotes(t *testing.T) {
	p := &SignalPhase{
		Analysts: []agent.Agent{&stubAgent{id: "a1", outputs: []string{voteJSON("long", 70, 3)}}},
		Parser:   vote.NewParser(),
	}
	pc := NewPhaseContext("m1", "BTCUSDT", "", position.Context{})
	res := p.Run(context.Background(), pc)
	assert.False(t, res.Success)
	assert.Error(t, res.Err)
	assert.Len(t, pc.Votes, 1)
}

func TestAnalysisPhaseCollectsParallel(t *testing.T) {
	analysts := []agent.Agent{
		&stubAgent{id: "a1", outputs: []string{"one"}},
		&stubAgent{id: "a2", outputs: []string{"two"}},
		&stubAgent{id: "a3", err: errors.New("down")},
	}
	p := &AnalysisPhase{Analysts: analysts, Parallelism: 3}
	pc := NewPhaseContext("m1", "BTCUSDT", "", position.Context{})
	res := p.Run(context.Background(), pc)
	assert.True(t, res.Success)
	assert.Len(t, pc.AnalysisResults, 2)
	assert.Equal(t, "one", pc.AnalysisResults["a1"])
}

package meeting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"quorum/internal/position"
	"quorum/internal/vote"
)

// 中文说明：
// PhaseContext 是贯穿一次会议四个阶段的唯一可变对象，
// 由单个 Runner 独占，会议结束即丢弃，不跨会议共享。

type PhaseContext struct {
	MeetingID     string
	Symbol        string
	TriggerReason string
	Position      position.Context
	MarketBrief   string

	AnalysisResults map[string]string
	Votes           []vote.AgentVote
	RiskAssessment  string
	LeaderSummary   string

	Messages []Message

	StartedAt time.Time
}

type Message struct {
	Role    string
	AgentID string
	Content string
	At      time.Time
}

func NewPhaseContext(meetingID, symbol, triggerReason string, pos position.Context) *PhaseContext {
	return &PhaseContext{
		MeetingID:       meetingID,
		Symbol:          symbol,
		TriggerReason:   triggerReason,
		Position:        pos,
		AnalysisResults: make(map[string]string),
		StartedAt:       time.Now(),
	}
}

func (pc *PhaseContext) AddMessage(role, agentID, content string) {
	pc.Messages = append(pc.Messages, Message{
		Role:    role,
		AgentID: agentID,
		Content: content,
		At:      time.Now(),
	})
}

// AnalysisDigest 按 agent id 排序拼接分析结论，供后续阶段引用。
func (pc *PhaseContext) AnalysisDigest() string {
	if len(pc.AnalysisResults) == 0 {
		return ""
	}
	ids := make([]string, 0, len(pc.AnalysisResults))
	for id := range pc.AnalysisResults {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "### %s\n%s\n\n", id, pc.AnalysisResults[id])
	}
	return strings.TrimSpace(b.String())
}

// PhaseResult 单个阶段的执行结果。
type PhaseResult struct {
	Phase    string
	Success  bool
	Skipped  bool
	Err      error
	Duration time.Duration
	Note     string
}

func (r PhaseResult) String() string {
	status := "ok"
	switch {
	case r.Skipped:
		status = "skipped"
	case !r.Success:
		status = "failed"
	}
	s := fmt.Sprintf("phase=%s status=%s duration=%s", r.Phase, status, r.Duration.Truncate(time.Millisecond))
	if r.Note != "" {
		s += " note=" + r.Note
	}
	if r.Err != nil {
		s += " err=" + r.Err.Error()
	}
	return s
}

// Phase 会议阶段。错误通过 PhaseResult 返回，不向上抛。
type Phase interface {
	Name() string
	Run(ctx context.Context, pc *PhaseContext) PhaseResult
}

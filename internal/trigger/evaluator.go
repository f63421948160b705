package trigger

import (
	"context"
	"fmt"
	"strings"

	"quorum/internal/agent"
	"quorum/internal/logger"
	"quorum/internal/market"
)

// 中文说明：
// Evaluator 决定一次例行检查是否升级成会议。硬条件（涨跌幅、RSI
// 极值）命中即触发；都未命中且配置了守门员时，再让模型投一次
// 咨询票。行情采集失败一律不触发，宁可错过不可误开。

const (
	DefaultChangeThresholdPct = 3.0
	DefaultRSIOversold        = 25.0
	DefaultRSIOverbought      = 75.0
)

type Evaluator struct {
	Source market.Source

	ChangeThresholdPct float64
	RSIOversold        float64
	RSIOverbought      float64

	// Gatekeeper 可选。硬条件未命中时咨询它；出错按不触发处理。
	Gatekeeper agent.Agent
}

type Decision struct {
	Trigger  bool
	Reason   string
	Snapshot market.Snapshot
}

func (e *Evaluator) Evaluate(ctx context.Context, symbol string) (Decision, error) {
	snap, err := e.Source.Snapshot(ctx, symbol)
	if err != nil {
		return Decision{}, fmt.Errorf("snapshot %s: %w", symbol, err)
	}

	changeThreshold := e.ChangeThresholdPct
	if changeThreshold <= 0 {
		changeThreshold = DefaultChangeThresholdPct
	}
	oversold := e.RSIOversold
	if oversold <= 0 {
		oversold = DefaultRSIOversold
	}
	overbought := e.RSIOverbought
	if overbought <= 0 {
		overbought = DefaultRSIOverbought
	}

	d := Decision{Snapshot: snap}
	switch {
	case snap.Change24hPct >= changeThreshold || snap.Change24hPct <= -changeThreshold:
		d.Trigger = true
		d.Reason = fmt.Sprintf("24h change %.2f%% beyond ±%.1f%%", snap.Change24hPct, changeThreshold)
	case snap.RSI14 > 0 && snap.RSI14 <= oversold:
		d.Trigger = true
		d.Reason = fmt.Sprintf("RSI %.1f oversold (<=%.0f)", snap.RSI14, oversold)
	case snap.RSI14 >= overbought:
		d.Trigger = true
		d.Reason = fmt.Sprintf("RSI %.1f overbought (>=%.0f)", snap.RSI14, overbought)
	}
	if d.Trigger || e.Gatekeeper == nil {
		return d, nil
	}

	return e.consultGatekeeper(ctx, symbol, snap), nil
}

const gatekeeperSystemPrompt = `You are the gatekeeper of a trading committee.
Decide whether current conditions warrant convening a full meeting.
First line of your reply must be exactly YES or NO. Optionally add one short reason line.`

func (e *Evaluator) consultGatekeeper(ctx context.Context, symbol string, snap market.Snapshot) Decision {
	d := Decision{Snapshot: snap}
	out, err := e.Gatekeeper.Analyze(ctx, agent.Input{
		System: gatekeeperSystemPrompt,
		User:   fmt.Sprintf("# Should we convene on %s?\n\n%s\n", symbol, snap.Brief()),
	})
	if err != nil {
		logger.Warnf("gatekeeper consult failed for %s: %v", symbol, err)
		return d
	}
	verdict, reason := parseGatekeeperReply(out)
	if verdict {
		d.Trigger = true
		d.Reason = "gatekeeper: " + reason
	}
	return d
}

func parseGatekeeperReply(out string) (bool, string) {
	lines := strings.SplitN(strings.TrimSpace(out), "\n", 2)
	verdict := strings.ToUpper(strings.TrimSpace(lines[0]))
	reason := "conditions warrant a meeting"
	if len(lines) > 1 {
		if r := strings.TrimSpace(lines[1]); r != "" {
			reason = r
		}
	}
	return strings.HasPrefix(verdict, "YES"), reason
}

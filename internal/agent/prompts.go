package agent

import (
	"fmt"
	"strings"
)

// 中文说明：
// 会议各阶段的提示词构造。分析阶段的提示词是立场中性的：
// 已有持仓时明确警告专家不要为持仓找理由（确认偏误）。

const analystSystemPrompt = `You are an independent derivatives analyst on a trading committee.
Give your honest market read. You are not responsible for execution.
Answer concisely in plain text.`

const voteSystemPrompt = `You are casting your formal vote for the trading committee.
Reply with a single JSON object and nothing else:
{"direction": "long|short|hold|close|add_long|add_short",
 "confidence": 0-100,
 "leverage": 1-125,
 "take_profit_percent": number,
 "stop_loss_percent": number,
 "reasoning": "one or two sentences"}`

const riskSystemPrompt = `You are the risk assessor of a trading committee.
Point out liquidation distance, leverage sanity, position concentration and
anything that should cap size. Plain text, short.`

const leaderSystemPrompt = `You are the committee leader. Synthesize the analysts' views,
the vote tally and the risk note into a short narrative that guides execution.
Do not invent numbers that are not in the input.`

type PromptInput struct {
	Symbol        string
	TriggerReason string
	PositionBrief string
	MarketBrief   string
	HasPosition   bool
}

func BuildAnalysisPrompt(in PromptInput) Input {
	var b strings.Builder
	fmt.Fprintf(&b, "# Market Review: %s\n\n", in.Symbol)
	if in.TriggerReason != "" {
		fmt.Fprintf(&b, "Trigger reason: %s\n\n", in.TriggerReason)
	}
	if in.MarketBrief != "" {
		b.WriteString("## Market snapshot\n")
		b.WriteString(in.MarketBrief)
		b.WriteString("\n\n")
	}
	b.WriteString("## Position\n")
	b.WriteString(in.PositionBrief)
	b.WriteString("\n\n")
	if in.HasPosition {
		b.WriteString("注意：当前已有持仓。请独立判断行情本身，不要因为已有仓位而倾向维持原方向；" +
			"如果证据支持反向，请直说。\n")
	}
	b.WriteString("请给出你的行情判断：趋势、动能、关键价位，以及当前最大的不确定性。\n")
	return Input{System: analystSystemPrompt, User: b.String()}
}

func BuildVotePrompt(in PromptInput, analysisDigest string) Input {
	var b strings.Builder
	fmt.Fprintf(&b, "# Vote Request: %s\n\n", in.Symbol)
	b.WriteString("## Position\n")
	b.WriteString(in.PositionBrief)
	b.WriteString("\n\n")
	if analysisDigest != "" {
		b.WriteString("## Committee analysis so far\n")
		b.WriteString(analysisDigest)
		b.WriteString("\n\n")
	}
	b.WriteString("现在投出你的正式一票。只输出一个 JSON 对象，不要任何额外文字。\n")
	return Input{System: voteSystemPrompt, User: b.String()}
}

func BuildRiskPrompt(in PromptInput, analysisDigest, voteDigest string) Input {
	var b strings.Builder
	fmt.Fprintf(&b, "# Risk Review: %s\n\n", in.Symbol)
	b.WriteString("## Position\n")
	b.WriteString(in.PositionBrief)
	b.WriteString("\n\n")
	if voteDigest != "" {
		b.WriteString("## Current votes\n")
		b.WriteString(voteDigest)
		b.WriteString("\n\n")
	}
	if analysisDigest != "" {
		b.WriteString("## Analysis notes\n")
		b.WriteString(analysisDigest)
		b.WriteString("\n\n")
	}
	b.WriteString("请评估本次决策的主要风险点，并明确说明是否需要降杠杆或缩仓。\n")
	return Input{System: riskSystemPrompt, User: b.String()}
}

func BuildLeaderPrompt(in PromptInput, analysisDigest, voteDigest, riskNote string) Input {
	var b strings.Builder
	fmt.Fprintf(&b, "# Final Synthesis: %s\n\n", in.Symbol)
	if in.TriggerReason != "" {
		fmt.Fprintf(&b, "Trigger reason: %s\n\n", in.TriggerReason)
	}
	b.WriteString("## Position\n")
	b.WriteString(in.PositionBrief)
	b.WriteString("\n\n")
	if voteDigest != "" {
		b.WriteString("## Vote tally\n")
		b.WriteString(voteDigest)
		b.WriteString("\n\n")
	}
	if analysisDigest != "" {
		b.WriteString("## Analysis notes\n")
		b.WriteString(analysisDigest)
		b.WriteString("\n\n")
	}
	if riskNote != "" {
		b.WriteString("## Risk note\n")
		b.WriteString(riskNote)
		b.WriteString("\n\n")
	}
	b.WriteString("请综合以上内容，给执行环节一段简短结论：方向、信心来源、需要警惕什么。\n")
	return Input{System: leaderSystemPrompt, User: b.String()}
}

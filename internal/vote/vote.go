package vote

import (
	"strings"
	"time"
)

// 投票字段缺省值与边界。
const (
	DefaultConfidence    = 50
	DefaultLeverage      = 3
	DefaultTakeProfitPct = 5.0
	DefaultStopLossPct   = 2.0

	MinConfidence = 0
	MaxConfidence = 100
	MinLeverage   = 1
	MaxLeverage   = 125
)

// Vote 单个专家的结构化投票。构造时数值已被夹紧到合法区间。
type Vote struct {
	Direction         Direction `json:"direction"`
	Confidence        int       `json:"confidence"`
	Leverage          int       `json:"leverage"`
	TakeProfitPercent float64   `json:"take_profit_percent"`
	StopLossPercent   float64   `json:"stop_loss_percent"`
	Reasoning         string    `json:"reasoning"`
}

// NewVote 夹紧各字段并填充缺省值后返回投票。
func NewVote(dir Direction, confidence, leverage int, tpPct, slPct float64, reasoning string) Vote {
	if tpPct <= 0 {
		tpPct = DefaultTakeProfitPct
	}
	if slPct <= 0 {
		slPct = DefaultStopLossPct
	}
	return Vote{
		Direction:         dir,
		Confidence:        ClampConfidence(confidence),
		Leverage:          ClampLeverage(leverage),
		TakeProfitPercent: tpPct,
		StopLossPercent:   slPct,
		Reasoning:         strings.TrimSpace(reasoning),
	}
}

func ClampConfidence(v int) int {
	if v < MinConfidence {
		return MinConfidence
	}
	if v > MaxConfidence {
		return MaxConfidence
	}
	return v
}

func ClampLeverage(v int) int {
	if v < MinLeverage {
		return MinLeverage
	}
	if v > MaxLeverage {
		return MaxLeverage
	}
	return v
}

// ParseMethod 标记投票是通过哪条解析路径得到的。
type ParseMethod string

const (
	MethodJSON            ParseMethod = "json"
	MethodJSONInCodeBlock ParseMethod = "json_in_code_block"
	MethodEmbeddedJSON    ParseMethod = "embedded_json"
	MethodTextInference   ParseMethod = "text_inference"
	MethodFallback        ParseMethod = "fallback"
)

// AgentVote 带来源信息的投票，每个专家每次会议一条。
type AgentVote struct {
	AgentID     string      `json:"agent_id"`
	AgentName   string      `json:"agent_name"`
	Vote        Vote        `json:"vote"`
	RawResponse string      `json:"raw_response"`
	ParseMethod ParseMethod `json:"parse_method"`
	Timestamp   time.Time   `json:"timestamp"`
}

package vote

import (
	"encoding/json"
	"strings"

	"quorum/internal/logger"
	"quorum/internal/pkg/jsonutil"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// 中文说明：
// Parser 按固定顺序尝试五种解析策略，首个成功者生效；全部失败时
// 返回保守的 HOLD 兜底票。Parse 永不报错、永不抛出。

// 投票对象的最小形状约束：必须带 direction 或 vote 键。
// 不满足的 JSON 不按投票处理，继续走文本推断。
const voteSchemaJSON = `{
  "type": "object",
  "anyOf": [
    {"required": ["direction"]},
    {"required": ["vote"]}
  ]
}`

type ParseResult struct {
	Vote   Vote
	Method ParseMethod
}

type Parser struct {
	schema *jsonschema.Schema
}

func NewParser() *Parser {
	return &Parser{
		schema: jsonschema.MustCompileString("vote.json", voteSchemaJSON),
	}
}

// Parse 解析一段专家原始输出。
// 策略顺序：整体 JSON → 围栏 JSON → 内嵌 JSON → 文本推断 → 兜底。
func (p *Parser) Parse(raw string) ParseResult {
	trimmed := strings.TrimSpace(raw)

	if v, ok := p.voteFromJSON(trimmed); ok {
		return ParseResult{Vote: v, Method: MethodJSON}
	}

	if block, ok := jsonutil.ExtractFenced(trimmed); ok {
		if v, ok := p.voteFromJSON(block); ok {
			return ParseResult{Vote: v, Method: MethodJSONInCodeBlock}
		}
	}

	for _, candidate := range jsonutil.Objects(trimmed) {
		if v, ok := p.voteFromJSON(candidate); ok {
			return ParseResult{Vote: v, Method: MethodEmbeddedJSON}
		}
	}

	if trimmed != "" {
		return ParseResult{Vote: InferVote(trimmed), Method: MethodTextInference}
	}

	return ParseResult{
		Vote:   NewVote(DirectionHold, 30, DefaultLeverage, 0, 0, "could not parse"),
		Method: MethodFallback,
	}
}

// voteFromJSON 将一个 JSON 片段防御性地转换为投票。
func (p *Parser) voteFromJSON(block string) (Vote, bool) {
	block = strings.TrimSpace(block)
	if block == "" || !gjson.Valid(block) {
		return Vote{}, false
	}
	parsed := gjson.Parse(block)
	if parsed.IsArray() {
		// 有的模型把单票包在数组里
		first := parsed.Get("0")
		if !first.IsObject() {
			return Vote{}, false
		}
		parsed = first
		block = first.Raw
	}
	if !parsed.IsObject() {
		return Vote{}, false
	}
	if !p.matchesVoteShape(block) {
		return Vote{}, false
	}

	dirField := parsed.Get("direction")
	if !dirField.Exists() {
		dirField = parsed.Get("vote")
	}
	dir := NormalizeDirection(dirField.String())

	confidence := DefaultConfidence
	if f := parsed.Get("confidence"); f.Exists() {
		confidence = int(f.Float())
	}
	leverage := DefaultLeverage
	if f := parsed.Get("leverage"); f.Exists() {
		leverage = int(f.Float())
	}
	tpPct := firstPositive(parsed, "take_profit_percent", "take_profit", "tp_percent")
	slPct := firstPositive(parsed, "stop_loss_percent", "stop_loss", "sl_percent")
	reasoning := firstString(parsed, "reasoning", "reason", "analysis")

	return NewVote(dir, confidence, leverage, tpPct, slPct, reasoning), true
}

func (p *Parser) matchesVoteShape(block string) bool {
	var v any
	if err := json.Unmarshal([]byte(block), &v); err != nil {
		return false
	}
	if err := p.schema.Validate(v); err != nil {
		logger.Debugf("vote schema rejected candidate: %v", err)
		return false
	}
	return true
}

func firstPositive(parsed gjson.Result, keys ...string) float64 {
	for _, key := range keys {
		if f := parsed.Get(key); f.Exists() {
			if v := f.Float(); v > 0 {
				return v
			}
		}
	}
	return 0
}

func firstString(parsed gjson.Result, keys ...string) string {
	for _, key := range keys {
		if f := parsed.Get(key); f.Exists() {
			if s := strings.TrimSpace(f.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

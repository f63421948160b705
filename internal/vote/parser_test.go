package vote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirectJSON(t *testing.T) {
	p := NewParser()
	res := p.Parse(`{"direction":"LONG","confidence":80,"leverage":10,"take_profit_percent":8,"stop_loss_percent":3,"reasoning":"momentum"}`)
	assert.Equal(t, MethodJSON, res.Method)
	assert.Equal(t, DirectionLong, res.Vote.Direction)
	assert.Equal(t, 80, res.Vote.Confidence)
	assert.Equal(t, 10, res.Vote.Leverage)
	assert.InDelta(t, 8, res.Vote.TakeProfitPercent, 1e-9)
	assert.InDelta(t, 3, res.Vote.StopLossPercent, 1e-9)
	assert.Equal(t, "momentum", res.Vote.Reasoning)
}

func TestParseJSONClampsRanges(t *testing.T) {
	p := NewParser()
	res := p.Parse(`{"direction":"short","confidence":150,"leverage":500}`)
	assert.Equal(t, MethodJSON, res.Method)
	assert.Equal(t, DirectionShort, res.Vote.Direction)
	assert.Equal(t, MaxConfidence, res.Vote.Confidence)
	assert.Equal(t, MaxLeverage, res.Vote.Leverage)
}

func TestParseJSONDefaults(t *testing.T) {
	p := NewParser()
	res := p.Parse(`{"vote":"做空"}`)
	assert.Equal(t, MethodJSON, res.Method)
	assert.Equal(t, DirectionShort, res.Vote.Direction)
	assert.Equal(t, DefaultConfidence, res.Vote.Confidence)
	assert.Equal(t, DefaultLeverage, res.Vote.Leverage)
	assert.InDelta(t, DefaultTakeProfitPct, res.Vote.TakeProfitPercent, 1e-9)
	assert.InDelta(t, DefaultStopLossPct, res.Vote.StopLossPercent, 1e-9)
}

func TestParseJSONStringNumbers(t *testing.T) {
	p := NewParser()
	res := p.Parse(`{"direction":"long","confidence":"75","leverage":"5x"}`)
	assert.Equal(t, 75, res.Vote.Confidence)
	// "5x" 解析不了就落回下限夹紧
	assert.GreaterOrEqual(t, res.Vote.Leverage, MinLeverage)
}

func TestParseFencedJSON(t *testing.T) {
	p := NewParser()
	raw := "Here is my vote:\n```json\n{\"direction\": \"short\", \"confidence\": 65}\n```\nDone."
	res := p.Parse(raw)
	assert.Equal(t, MethodJSONInCodeBlock, res.Method)
	assert.Equal(t, DirectionShort, res.Vote.Direction)
	assert.Equal(t, 65, res.Vote.Confidence)
}

func TestParseEmbeddedJSON(t *testing.T) {
	p := NewParser()
	raw := `After weighing both sides I conclude {"direction": "long", "confidence": 72} though volatility is high.`
	res := p.Parse(raw)
	assert.Equal(t, MethodEmbeddedJSON, res.Method)
	assert.Equal(t, DirectionLong, res.Vote.Direction)
	assert.Equal(t, 72, res.Vote.Confidence)
}

func TestParseEmbeddedSkipsNonVoteObjects(t *testing.T) {
	p := NewParser()
	raw := `context: {"price": 50000} and my call is {"vote": "short", "confidence": 60}`
	res := p.Parse(raw)
	assert.Equal(t, MethodEmbeddedJSON, res.Method)
	assert.Equal(t, DirectionShort, res.Vote.Direction)
}

func TestParseArrayWrappedVote(t *testing.T) {
	p := NewParser()
	res := p.Parse(`[{"direction":"long","confidence":66}]`)
	assert.Equal(t, MethodJSON, res.Method)
	assert.Equal(t, DirectionLong, res.Vote.Direction)
	assert.Equal(t, 66, res.Vote.Confidence)
}

func TestParseTextInference(t *testing.T) {
	p := NewParser()
	res := p.Parse("明显看多，突破后放量上涨，建议做多")
	assert.Equal(t, MethodTextInference, res.Method)
	assert.Equal(t, DirectionLong, res.Vote.Direction)
}

func TestParseFallbackOnEmpty(t *testing.T) {
	p := NewParser()
	res := p.Parse("")
	assert.Equal(t, MethodFallback, res.Method)
	assert.Equal(t, DirectionHold, res.Vote.Direction)
	assert.Equal(t, 30, res.Vote.Confidence)
	assert.Equal(t, "could not parse", res.Vote.Reasoning)
}

func TestParseNeverInvalid(t *testing.T) {
	inputs := []string{
		"", "   ", "asdf qwer zxcv", "{broken json", "```\nnothing here\n```",
		`{"foo": 1}`, "null", "[1,2,3]", "42",
	}
	p := NewParser()
	for _, in := range inputs {
		res := p.Parse(in)
		require.Contains(t, []Direction{
			DirectionLong, DirectionShort, DirectionHold,
			DirectionClose, DirectionAddLong, DirectionAddShort,
		}, res.Vote.Direction, "input=%q", in)
		require.GreaterOrEqual(t, res.Vote.Confidence, MinConfidence, "input=%q", in)
		require.LessOrEqual(t, res.Vote.Confidence, MaxConfidence, "input=%q", in)
		require.GreaterOrEqual(t, res.Vote.Leverage, MinLeverage, "input=%q", in)
	}
}

package vote

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// 中文说明：
// 当专家输出里找不到任何 JSON 时，用关键词加权打分从纯文本里推断方向。
// 词表中英双语，权重 1 或 2；强词（突破、暴跌等）权重 2。

type weightedKeyword struct {
	word   string
	weight int
}

var bullishKeywords = []weightedKeyword{
	{"strong buy", 2}, {"breakout", 2}, {"strongly bullish", 2},
	{"bullish", 1}, {"long", 1}, {"buy", 1}, {"uptrend", 1},
	{"higher high", 1}, {"accumulate", 1}, {"oversold", 1},
	{"强烈看多", 2}, {"突破", 2}, {"放量上涨", 2},
	{"看多", 1}, {"做多", 1}, {"买入", 1}, {"上涨", 1},
	{"反弹", 1}, {"超卖", 1}, {"多头", 1},
}

var bearishKeywords = []weightedKeyword{
	{"strong sell", 2}, {"breakdown", 2}, {"strongly bearish", 2},
	{"bearish", 1}, {"short", 1}, {"sell", 1}, {"downtrend", 1},
	{"lower low", 1}, {"distribute", 1}, {"overbought", 1},
	{"强烈看空", 2}, {"跌破", 2}, {"暴跌", 2},
	{"看空", 1}, {"做空", 1}, {"卖出", 1}, {"下跌", 1},
	{"回调", 1}, {"超买", 1}, {"空头", 1},
}

var neutralKeywords = []weightedKeyword{
	{"sideways", 2}, {"range-bound", 2}, {"无明确方向", 2},
	{"neutral", 1}, {"wait", 1}, {"hold", 1}, {"unclear", 1},
	{"consolidation", 1}, {"choppy", 1},
	{"观望", 1}, {"震荡", 1}, {"等待", 1}, {"横盘", 1}, {"不确定", 1},
}

var (
	leverageRe   = regexp.MustCompile(`(\d{1,3})\s*(?:x|X|倍)`)
	takeProfitRe = regexp.MustCompile(`(?:止盈|take[\s_-]?profit|tp)\D{0,8}?(\d+(?:\.\d+)?)\s*%`)
	stopLossRe   = regexp.MustCompile(`(?:止损|stop[\s_-]?loss|sl)\D{0,8}?(\d+(?:\.\d+)?)\s*%`)
)

func keywordScore(lower string, table []weightedKeyword) int {
	score := 0
	for _, kw := range table {
		if n := strings.Count(lower, kw.word); n > 0 {
			score += n * kw.weight
		}
	}
	return score
}

// InferVote 从无结构文本推断投票，总是返回可用结果。
func InferVote(text string) Vote {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return NewVote(DirectionHold, 30, DefaultLeverage, 0, 0, "empty response")
	}
	lower := strings.ToLower(trimmed)

	bull := keywordScore(lower, bullishKeywords)
	bear := keywordScore(lower, bearishKeywords)
	neutral := keywordScore(lower, neutralKeywords)

	leverage := inferLeverage(lower)
	tpPct := inferPercent(lower, takeProfitRe, 0.5, 50)
	slPct := inferPercent(lower, stopLossRe, 0.5, 30)

	dir, confidence := resolveScores(bull, bear, neutral)
	reasoning := fmt.Sprintf("text inference: bull=%d bear=%d neutral=%d", bull, bear, neutral)
	return NewVote(dir, confidence, leverage, tpPct, slPct, reasoning)
}

func resolveScores(bull, bear, neutral int) (Direction, int) {
	if neutral > bull && neutral > bear {
		return DirectionHold, 50
	}
	if bull == bear {
		return DirectionHold, 40
	}

	dir := DirectionLong
	hi, lo := bull, bear
	if bear > bull {
		dir = DirectionShort
		hi, lo = bear, bull
	}
	diff := hi - lo
	if hi >= 2*lo && hi >= 2 {
		return dir, min(85, 50+5*diff)
	}
	return dir, 45 + min(20, 3*diff)
}

func inferLeverage(lower string) int {
	m := leverageRe.FindStringSubmatch(lower)
	if len(m) != 2 {
		return DefaultLeverage
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return DefaultLeverage
	}
	return ClampLeverage(n)
}

func inferPercent(lower string, re *regexp.Regexp, lo, hi float64) float64 {
	m := re.FindStringSubmatch(lower)
	if len(m) != 2 {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

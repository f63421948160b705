package vote

import (
	"sort"
	"strings"
)

// 中文说明：
// Direction 是专家投票的方向枚举。归一化接受中英文同义词，
// 无法识别的输入一律落到 HOLD，保证归一化永不失败。

type Direction string

const (
	DirectionLong     Direction = "long"
	DirectionShort    Direction = "short"
	DirectionHold     Direction = "hold"
	DirectionClose    Direction = "close"
	DirectionAddLong  Direction = "add_long"
	DirectionAddShort Direction = "add_short"
)

// Bullish 报告方向是否属于多头阵营（long / add_long）。
func (d Direction) Bullish() bool {
	return d == DirectionLong || d == DirectionAddLong
}

// Bearish 报告方向是否属于空头阵营（short / add_short）。
func (d Direction) Bearish() bool {
	return d == DirectionShort || d == DirectionAddShort
}

func (d Direction) String() string { return string(d) }

var directionSynonyms = map[string]Direction{
	// long
	"long": DirectionLong, "buy": DirectionLong, "bull": DirectionLong,
	"bullish": DirectionLong, "open_long": DirectionLong, "go_long": DirectionLong,
	"enter_long": DirectionLong, "buy_long": DirectionLong, "up": DirectionLong,
	"做多": DirectionLong, "看多": DirectionLong, "买入": DirectionLong,
	"开多": DirectionLong, "多头": DirectionLong, "看涨": DirectionLong,

	// short
	"short": DirectionShort, "sell": DirectionShort, "bear": DirectionShort,
	"bearish": DirectionShort, "open_short": DirectionShort, "go_short": DirectionShort,
	"enter_short": DirectionShort, "sell_short": DirectionShort, "down": DirectionShort,
	"做空": DirectionShort, "看空": DirectionShort, "卖出": DirectionShort,
	"开空": DirectionShort, "空头": DirectionShort, "看跌": DirectionShort,

	// hold
	"hold": DirectionHold, "wait": DirectionHold, "neutral": DirectionHold,
	"stay": DirectionHold, "sideline": DirectionHold, "no_trade": DirectionHold,
	"观望": DirectionHold, "等待": DirectionHold, "中性": DirectionHold,
	"持有": DirectionHold, "不操作": DirectionHold,

	// close
	"close": DirectionClose, "exit": DirectionClose, "flat": DirectionClose,
	"close_position": DirectionClose, "take_profit": DirectionClose,
	"平仓": DirectionClose, "离场": DirectionClose, "止盈离场": DirectionClose,

	// add
	"add_long": DirectionAddLong, "add_to_long": DirectionAddLong,
	"increase_long": DirectionAddLong, "加多": DirectionAddLong, "加仓做多": DirectionAddLong,
	"add_short": DirectionAddShort, "add_to_short": DirectionAddShort,
	"increase_short": DirectionAddShort, "加空": DirectionAddShort, "加仓做空": DirectionAddShort,
}

var separatorReplacer = strings.NewReplacer(" ", "", "-", "", "_", "")

// 去分隔符后的同义词索引；子串匹配按键长降序，让 addlong 先于 long 命中。
var (
	flatSynonyms = func() map[string]Direction {
		m := make(map[string]Direction, len(directionSynonyms))
		for k, d := range directionSynonyms {
			m[separatorReplacer.Replace(k)] = d
		}
		return m
	}()
	flatKeys = func() []string {
		keys := make([]string, 0, len(flatSynonyms))
		for k := range flatSynonyms {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if len(keys[i]) != len(keys[j]) {
				return len(keys[i]) > len(keys[j])
			}
			return keys[i] < keys[j]
		})
		return keys
	}()
)

// NormalizeDirection 将任意方向文本映射到枚举。
// 顺序：精确匹配 → 去分隔符匹配 → 子串匹配 → HOLD。
func NormalizeDirection(raw string) Direction {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return DirectionHold
	}
	if d, ok := directionSynonyms[s]; ok {
		return d
	}
	stripped := separatorReplacer.Replace(s)
	if d, ok := flatSynonyms[stripped]; ok {
		return d
	}
	for _, key := range flatKeys {
		if strings.Contains(stripped, key) {
			return flatSynonyms[key]
		}
	}
	return DirectionHold
}

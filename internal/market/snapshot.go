package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/markcheno/go-talib"
)

// 中文说明：
// Snapshot 是触发评估与会议提示词共用的行情切片。指标在采集端
// 一次算好，下游只读，不在评估路径上重复跑 talib。

type Candle struct {
	OpenTime  int64
	CloseTime int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

type Snapshot struct {
	Symbol    string
	LastPrice float64

	Change24hPct float64
	High24h      float64
	Low24h       float64
	Volume24h    float64

	FundingRate float64

	RSI14 float64
	EMA20 float64
	EMA50 float64

	CapturedAt time.Time
}

// Source 行情来源。实现必须可安全并发调用。
type Source interface {
	Snapshot(ctx context.Context, symbol string) (Snapshot, error)
}

const (
	rsiPeriod     = 14
	emaFastPeriod = 20
	emaSlowPeriod = 50
)

// ApplyIndicators 从收盘序列计算 RSI 与双 EMA，样本不足时保持零值。
func (s *Snapshot) ApplyIndicators(closes []float64) {
	if len(closes) > rsiPeriod {
		rsi := talib.Rsi(closes, rsiPeriod)
		s.RSI14 = rsi[len(rsi)-1]
	}
	if len(closes) >= emaFastPeriod {
		ema := talib.Ema(closes, emaFastPeriod)
		s.EMA20 = ema[len(ema)-1]
	}
	if len(closes) >= emaSlowPeriod {
		ema := talib.Ema(closes, emaSlowPeriod)
		s.EMA50 = ema[len(ema)-1]
	}
}

// Brief 提示词用的一段文本描述。
func (s Snapshot) Brief() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s last=%.4f change_24h=%.2f%% high=%.4f low=%.4f volume=%.2f\n",
		s.Symbol, s.LastPrice, s.Change24hPct, s.High24h, s.Low24h, s.Volume24h)
	if s.RSI14 > 0 {
		fmt.Fprintf(&b, "RSI(14)=%.1f", s.RSI14)
		if s.EMA20 > 0 && s.EMA50 > 0 {
			trend := "flat"
			switch {
			case s.EMA20 > s.EMA50:
				trend = "up"
			case s.EMA20 < s.EMA50:
				trend = "down"
			}
			fmt.Fprintf(&b, " EMA20=%.4f EMA50=%.4f trend=%s", s.EMA20, s.EMA50, trend)
		}
		b.WriteString("\n")
	}
	if s.FundingRate != 0 {
		fmt.Fprintf(&b, "funding_rate=%.4f%%\n", s.FundingRate*100)
	}
	return strings.TrimRight(b.String(), "\n")
}

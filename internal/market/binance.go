package market

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2/futures"
)

const defaultKlineLimit = 100

// BinanceSource 基于币安合约 REST 接口采集快照。
// 公开行情接口不需要 API key。
type BinanceSource struct {
	client   *futures.Client
	interval string
	limit    int
}

type BinanceConfig struct {
	BaseURL     string
	Interval    string
	KlineLimit  int
	HTTPTimeout time.Duration
}

func NewBinanceSource(cfg BinanceConfig) *BinanceSource {
	client := futures.NewClient("", "")
	if u := strings.TrimSpace(cfg.BaseURL); u != "" {
		client.BaseURL = u
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client.HTTPClient = &http.Client{Timeout: timeout}

	interval := strings.ToLower(strings.TrimSpace(cfg.Interval))
	if interval == "" {
		interval = "15m"
	}
	limit := cfg.KlineLimit
	if limit <= 0 {
		limit = defaultKlineLimit
	}
	return &BinanceSource{client: client, interval: interval, limit: limit}
}

func (s *BinanceSource) Snapshot(ctx context.Context, symbol string) (Snapshot, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Snapshot{}, fmt.Errorf("symbol is required")
	}

	snap := Snapshot{Symbol: symbol, CapturedAt: time.Now()}

	kls, err := s.client.NewKlinesService().
		Symbol(symbol).Interval(s.interval).Limit(s.limit).Do(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch klines: %w", err)
	}
	closes := make([]float64, 0, len(kls))
	for _, kl := range kls {
		if kl == nil {
			continue
		}
		closes = append(closes, parseFloat(kl.Close))
	}
	if len(closes) == 0 {
		return Snapshot{}, fmt.Errorf("no kline data for %s", symbol)
	}
	snap.LastPrice = closes[len(closes)-1]
	snap.ApplyIndicators(closes)

	stats, err := s.client.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch 24h stats: %w", err)
	}
	if len(stats) > 0 && stats[0] != nil {
		st := stats[0]
		snap.Change24hPct = parseFloat(st.PriceChangePercent)
		snap.High24h = parseFloat(st.HighPrice)
		snap.Low24h = parseFloat(st.LowPrice)
		snap.Volume24h = parseFloat(st.Volume)
		if p := parseFloat(st.LastPrice); p > 0 {
			snap.LastPrice = p
		}
	}

	// 资金费率失败不致命，快照缺这一项照样可用。
	if premium, err := s.client.NewPremiumIndexService().Symbol(symbol).Do(ctx); err == nil {
		if len(premium) > 0 && premium[0] != nil {
			snap.FundingRate = parseFloat(premium[0].LastFundingRate)
		}
	}

	return snap, nil
}

// Price 只取最新标记价，给执行环节的轻量查询用。
func (s *BinanceSource) Price(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	prices, err := s.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch price: %w", err)
	}
	if len(prices) == 0 || prices[0] == nil {
		return 0, fmt.Errorf("no price for %s", symbol)
	}
	p := parseFloat(prices[0].Price)
	if p <= 0 {
		return 0, fmt.Errorf("invalid price %q for %s", prices[0].Price, symbol)
	}
	return p, nil
}

func parseFloat(v string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f
}

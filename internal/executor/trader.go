package executor

import (
	"context"

	"quorum/internal/position"
)

// 中文说明：
// Trader 是下单端口。实现可以是真实交易所、模拟盘或测试替身。
// 所有方法阻塞式带 ctx，金额一律按保证金 USDT 口径。

type OrderRequest struct {
	Symbol   string
	Leverage int
	// Amount 保证金金额（USDT）
	Amount          float64
	TakeProfitPrice float64
	StopLossPrice   float64
}

type OrderResult struct {
	OrderID        string
	ExecutedPrice  float64
	ExecutedAmount float64
}

type CloseResult struct {
	PnL float64
}

type AccountBalance struct {
	Total     float64
	Available float64
}

type Trader interface {
	OpenLong(ctx context.Context, req OrderRequest) (OrderResult, error)
	OpenShort(ctx context.Context, req OrderRequest) (OrderResult, error)
	ClosePosition(ctx context.Context, symbol string) (CloseResult, error)
	Position(ctx context.Context, symbol string) (position.Context, error)
	Account(ctx context.Context) (AccountBalance, error)
}

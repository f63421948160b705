package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"quorum/internal/logger"
	"quorum/internal/position"
	"quorum/internal/vote"
)

// PaperTrader 模拟盘。成交价取构造时注入的报价函数，
// 不模拟滑点与手续费，只用于验证决策链路。
type PaperTrader struct {
	mu      sync.Mutex
	balance float64
	pos     *paperPosition

	// PriceFn 返回当前标记价。必须注入。
	PriceFn func(ctx context.Context, symbol string) (float64, error)
}

type paperPosition struct {
	symbol   string
	dir      vote.Direction
	margin   float64
	size     float64
	entry    float64
	leverage int
	tp       float64
	sl       float64
	openedAt time.Time
}

func NewPaperTrader(initialBalance float64, priceFn func(ctx context.Context, symbol string) (float64, error)) *PaperTrader {
	return &PaperTrader{balance: initialBalance, PriceFn: priceFn}
}

func (p *PaperTrader) OpenLong(ctx context.Context, req OrderRequest) (OrderResult, error) {
	return p.open(ctx, vote.DirectionLong, req)
}

func (p *PaperTrader) OpenShort(ctx context.Context, req OrderRequest) (OrderResult, error) {
	return p.open(ctx, vote.DirectionShort, req)
}

func (p *PaperTrader) open(ctx context.Context, dir vote.Direction, req OrderRequest) (OrderResult, error) {
	price, err := p.PriceFn(ctx, req.Symbol)
	if err != nil {
		return OrderResult{}, fmt.Errorf("paper price: %w", err)
	}
	if price <= 0 {
		return OrderResult{}, fmt.Errorf("paper price unavailable for %s", req.Symbol)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if req.Amount > p.balance {
		return OrderResult{}, fmt.Errorf("paper balance %.2f below requested margin %.2f", p.balance, req.Amount)
	}
	if p.pos != nil && p.pos.dir != dir {
		return OrderResult{}, fmt.Errorf("paper position already open in direction %s", p.pos.dir)
	}

	size := req.Amount * float64(req.Leverage) / price
	if p.pos == nil {
		p.pos = &paperPosition{
			symbol:   req.Symbol,
			dir:      dir,
			margin:   req.Amount,
			size:     size,
			entry:    price,
			leverage: req.Leverage,
			tp:       req.TakeProfitPrice,
			sl:       req.StopLossPrice,
			openedAt: time.Now(),
		}
	} else {
		// 加仓：按名义量加权出新的均价
		total := p.pos.size + size
		p.pos.entry = (p.pos.entry*p.pos.size + price*size) / total
		p.pos.size = total
		p.pos.margin += req.Amount
	}
	p.balance -= req.Amount
	logger.Infof("[paper] %s %s margin=%.2f size=%.6f price=%.4f", dir, req.Symbol, req.Amount, size, price)
	return OrderResult{
		OrderID:        fmt.Sprintf("paper-%d", time.Now().UnixNano()),
		ExecutedPrice:  price,
		ExecutedAmount: req.Amount,
	}, nil
}

func (p *PaperTrader) ClosePosition(ctx context.Context, symbol string) (CloseResult, error) {
	p.mu.Lock()
	pos := p.pos
	p.mu.Unlock()
	if pos == nil {
		return CloseResult{}, nil
	}
	price, err := p.PriceFn(ctx, symbol)
	if err != nil {
		return CloseResult{}, fmt.Errorf("paper price: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	pnl := (price - pos.entry) * pos.size
	if pos.dir.Bearish() {
		pnl = -pnl
	}
	p.balance += pos.margin + pnl
	p.pos = nil
	logger.Infof("[paper] closed %s pnl=%.2f balance=%.2f", symbol, pnl, p.balance)
	return CloseResult{PnL: pnl}, nil
}

func (p *PaperTrader) Position(ctx context.Context, symbol string) (position.Context, error) {
	price, err := p.PriceFn(ctx, symbol)
	if err != nil {
		return position.Context{}, fmt.Errorf("paper price: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pos == nil {
		return position.Context{Symbol: symbol, CurrentPrice: price}, nil
	}
	pos := p.pos
	pnl := (price - pos.entry) * pos.size
	if pos.dir.Bearish() {
		pnl = -pnl
	}
	pnlPct := 0.0
	if pos.margin > 0 {
		pnlPct = pnl / pos.margin * 100
	}
	return position.Context{
		HasPosition:          true,
		Symbol:               symbol,
		Direction:            pos.dir,
		Size:                 pos.size,
		EntryPrice:           pos.entry,
		CurrentPrice:         price,
		Margin:               pos.margin,
		Leverage:             pos.leverage,
		UnrealizedPnL:        pnl,
		UnrealizedPnLPercent: pnlPct,
		TakeProfitPrice:      pos.tp,
		StopLossPrice:        pos.sl,
		HoldingDuration:      time.Since(pos.openedAt),
		CapturedAt:           time.Now(),
	}.Normalize(), nil
}

func (p *PaperTrader) Account(_ context.Context) (AccountBalance, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := p.balance
	if p.pos != nil {
		total += p.pos.margin
	}
	return AccountBalance{Total: total, Available: p.balance}, nil
}

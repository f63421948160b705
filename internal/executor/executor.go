package executor

import (
	"context"
	"fmt"
	"sync"

	"quorum/internal/logger"
	"quorum/internal/position"
	"quorum/internal/signal"
	"quorum/internal/vote"
)

// 中文说明：
// Executor 把会议结论翻译成交易动作。决策表对持仓方向敏感：
// 共识与持仓同向只在高信心且浮盈时加仓，反向时先平仓、信心
// 足够高才反手。执行前必须重新拉取最新持仓，信号里的快照可能
// 已经过期。

type Action string

const (
	ActionOpenLong   Action = "open_long"
	ActionOpenShort  Action = "open_short"
	ActionAddToLong  Action = "add_to_long"
	ActionAddToShort Action = "add_to_short"
	ActionClose      Action = "close_position"
	ActionReverse    Action = "reverse"
	ActionHold       Action = "hold"
)

const (
	DefaultAddConfidence     = 70
	DefaultReverseConfidence = 75
	DefaultMinAddAmount      = 10.0
)

// Decide 决策表。consensus 只会是 long/short/close/hold 四种。
func Decide(consensus vote.Direction, pos position.Context, confidence int, addConf, reverseConf int) Action {
	if addConf <= 0 {
		addConf = DefaultAddConfidence
	}
	if reverseConf <= 0 {
		reverseConf = DefaultReverseConfidence
	}

	if !pos.HasPosition {
		switch consensus {
		case vote.DirectionLong:
			return ActionOpenLong
		case vote.DirectionShort:
			return ActionOpenShort
		default:
			// 无仓可平
			return ActionHold
		}
	}

	sameSide := (pos.Direction.Bullish() && consensus == vote.DirectionLong) ||
		(pos.Direction.Bearish() && consensus == vote.DirectionShort)
	oppositeSide := (pos.Direction.Bullish() && consensus == vote.DirectionShort) ||
		(pos.Direction.Bearish() && consensus == vote.DirectionLong)

	switch {
	case consensus == vote.DirectionClose:
		return ActionClose
	case sameSide:
		if confidence >= addConf && pos.UnrealizedPnL >= 0 {
			if pos.Direction.Bullish() {
				return ActionAddToLong
			}
			return ActionAddToShort
		}
		return ActionHold
	case oppositeSide:
		if confidence >= reverseConf {
			return ActionReverse
		}
		return ActionClose
	default:
		return ActionHold
	}
}

type Executor struct {
	Trader Trader
	Symbol string

	MinAddAmount      float64
	FloorBalance      float64
	AddConfidence     int
	ReverseConfidence int

	// 同一时刻只允许一笔交易流程在走
	tradeMu sync.Mutex
}

type Result struct {
	Action      Action
	ActionTaken string
	Order       OrderResult
	ClosedPnL   float64
	Err         error
}

// Execute 执行一个交易信号。非方向性信号直接落为 hold。
func (e *Executor) Execute(ctx context.Context, sig *signal.TradingSignal) Result {
	e.tradeMu.Lock()
	defer e.tradeMu.Unlock()

	if sig == nil || !sig.IsActionable() {
		return Result{Action: ActionHold, ActionTaken: "not_actionable"}
	}

	fresh, err := e.Trader.Position(ctx, e.Symbol)
	if err != nil {
		return Result{Action: ActionHold, ActionTaken: "position_fetch_failed", Err: err}
	}
	fresh = fresh.Normalize()

	action := Decide(sig.Direction, fresh, sig.Confidence, e.AddConfidence, e.ReverseConfidence)
	logger.Infof("executor decided action=%s meeting=%s consensus=%s confidence=%d has_position=%v",
		action, sig.MeetingID, sig.Direction, sig.Confidence, fresh.HasPosition)

	switch action {
	case ActionHold:
		return Result{Action: action, ActionTaken: "held"}
	case ActionClose:
		return e.close(ctx, action)
	case ActionOpenLong, ActionOpenShort:
		return e.open(ctx, action, sig, 0)
	case ActionAddToLong, ActionAddToShort:
		// 加仓沿用交易所报的清算价
		return e.open(ctx, action, sig, fresh.LiquidationPrice)
	case ActionReverse:
		res := e.close(ctx, action)
		if res.Err != nil {
			return res
		}
		openAction := ActionOpenShort
		if sig.Direction == vote.DirectionLong {
			openAction = ActionOpenLong
		}
		opened := e.open(ctx, openAction, sig, 0)
		opened.Action = ActionReverse
		opened.ClosedPnL = res.ClosedPnL
		return opened
	default:
		return Result{Action: ActionHold, ActionTaken: "held"}
	}
}

func (e *Executor) close(ctx context.Context, action Action) Result {
	closed, err := e.Trader.ClosePosition(ctx, e.Symbol)
	if err != nil {
		logger.Errorf("close position failed symbol=%s: %v", e.Symbol, err)
		return Result{Action: action, ActionTaken: "close_failed", Err: err}
	}
	logger.Infof("position closed symbol=%s pnl=%.2f", e.Symbol, closed.PnL)
	return Result{Action: action, ActionTaken: "closed", ClosedPnL: closed.PnL}
}

func (e *Executor) open(ctx context.Context, action Action, sig *signal.TradingSignal, liq float64) Result {
	acct, err := e.Trader.Account(ctx)
	if err != nil {
		return Result{Action: action, ActionTaken: "account_fetch_failed", Err: err}
	}

	amount := acct.Available * sig.AmountPercent / 100
	minAdd := e.MinAddAmount
	if minAdd <= 0 {
		minAdd = DefaultMinAddAmount
	}
	if amount < minAdd {
		logger.Warnf("skip %s: amount %.2f below minimum %.2f", action, amount, minAdd)
		return Result{Action: action, ActionTaken: "insufficient_margin"}
	}
	if acct.Available-amount < e.FloorBalance {
		logger.Warnf("skip %s: would breach floor balance %.2f (available %.2f, amount %.2f)",
			action, e.FloorBalance, acct.Available, amount)
		return Result{Action: action, ActionTaken: "insufficient_margin"}
	}

	long := action == ActionOpenLong || action == ActionAddToLong
	dir := vote.DirectionShort
	if long {
		dir = vote.DirectionLong
	}
	stopLoss := SafeStopLoss(dir, sig.EntryPrice, sig.StopLossPrice, liq, sig.Leverage)

	req := OrderRequest{
		Symbol:          e.Symbol,
		Leverage:        sig.Leverage,
		Amount:          amount,
		TakeProfitPrice: sig.TakeProfitPrice,
		StopLossPrice:   stopLoss,
	}
	var order OrderResult
	if long {
		order, err = e.Trader.OpenLong(ctx, req)
	} else {
		order, err = e.Trader.OpenShort(ctx, req)
	}
	if err != nil {
		logger.Errorf("%s failed symbol=%s: %v", action, e.Symbol, err)
		return Result{Action: action, ActionTaken: "order_failed", Err: fmt.Errorf("%s: %w", action, err)}
	}
	logger.Infof("%s done symbol=%s price=%.4f amount=%.2f leverage=%dx tp=%.4f sl=%.4f",
		action, e.Symbol, order.ExecutedPrice, order.ExecutedAmount, sig.Leverage, sig.TakeProfitPrice, stopLoss)
	return Result{Action: action, ActionTaken: "executed", Order: order}
}

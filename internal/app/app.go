package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"quorum/internal/agent"
	"quorum/internal/config"
	"quorum/internal/executor"
	"quorum/internal/gateway/notifier"
	"quorum/internal/gateway/provider"
	"quorum/internal/logger"
	"quorum/internal/market"
	"quorum/internal/meeting"
	"quorum/internal/signal"
	"quorum/internal/store"
	"quorum/internal/trigger"
	"quorum/internal/vote"
)

// 中文说明：
// App 手工装配所有组件。依赖方向单向：app 知道所有包，
// 业务包之间互不认识。会议回调持有触发锁期间串行完成
// 开会、执行、落库、通知四步。

type App struct {
	cfg *config.Config

	registry  *agent.Registry
	source    *market.BinanceSource
	runner    *meeting.Runner
	exec      *executor.Executor
	trader    executor.Trader
	audit     *store.AuditStore
	notify    notifier.Notifier
	scheduler *trigger.Scheduler

	llmLog *os.File

	// 会议回调内写、Runner.MarketFn 读，都在触发锁内
	briefMu   sync.Mutex
	snapBrief string
}

func New(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg, notify: notifier.Nop{}}

	logger.SetLevel(cfg.LogLevel)
	if cfg.LLMLogPath != "" {
		f, err := os.OpenFile(cfg.LLMLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open llm log: %w", err)
		}
		a.llmLog = f
		logger.SetLLMWriter(f)
	}

	providers := make(map[string]*provider.OpenAIChatProvider, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		providers[pc.ID] = &provider.OpenAIChatProvider{
			ProviderID:  pc.ID,
			BaseURL:     pc.BaseURL,
			APIKey:      pc.APIKey,
			Model:       pc.Model,
			Temperature: pc.Temperature,
			Timeout:     pc.Timeout,
			MaxRetries:  pc.MaxRetries,
			Disabled:    pc.Disabled,
		}
	}
	buildExpert := func(ac *config.AgentConfig) (*agent.Expert, error) {
		if ac == nil {
			return nil, nil
		}
		p, ok := providers[ac.Provider]
		if !ok {
			return nil, fmt.Errorf("agent %s: unknown provider %q", ac.ID, ac.Provider)
		}
		return agent.NewExpert(ac.ID, ac.Name, p, cfg.Agents.Timeout), nil
	}

	// 先全部入册（顺带查重），再从注册表按配置分发角色
	var all []agent.Agent
	for i := range cfg.Agents.Analysts {
		e, err := buildExpert(&cfg.Agents.Analysts[i])
		if err != nil {
			return nil, err
		}
		all = append(all, e)
	}
	risk, err := buildExpert(cfg.Agents.Risk)
	if err != nil {
		return nil, err
	}
	leader, err := buildExpert(cfg.Agents.Leader)
	if err != nil {
		return nil, err
	}
	gatekeeper, err := buildExpert(cfg.Agents.Gatekeeper)
	if err != nil {
		return nil, err
	}
	for _, e := range []*agent.Expert{risk, leader, gatekeeper} {
		if e != nil {
			all = append(all, e)
		}
	}
	a.registry, err = agent.NewRegistry(all...)
	if err != nil {
		return nil, err
	}
	analysts := make([]agent.Agent, 0, len(cfg.Agents.Analysts))
	for _, ac := range cfg.Agents.Analysts {
		ag, ok := a.registry.Get(ac.ID)
		if !ok {
			return nil, fmt.Errorf("analyst %q not registered", ac.ID)
		}
		analysts = append(analysts, ag)
	}
	resolve := func(ac *config.AgentConfig) agent.Agent {
		if ac == nil {
			return nil
		}
		ag, _ := a.registry.Get(ac.ID)
		return ag
	}
	logger.Infof("agents registered: %v", a.registry.IDs())

	a.source = market.NewBinanceSource(market.BinanceConfig{
		BaseURL:     cfg.Market.BaseURL,
		Interval:    cfg.Market.Interval,
		KlineLimit:  cfg.Market.KlineLimit,
		HTTPTimeout: cfg.Market.HTTPTimeout,
	})

	a.trader = executor.NewPaperTrader(cfg.Executor.PaperBalance, a.source.Price)
	a.exec = &executor.Executor{
		Trader:            a.trader,
		Symbol:            cfg.Symbol,
		MinAddAmount:      cfg.Executor.MinAddAmount,
		FloorBalance:      cfg.Executor.FloorBalance,
		AddConfidence:     cfg.Executor.AddConfidence,
		ReverseConfidence: cfg.Executor.ReverseConfidence,
	}

	a.runner = &meeting.Runner{
		Symbol:        cfg.Symbol,
		Analysts:      analysts,
		Risk:          resolve(cfg.Agents.Risk),
		Leader:        resolve(cfg.Agents.Leader),
		Parser:        vote.NewParser(),
		AmountPercent: cfg.Executor.AmountPercent,
		Parallelism:   cfg.Agents.Parallelism,
		MinVotes:      cfg.Agents.MinVotes,
		MarketFn:      a.marketBrief,
	}

	a.audit, err = store.NewAuditStore(cfg.Store.Path)
	if err != nil {
		return nil, err
	}

	if cfg.Notifier.Telegram.Enabled {
		a.notify = notifier.NewTelegram(cfg.Notifier.Telegram.BotToken, cfg.Notifier.Telegram.ChatID)
	}

	ev := &trigger.Evaluator{
		Source:             a.source,
		ChangeThresholdPct: cfg.Trigger.ChangeThresholdPct,
		RSIOversold:        cfg.Trigger.RSIOversold,
		RSIOverbought:      cfg.Trigger.RSIOverbought,
		Gatekeeper:         resolve(cfg.Agents.Gatekeeper),
	}
	a.scheduler = trigger.NewScheduler(cfg.Symbol, trigger.NewLock(), ev, a.holdMeeting)
	a.scheduler.SetInterval(cfg.Trigger.Interval)
	a.scheduler.SetCooldown(cfg.Trigger.Cooldown)
	a.scheduler.SetAcquireTimeout(cfg.Trigger.AcquireTimeout)

	return a, nil
}

// marketBrief 优先用触发评估时已采好的快照，避免重复打接口。
func (a *App) marketBrief(ctx context.Context, symbol string) (string, error) {
	a.briefMu.Lock()
	brief := a.snapBrief
	a.briefMu.Unlock()
	if brief != "" {
		return brief, nil
	}
	snap, err := a.source.Snapshot(ctx, symbol)
	if err != nil {
		return "", err
	}
	return snap.Brief(), nil
}

// holdMeeting 在触发锁内执行完整决策回合。
func (a *App) holdMeeting(ctx context.Context, reason string, snap market.Snapshot) {
	a.briefMu.Lock()
	a.snapBrief = ""
	if snap.Symbol != "" {
		a.snapBrief = snap.Brief()
	}
	a.briefMu.Unlock()

	pos, err := a.trader.Position(ctx, a.cfg.Symbol)
	if err != nil {
		logger.Errorf("meeting aborted, position unavailable: %v", err)
		return
	}

	sig := a.runner.Run(ctx, pos, reason)
	res := a.exec.Execute(ctx, sig)
	if res.Err != nil {
		logger.Errorf("execution error meeting=%s action=%s: %v", sig.MeetingID, res.Action, res.Err)
	}

	// 落库与通知都是尽力而为
	a.audit.SaveDecision(sig, res)
	if msg := decisionMessage(sig, res); msg != "" {
		if err := a.notify.SendText(msg); err != nil {
			logger.Warnf("notify failed: %v", err)
		}
	}
}

func decisionMessage(sig *signal.TradingSignal, res executor.Result) string {
	if sig == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* consensus: %s (confidence %d, strength %.0f%%)\n",
		sig.Symbol, strings.ToUpper(string(sig.Direction)), sig.Confidence, sig.ConsensusStrength*100)
	fmt.Fprintf(&b, "action: %s → %s\n", res.Action, res.ActionTaken)
	if res.ActionTaken == "executed" {
		fmt.Fprintf(&b, "price %.4f, leverage %dx, tp %.4f, sl %.4f\n",
			res.Order.ExecutedPrice, sig.Leverage, sig.TakeProfitPrice, sig.StopLossPrice)
	}
	if res.Action == executor.ActionClose || res.Action == executor.ActionReverse {
		fmt.Fprintf(&b, "closed pnl: %.2f\n", res.ClosedPnL)
	}
	if sig.TriggerReason != "" {
		fmt.Fprintf(&b, "trigger: %s", sig.TriggerReason)
	}
	return strings.TrimSpace(b.String())
}

// Run 启动调度并阻塞到 ctx 取消。
func (a *App) Run(ctx context.Context) error {
	logger.Infof("quorum starting symbol=%s interval=%s analysts=%d",
		a.cfg.Symbol, a.cfg.Trigger.Interval, len(a.cfg.Agents.Analysts))
	a.scheduler.Run(ctx)
	return a.Close()
}

// WatchConfig 挂载配置热更新（只更新调度周期与冷却）。
func (a *App) WatchConfig(path string) error {
	return config.Watch(path, func(interval, cooldown time.Duration) {
		a.scheduler.SetInterval(interval)
		a.scheduler.SetCooldown(cooldown)
	})
}

func (a *App) Close() error {
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			logger.Warnf("close audit store: %v", err)
		}
	}
	if a.llmLog != nil {
		_ = a.llmLog.Close()
	}
	return nil
}

package trigger

import (
	"context"
	"sync"
	"time"

	"quorum/internal/logger"
	"quorum/internal/market"
)

// MeetingFunc 在持有 analyzing 锁的前提下执行一场会议（含执行环节）。
type MeetingFunc func(ctx context.Context, reason string, snap market.Snapshot)

const (
	DefaultInterval       = 15 * time.Minute
	DefaultCooldown       = 5 * time.Minute
	DefaultAcquireTimeout = 3 * time.Second
)

// Scheduler 周期性驱动触发检查。首次检查延后一个完整周期，
// 避免进程刚起来就在行情噪声里开会。
type Scheduler struct {
	Symbol    string
	Lock      *Lock
	Evaluator *Evaluator
	Meeting   MeetingFunc

	mu             sync.Mutex
	interval       time.Duration
	cooldown       time.Duration
	acquireTimeout time.Duration

	reload chan struct{}
	stop   chan struct{}
	once   sync.Once
}

func NewScheduler(symbol string, lock *Lock, ev *Evaluator, meeting MeetingFunc) *Scheduler {
	return &Scheduler{
		Symbol:         symbol,
		Lock:           lock,
		Evaluator:      ev,
		Meeting:        meeting,
		interval:       DefaultInterval,
		cooldown:       DefaultCooldown,
		acquireTimeout: DefaultAcquireTimeout,
		reload:         make(chan struct{}, 1),
		stop:           make(chan struct{}),
	}
}

// SetInterval 热更新检查周期，下一轮生效。
func (s *Scheduler) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	changed := s.interval != d
	s.interval = d
	s.mu.Unlock()
	if changed {
		s.notifyReload()
		logger.Infof("scheduler interval updated to %s", d)
	}
}

// SetCooldown 热更新会后冷却时长。
func (s *Scheduler) SetCooldown(d time.Duration) {
	if d < 0 {
		return
	}
	s.mu.Lock()
	s.cooldown = d
	s.mu.Unlock()
}

// SetAcquireTimeout 设置强占 checking 锁前的等待上限。
func (s *Scheduler) SetAcquireTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.acquireTimeout = d
	s.mu.Unlock()
}

func (s *Scheduler) notifyReload() {
	select {
	case s.reload <- struct{}{}:
	default:
	}
}

func (s *Scheduler) currentInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *Scheduler) currentCooldown() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cooldown
}

func (s *Scheduler) currentAcquireTimeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquireTimeout
}

// Run 阻塞运行调度循环，直到 ctx 取消或 Stop。
func (s *Scheduler) Run(ctx context.Context) {
	logger.Infof("scheduler started symbol=%s interval=%s", s.Symbol, s.currentInterval())
	timer := time.NewTimer(s.currentInterval())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Infof("scheduler stopped: %v", ctx.Err())
			return
		case <-s.stop:
			logger.Infof("scheduler stopped")
			return
		case <-s.reload:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(s.currentInterval())
		case <-timer.C:
			res := s.RunCheck(ctx)
			logger.Infof("scheduled check symbol=%s triggered=%v skipped=%v reason=%q",
				s.Symbol, res.Triggered, res.Skipped, res.Reason)
			timer.Reset(s.currentInterval())
		}
	}
}

func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
}

type CheckResult struct {
	Triggered bool
	Skipped   bool
	Reason    string
	At        time.Time
}

// RunCheck 执行一次完整的检查回合：占检查锁、评估、必要时开会。
// 锁被占（会议进行中或冷却期）时直接跳过。
func (s *Scheduler) RunCheck(ctx context.Context) CheckResult {
	res := CheckResult{At: time.Now()}
	if !s.Lock.AcquireCheck() {
		res.Skipped = true
		res.Reason = "lock busy: " + string(s.Lock.State())
		return res
	}

	decision, err := s.Evaluator.Evaluate(ctx, s.Symbol)
	s.Lock.ReleaseCheck()
	if err != nil {
		logger.Warnf("trigger evaluation failed symbol=%s: %v", s.Symbol, err)
		res.Skipped = true
		res.Reason = err.Error()
		return res
	}
	if !decision.Trigger {
		res.Reason = "conditions not met"
		return res
	}

	res.Reason = decision.Reason
	if !s.Lock.Acquire(s.currentAcquireTimeout()) {
		res.Skipped = true
		res.Reason = "meeting already in progress"
		return res
	}
	res.Triggered = true
	func() {
		defer s.Lock.Release(s.currentCooldown())
		s.Meeting(ctx, decision.Reason, decision.Snapshot)
	}()
	return res
}

// ForceMeeting 人工触发：跳过评估直接开会，可穿透冷却期。
func (s *Scheduler) ForceMeeting(ctx context.Context, reason string) bool {
	if !s.Lock.Acquire(s.currentAcquireTimeout()) {
		logger.Warnf("force meeting rejected symbol=%s: meeting in progress", s.Symbol)
		return false
	}
	defer s.Lock.Release(s.currentCooldown())

	var snap market.Snapshot
	if s.Evaluator != nil && s.Evaluator.Source != nil {
		if got, err := s.Evaluator.Source.Snapshot(ctx, s.Symbol); err == nil {
			snap = got
		} else {
			logger.Warnf("force meeting snapshot failed symbol=%s: %v", s.Symbol, err)
		}
	}
	if reason == "" {
		reason = "manual trigger"
	}
	s.Meeting(ctx, reason, snap)
	return true
}

package trigger

import (
	"sync"
	"time"
)

// 中文说明：
// Lock 保证任一时刻最多一场会议在进行。
// 状态机：idle → checking → analyzing → cooldown → idle。
// cooldown 到期是惰性判定的，读状态时才翻回 idle。
// Acquire 对 checking 态短暂等待后强占，对 cooldown 态直接强占
// （人工触发要能穿透冷却期），唯独 analyzing 态绝不强占。

type State string

const (
	StateIdle      State = "idle"
	StateChecking  State = "checking"
	StateAnalyzing State = "analyzing"
	StateCooldown  State = "cooldown"
)

const acquirePollInterval = 50 * time.Millisecond

type Lock struct {
	mu            sync.Mutex
	state         State
	cooldownUntil time.Time

	now func() time.Time
}

func NewLock() *Lock {
	return &Lock{state: StateIdle, now: time.Now}
}

// stateLocked 返回当前状态，顺带做冷却期惰性翻转。调用方必须持锁。
func (l *Lock) stateLocked() State {
	if l.state == StateCooldown && !l.now().Before(l.cooldownUntil) {
		l.state = StateIdle
		l.cooldownUntil = time.Time{}
	}
	return l.state
}

func (l *Lock) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stateLocked()
}

// CanTrigger 报告当前是否允许发起新一轮检查。
func (l *Lock) CanTrigger() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stateLocked() == StateIdle
}

// AcquireCheck 占住 checking 态做触发评估。占不到返回 false。
func (l *Lock) AcquireCheck() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stateLocked() != StateIdle {
		return false
	}
	l.state = StateChecking
	return true
}

// ReleaseCheck 评估结束且未触发会议时回到 idle。
func (l *Lock) ReleaseCheck() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateChecking {
		l.state = StateIdle
	}
}

// Acquire 占住 analyzing 态开会。
// checking 态在 timeout 内轮询等待，到时强占；cooldown 态直接强占；
// 已在 analyzing 态返回 false。
func (l *Lock) Acquire(timeout time.Duration) bool {
	deadline := l.now().Add(timeout)
	for {
		l.mu.Lock()
		switch l.stateLocked() {
		case StateIdle, StateCooldown:
			l.state = StateAnalyzing
			l.cooldownUntil = time.Time{}
			l.mu.Unlock()
			return true
		case StateAnalyzing:
			l.mu.Unlock()
			return false
		case StateChecking:
			if !l.now().Before(deadline) {
				// 评估环节卡死不应永久挡住会议
				l.state = StateAnalyzing
				l.mu.Unlock()
				return true
			}
		}
		l.mu.Unlock()
		time.Sleep(acquirePollInterval)
	}
}

// Release 会议结束，进入冷却期。cooldown ≤ 0 直接回 idle。
func (l *Lock) Release(cooldown time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateAnalyzing {
		return
	}
	if cooldown <= 0 {
		l.state = StateIdle
		return
	}
	l.state = StateCooldown
	l.cooldownUntil = l.now().Add(cooldown)
}

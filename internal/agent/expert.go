package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quorum/internal/gateway/provider"
	"quorum/internal/logger"
	"quorum/internal/pkg/circuit"
)

const maxOutputRunes = 8000

// Expert 由语言模型后端驱动的专家。每次调用套超时与熔断；
// 熔断打开时直接按“无响应”处理，不打到后端。
type Expert struct {
	id       string
	name     string
	provider provider.ModelProvider
	breaker  *circuit.Breaker
	timeout  time.Duration
}

func NewExpert(id, name string, p provider.ModelProvider, timeout time.Duration) *Expert {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Expert{
		id:       id,
		name:     name,
		provider: p,
		breaker:  circuit.NewBreaker("agent:"+id, 3, 2*time.Minute),
		timeout:  timeout,
	}
}

func (e *Expert) ID() string { return e.id }

func (e *Expert) Name() string {
	if e.name != "" {
		return e.name
	}
	return e.id
}

func (e *Expert) Analyze(ctx context.Context, input Input) (string, error) {
	if e.provider == nil || !e.provider.Enabled() {
		return "", fmt.Errorf("agent %s: no enabled provider", e.id)
	}
	if !e.breaker.Allow() {
		return "", fmt.Errorf("agent %s: breaker open", e.id)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	logger.LogLLMRequest(e.id, e.provider.ID(), input.System, input.User)
	start := time.Now()
	out, err := e.provider.Call(ctx, provider.ChatPayload{System: input.System, User: input.User})
	elapsed := time.Since(start).Truncate(time.Millisecond)
	if err != nil {
		e.breaker.RecordFailure()
		logger.Warnf("agent %s call failed provider=%s elapsed=%s err=%v", e.id, e.provider.ID(), elapsed, err)
		return "", err
	}
	logger.LogLLMResponse(e.id, e.provider.ID(), out)

	trimmed := strings.TrimSpace(truncateRunes(out, maxOutputRunes))
	if trimmed == "" {
		e.breaker.RecordFailure()
		return "", fmt.Errorf("agent %s: empty response", e.id)
	}
	e.breaker.RecordSuccess()
	logger.Debugf("agent %s responded provider=%s elapsed=%s chars=%d", e.id, e.provider.ID(), elapsed, len(trimmed))
	return trimmed, nil
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

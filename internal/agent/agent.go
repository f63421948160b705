package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// 中文说明：
// Agent 是一个推理单元：给它提示词，它返回自由文本或结构化观点。
// Registry 在进程启动时一次性构建，之后只读。

type Input struct {
	System string
	User   string
}

type Agent interface {
	ID() string
	Name() string
	Analyze(ctx context.Context, input Input) (string, error)
}

type Registry struct {
	byID  map[string]Agent
	order []string
}

func NewRegistry(agents ...Agent) (*Registry, error) {
	r := &Registry{byID: make(map[string]Agent, len(agents))}
	for _, a := range agents {
		if a == nil {
			continue
		}
		id := strings.TrimSpace(a.ID())
		if id == "" {
			return nil, fmt.Errorf("agent with empty id")
		}
		if _, dup := r.byID[id]; dup {
			return nil, fmt.Errorf("duplicate agent id %q", id)
		}
		r.byID[id] = a
		r.order = append(r.order, id)
	}
	return r, nil
}

func (r *Registry) Get(id string) (Agent, bool) {
	if r == nil {
		return nil, false
	}
	a, ok := r.byID[strings.TrimSpace(id)]
	return a, ok
}

// List 按注册顺序返回所有 agent。
func (r *Registry) List() []Agent {
	if r == nil {
		return nil
	}
	out := make([]Agent, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// IDs 返回排序后的 agent id，用于日志与测试。
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	ids := append([]string(nil), r.order...)
	sort.Strings(ids)
	return ids
}

package provider

import "context"

type ChatPayload struct {
	System    string
	User      string
	MaxTokens int
}

// ModelProvider 语言模型后端的窄接口：给提示词、还文本，不保证输出格式。
type ModelProvider interface {
	ID() string
	Enabled() bool

	Call(ctx context.Context, payload ChatPayload) (string, error)
}

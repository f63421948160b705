package logger

import (
	"io"
	"log"
	"strings"
	"sync"
)

// 中文说明：
// LLM 会话日志：将每次模型请求/响应完整落盘，便于审计与回放。
// 默认关闭，调用 SetLLMWriter 后生效。

var (
	llmMu  sync.Mutex
	llmLog *log.Logger
)

func SetLLMWriter(w io.Writer) {
	llmMu.Lock()
	defer llmMu.Unlock()
	if w == nil {
		llmLog = nil
		return
	}
	llmLog = log.New(w, "", log.LstdFlags)
}

type llmSection struct {
	Title string
	Body  string
}

func logLLM(kind, agent, provider string, sections []llmSection) {
	llmMu.Lock()
	l := llmLog
	llmMu.Unlock()
	if l == nil {
		return
	}
	var b strings.Builder
	b.WriteString("[LLM]")
	for _, tag := range []string{kind, agent, provider} {
		if tag == "" {
			continue
		}
		b.WriteString("[")
		b.WriteString(tag)
		b.WriteString("]")
	}
	b.WriteString("\n")
	for _, sec := range sections {
		title := strings.TrimSpace(sec.Title)
		if title == "" {
			title = "CONTENT"
		}
		body := strings.TrimSpace(sec.Body)
		if body == "" {
			continue
		}
		b.WriteString("----- " + title + " -----\n")
		b.WriteString(body)
		b.WriteString("\n")
	}
	l.Print(b.String())
}

// LogLLMRequest 记录一次模型请求（system+user 提示词）。
func LogLLMRequest(agent, provider, system, user string) {
	logLLM("request", agent, provider, []llmSection{
		{Title: "SYSTEM", Body: system},
		{Title: "USER", Body: user},
	})
}

// LogLLMResponse 记录模型响应原文。
func LogLLMResponse(agent, provider, output string) {
	logLLM("response", agent, provider, []llmSection{
		{Title: "OUTPUT", Body: output},
	})
}

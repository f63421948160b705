package notifier

// Notifier 决策推送的窄接口；失败只记日志，不影响执行。
type Notifier interface {
	SendText(text string) error
}

// Nop 未配置通知渠道时的空实现。
type Nop struct{}

func (Nop) SendText(string) error { return nil }

package config

import "time"

// 中文说明：
// 配置结构按 yaml 标签解码。时长字段一律写 "15m" 这类 Go 格式，
// WeaklyTypedInput 负责把字符串转成 time.Duration。

type Config struct {
	Symbol   string `yaml:"symbol"`
	LogLevel string `yaml:"log_level"`

	// LLMLogPath 非空时把模型请求与响应原文写到该文件
	LLMLogPath string `yaml:"llm_log_path"`

	Providers []ProviderConfig `yaml:"providers"`
	Agents    AgentsConfig     `yaml:"agents"`
	Trigger   TriggerConfig    `yaml:"trigger"`
	Executor  ExecutorConfig   `yaml:"executor"`
	Market    MarketConfig     `yaml:"market"`
	Store     StoreConfig      `yaml:"store"`
	Notifier  NotifierConfig   `yaml:"notifier"`
}

type ProviderConfig struct {
	ID          string        `yaml:"id"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	Disabled    bool          `yaml:"disabled"`
}

type AgentConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Provider string `yaml:"provider"`
}

type AgentsConfig struct {
	Analysts []AgentConfig `yaml:"analysts"`
	Risk     *AgentConfig  `yaml:"risk"`
	Leader   *AgentConfig  `yaml:"leader"`
	// Gatekeeper 可选：触发检查阶段的模型守门员
	Gatekeeper *AgentConfig `yaml:"gatekeeper"`

	Timeout     time.Duration `yaml:"timeout"`
	Parallelism int           `yaml:"parallelism"`
	MinVotes    int           `yaml:"min_votes"`
}

type TriggerConfig struct {
	Interval       time.Duration `yaml:"interval"`
	Cooldown       time.Duration `yaml:"cooldown"`
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`

	ChangeThresholdPct float64 `yaml:"change_threshold_pct"`
	RSIOversold        float64 `yaml:"rsi_oversold"`
	RSIOverbought      float64 `yaml:"rsi_overbought"`
}

type ExecutorConfig struct {
	AmountPercent     float64 `yaml:"amount_percent"`
	MinAddAmount      float64 `yaml:"min_add_amount"`
	FloorBalance      float64 `yaml:"floor_balance"`
	AddConfidence     int     `yaml:"add_confidence"`
	ReverseConfidence int     `yaml:"reverse_confidence"`

	// PaperBalance 模拟盘初始保证金（USDT）
	PaperBalance float64 `yaml:"paper_balance"`
}

type MarketConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Interval    string        `yaml:"interval"`
	KlineLimit  int           `yaml:"kline_limit"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type NotifierConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

package config

import "time"

func (c *Config) applyDefaults() {
	if c.Symbol == "" {
		c.Symbol = "BTCUSDT"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	for i := range c.Providers {
		p := &c.Providers[i]
		if p.Timeout <= 0 {
			p.Timeout = 90 * time.Second
		}
		if p.MaxRetries <= 0 {
			p.MaxRetries = 3
		}
	}

	if c.Agents.Timeout <= 0 {
		c.Agents.Timeout = 90 * time.Second
	}
	if c.Agents.Parallelism <= 0 {
		c.Agents.Parallelism = 1
	}
	if c.Agents.MinVotes <= 0 {
		c.Agents.MinVotes = 2
	}

	if c.Trigger.Interval <= 0 {
		c.Trigger.Interval = 15 * time.Minute
	}
	if c.Trigger.Cooldown <= 0 {
		c.Trigger.Cooldown = 5 * time.Minute
	}
	if c.Trigger.AcquireTimeout <= 0 {
		c.Trigger.AcquireTimeout = 3 * time.Second
	}
	if c.Trigger.ChangeThresholdPct <= 0 {
		c.Trigger.ChangeThresholdPct = 3.0
	}
	if c.Trigger.RSIOversold <= 0 {
		c.Trigger.RSIOversold = 25
	}
	if c.Trigger.RSIOverbought <= 0 {
		c.Trigger.RSIOverbought = 75
	}

	if c.Executor.AmountPercent <= 0 {
		c.Executor.AmountPercent = 10
	}
	if c.Executor.MinAddAmount <= 0 {
		c.Executor.MinAddAmount = 10
	}
	if c.Executor.AddConfidence <= 0 {
		c.Executor.AddConfidence = 70
	}
	if c.Executor.ReverseConfidence <= 0 {
		c.Executor.ReverseConfidence = 75
	}
	if c.Executor.PaperBalance <= 0 {
		c.Executor.PaperBalance = 10000
	}

	if c.Market.Interval == "" {
		c.Market.Interval = "15m"
	}
	if c.Market.KlineLimit <= 0 {
		c.Market.KlineLimit = 100
	}
	if c.Market.HTTPTimeout <= 0 {
		c.Market.HTTPTimeout = 15 * time.Second
	}

	if c.Store.Path == "" {
		c.Store.Path = "data/quorum.db"
	}
}

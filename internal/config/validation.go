package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider is required")
	}
	providerIDs := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return fmt.Errorf("providers[%d]: id is required", i)
		}
		if providerIDs[id] {
			return fmt.Errorf("duplicate provider id %q", id)
		}
		providerIDs[id] = true
		if !p.Disabled && strings.TrimSpace(p.BaseURL) == "" {
			return fmt.Errorf("provider %q: base_url is required", id)
		}
		if !p.Disabled && strings.TrimSpace(p.Model) == "" {
			return fmt.Errorf("provider %q: model is required", id)
		}
	}

	if len(c.Agents.Analysts) < c.Agents.MinVotes {
		return fmt.Errorf("need at least %d analysts, got %d", c.Agents.MinVotes, len(c.Agents.Analysts))
	}
	agentIDs := make(map[string]bool)
	checkAgent := func(role string, a *AgentConfig) error {
		if a == nil {
			return nil
		}
		id := strings.TrimSpace(a.ID)
		if id == "" {
			return fmt.Errorf("%s agent: id is required", role)
		}
		if agentIDs[id] {
			return fmt.Errorf("duplicate agent id %q", id)
		}
		agentIDs[id] = true
		if !providerIDs[strings.TrimSpace(a.Provider)] {
			return fmt.Errorf("%s agent %q references unknown provider %q", role, id, a.Provider)
		}
		return nil
	}
	for i := range c.Agents.Analysts {
		if err := checkAgent("analyst", &c.Agents.Analysts[i]); err != nil {
			return err
		}
	}
	if err := checkAgent("risk", c.Agents.Risk); err != nil {
		return err
	}
	if err := checkAgent("leader", c.Agents.Leader); err != nil {
		return err
	}
	if err := checkAgent("gatekeeper", c.Agents.Gatekeeper); err != nil {
		return err
	}

	if c.Executor.AmountPercent > 100 {
		return fmt.Errorf("executor.amount_percent must be <= 100, got %.1f", c.Executor.AmountPercent)
	}
	if c.Trigger.RSIOversold >= c.Trigger.RSIOverbought {
		return fmt.Errorf("trigger.rsi_oversold (%.0f) must be below rsi_overbought (%.0f)",
			c.Trigger.RSIOversold, c.Trigger.RSIOverbought)
	}

	if c.Notifier.Telegram.Enabled {
		if c.Notifier.Telegram.BotToken == "" || c.Notifier.Telegram.ChatID == "" {
			return fmt.Errorf("telegram notifier enabled but bot_token/chat_id missing")
		}
	}
	return nil
}

package app

import (
	"path/filepath"
	"testing"
	"time"

	"quorum/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Symbol:   "BTCUSDT",
		LogLevel: "info",
		Providers: []config.ProviderConfig{
			{ID: "main", BaseURL: "https://api.example.com/v1", Model: "m", Timeout: time.Minute, MaxRetries: 1},
		},
		Agents: config.AgentsConfig{
			Analysts: []config.AgentConfig{
				{ID: "trend", Name: "Trend", Provider: "main"},
				{ID: "momo", Name: "Momentum", Provider: "main"},
			},
			Risk:        &config.AgentConfig{ID: "risk", Provider: "main"},
			Leader:      &config.AgentConfig{ID: "leader", Provider: "main"},
			Timeout:     time.Minute,
			Parallelism: 2,
			MinVotes:    2,
		},
		Trigger: config.TriggerConfig{
			Interval:           15 * time.Minute,
			Cooldown:           5 * time.Minute,
			AcquireTimeout:     2 * time.Second,
			ChangeThresholdPct: 3,
			RSIOversold:        25,
			RSIOverbought:      75,
		},
		Executor: config.ExecutorConfig{
			AmountPercent: 10,
			MinAddAmount:  10,
			PaperBalance:  1000,
		},
		Market: config.MarketConfig{Interval: "15m", KlineLimit: 100, HTTPTimeout: 10 * time.Second},
		Store:  config.StoreConfig{Path: filepath.Join(t.TempDir(), "audit.db")},
	}
}

func TestNewWiresRegistryIntoRunner(t *testing.T) {
	a, err := New(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	// 注册表是分发源：会议角色必须都能从里面按 id 取到
	assert.Equal(t, []string{"leader", "momo", "risk", "trend"}, a.registry.IDs())

	require.Len(t, a.runner.Analysts, 2)
	assert.Equal(t, "trend", a.runner.Analysts[0].ID())
	fromReg, ok := a.registry.Get("trend")
	require.True(t, ok)
	assert.Same(t, fromReg, a.runner.Analysts[0])

	require.NotNil(t, a.runner.Risk)
	assert.Equal(t, "risk", a.runner.Risk.ID())
	require.NotNil(t, a.runner.Leader)
	assert.Equal(t, "leader", a.runner.Leader.ID())
}

func TestNewRejectsUnknownProviderRef(t *testing.T) {
	cfg := testConfig(t)
	cfg.Agents.Leader.Provider = "ghost"
	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestNewRejectsDuplicateAgentIDs(t *testing.T) {
	cfg := testConfig(t)
	cfg.Agents.Risk.ID = "trend"
	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

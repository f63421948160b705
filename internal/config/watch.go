package config

import (
	"sync"
	"time"

	"quorum/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// 中文说明：
// 只热更新改了也安全的字段：触发周期与冷却时长。
// 其余字段（专家编制、交易参数）改动需要重启，热改这些等于
// 在会议中途换人。

type ReloadFunc func(interval, cooldown time.Duration)

// Watch 监听配置文件变更。编辑器保存常触发连续多个事件，
// 做 500ms 去抖后整体重读一次。
func Watch(path string, onReload ReloadFunc) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	var mu sync.Mutex
	var pending *time.Timer
	v.OnConfigChange(func(e fsnotify.Event) {
		mu.Lock()
		defer mu.Unlock()
		if pending != nil {
			pending.Stop()
		}
		pending = time.AfterFunc(500*time.Millisecond, func() {
			reload(path, onReload)
		})
	})
	v.WatchConfig()
	logger.Infof("config watcher started path=%s", path)
	return nil
}

func reload(path string, onReload ReloadFunc) {
	cfg, err := Load(path)
	if err != nil {
		logger.Warnf("config reload failed, keeping previous values: %v", err)
		return
	}
	logger.Infof("config reloaded interval=%s cooldown=%s", cfg.Trigger.Interval, cfg.Trigger.Cooldown)
	onReload(cfg.Trigger.Interval, cfg.Trigger.Cooldown)
}

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quorum/internal/executor"
	"quorum/internal/logger"
	"quorum/internal/signal"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 中文说明：
// 决策审计库。每场会议落一条记录，投票明细整体塞进 JSON 列，
// 方便后续排查“当时各专家怎么说的”。写入失败只记日志，
// 绝不反过来影响交易链路。

type DecisionRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	MeetingID string `gorm:"size:64;uniqueIndex"`
	Symbol    string `gorm:"size:32;index"`

	Direction         string `gorm:"size:16"`
	Confidence        int
	ConsensusStrength float64
	Leverage          int
	EntryPrice        float64
	TakeProfitPrice   float64
	StopLossPrice     float64

	Action      string `gorm:"size:24"`
	ActionTaken string `gorm:"size:32"`

	TriggerReason string
	Reasoning     string
	Votes         datatypes.JSON

	CreatedAt time.Time `gorm:"index"`
}

func (DecisionRecord) TableName() string { return "decision_records" }

type AuditStore struct {
	db *gorm.DB
}

func NewAuditStore(path string) (*AuditStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("audit store: path is required")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("audit store: create dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("audit store: open: %w", err)
	}
	if err := db.AutoMigrate(&DecisionRecord{}); err != nil {
		return nil, fmt.Errorf("audit store: migrate: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &AuditStore{db: db}, nil
}

// SaveDecision 落库一条决策。失败只打日志。
func (s *AuditStore) SaveDecision(sig *signal.TradingSignal, res executor.Result) {
	if s == nil || sig == nil {
		return
	}
	votesJSON, err := json.Marshal(sig.Votes)
	if err != nil {
		logger.Warnf("audit: marshal votes for %s: %v", sig.MeetingID, err)
		votesJSON = []byte("[]")
	}
	rec := DecisionRecord{
		MeetingID:         sig.MeetingID,
		Symbol:            sig.Symbol,
		Direction:         string(sig.Direction),
		Confidence:        sig.Confidence,
		ConsensusStrength: sig.ConsensusStrength,
		Leverage:          sig.Leverage,
		EntryPrice:        sig.EntryPrice,
		TakeProfitPrice:   sig.TakeProfitPrice,
		StopLossPrice:     sig.StopLossPrice,
		Action:            string(res.Action),
		ActionTaken:       res.ActionTaken,
		TriggerReason:     sig.TriggerReason,
		Reasoning:         sig.Reasoning,
		Votes:             datatypes.JSON(votesJSON),
		CreatedAt:         time.Now(),
	}
	if err := s.db.Create(&rec).Error; err != nil {
		logger.Warnf("audit: save decision %s: %v", sig.MeetingID, err)
	}
}

// Recent 取最近 n 条决策，用于启动后自检与人工排查。
func (s *AuditStore) Recent(n int) ([]DecisionRecord, error) {
	if n <= 0 {
		n = 20
	}
	var out []DecisionRecord
	err := s.db.Order("created_at DESC").Limit(n).Find(&out).Error
	return out, err
}

func (s *AuditStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UsageRecord 記錄一次 AI 生成的 token 用量與費用，只會新增
type UsageRecord struct {
	gorm.Model
	Room           string    `json:"room" gorm:"type:varchar(50);not null;index"`
	PromptTokens   int       `json:"prompt_tokens" gorm:"not null"`
	ResponseTokens int       `json:"response_tokens" gorm:"not null"`
	TotalTokens    int       `json:"total_tokens" gorm:"not null"`
	CostMicros     int64     `json:"cost_micros" gorm:"not null"` // 美元 × 10^6
	Timestamp      time.Time `json:"timestamp" gorm:"not null"`
}

// Cost 以六位小數的定點數回傳費用（美元）
func (u UsageRecord) Cost() decimal.Decimal {
	return decimal.New(u.CostMicros, -6)
}

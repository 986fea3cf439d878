// Package usage 記錄 AI 生成的費用，並回答累計花費與預算上限的查詢。
package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"planroom/internal/models"
)

var ErrLimitReached = errors.New("ai usage limit reached")

// Scope 決定累計花費的範圍
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeRoom   Scope = "room"
)

// Store 是用量紀錄的持久化介面
type Store interface {
	SaveUsage(ctx context.Context, record *models.UsageRecord) error
	// SumCostMicros 加總費用；room 為空字串時加總全部
	SumCostMicros(ctx context.Context, room string) (int64, error)
}

type Ledger struct {
	store   Store
	scope   Scope
	ceiling decimal.Decimal
	now     func() time.Time
}

func NewLedger(store Store, scope Scope, ceiling decimal.Decimal) *Ledger {
	return &Ledger{store: store, scope: scope, ceiling: ceiling, now: time.Now}
}

// ParseCeiling 解析設定中的預算上限字串
func ParseCeiling(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid spend ceiling %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("spend ceiling must not be negative: %s", s)
	}
	return d, nil
}

func (l *Ledger) Scope() Scope              { return l.scope }
func (l *Ledger) Ceiling() decimal.Decimal { return l.ceiling }

// Record 新增一筆用量紀錄
func (l *Ledger) Record(ctx context.Context, room string, promptTokens, responseTokens int) (*models.UsageRecord, error) {
	record := &models.UsageRecord{
		Room:           room,
		PromptTokens:   promptTokens,
		ResponseTokens: responseTokens,
		TotalTokens:    promptTokens + responseTokens,
		CostMicros:     ToMicros(Cost(promptTokens, responseTokens)),
		Timestamp:      l.now(),
	}
	if err := l.store.SaveUsage(ctx, record); err != nil {
		return nil, fmt.Errorf("record usage: %w", err)
	}
	return record, nil
}

// TotalSpent 依設定的範圍回傳累計花費
func (l *Ledger) TotalSpent(ctx context.Context, room string) (decimal.Decimal, error) {
	key := room
	if l.scope == ScopeGlobal {
		key = ""
	}
	micros, err := l.store.SumCostMicros(ctx, key)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum usage: %w", err)
	}
	return FromMicros(micros), nil
}

// CheckBudget 在累計花費達到上限時回傳 ErrLimitReached
func (l *Ledger) CheckBudget(ctx context.Context, room string) (decimal.Decimal, error) {
	spent, err := l.TotalSpent(ctx, room)
	if err != nil {
		return decimal.Zero, err
	}
	if spent.GreaterThanOrEqual(l.ceiling) {
		return spent, ErrLimitReached
	}
	return spent, nil
}

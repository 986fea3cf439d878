package repository

import (
	"context"

	"planroom/internal/models"
	"planroom/internal/storage"
)

type UsageRepository interface {
	Create(ctx context.Context, record *models.UsageRecord) error
	// SumCostMicros 加總費用；room 為空字串時加總所有房間
	SumCostMicros(ctx context.Context, room string) (int64, error)
	FindByRoom(ctx context.Context, room string) ([]models.UsageRecord, error)
}

type usageRepository struct {
	db *storage.PostgresDB
}

func NewUsageRepository(db *storage.PostgresDB) UsageRepository {
	return &usageRepository{db: db}
}

func (r *usageRepository) Create(ctx context.Context, record *models.UsageRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *usageRepository) SumCostMicros(ctx context.Context, room string) (int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&models.UsageRecord{})
	if room != "" {
		q = q.Where("room = ?", room)
	}
	err := q.Select("COALESCE(SUM(cost_micros), 0)").Scan(&total).Error
	return total, err
}

func (r *usageRepository) FindByRoom(ctx context.Context, room string) ([]models.UsageRecord, error) {
	var records []models.UsageRecord
	err := r.db.WithContext(ctx).
		Where("room = ?", room).
		Order("timestamp asc").
		Find(&records).Error
	return records, err
}

package repository

import (
	"context"

	"toko/internal/domain/model"
	repo "toko/internal/repository"

	"gorm.io/gorm"
)

type orderEventGormRepository struct {
	db *gorm.DB
}

func NewOrderEventGormRepository(db *gorm.DB) repo.OrderEventRepository {
	return &orderEventGormRepository{db: db}
}

func (r *orderEventGormRepository) Create(ctx context.Context, ev model.OrderEvent) error {
	if err := r.db.WithContext(ctx).Create(&ev).Error; err != nil {
		return err
	}
	return nil
}

func (r *orderEventGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderEvent, error) {
	var evs []model.OrderEvent
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id desc").
		Find(&evs).Error
	if err != nil {
		return nil, err
	}
	return evs, nil
}

package repository

import (
	"context"
	"errors"

	"toko/internal/domain/model"
	repo "toko/internal/repository"

	"gorm.io/gorm"
)

type paymentNotificationGormRepository struct {
	db *gorm.DB
}

func NewPaymentNotificationGormRepository(db *gorm.DB) repo.PaymentNotificationRepository {
	return &paymentNotificationGormRepository{db: db}
}

func (r *paymentNotificationGormRepository) Create(ctx context.Context, n model.PaymentNotification) error {
	err := r.db.WithContext(ctx).Create(&n).Error
	//ユニーク制約違反は重複通知として呼び出し側に知らせる
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repo.ErrDuplicateNotification
	}
	if err != nil {
		return err
	}
	return nil
}

func (r *paymentNotificationGormRepository) ListByOrderNumber(ctx context.Context, orderNumber string) ([]model.PaymentNotification, error) {
	var logs []model.PaymentNotification
	err := r.db.WithContext(ctx).
		Where("order_number = ?", orderNumber).
		Order("id desc").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

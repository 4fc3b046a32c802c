package repository

import (
	"context"

	"toko/internal/domain/model"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}

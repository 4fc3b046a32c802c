package repository

import (
	"context"

	"toko/internal/domain/model"
)

// 商品の読み取りだけを約束。CRUDのライフサイクルはこのサービスの外
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)
}

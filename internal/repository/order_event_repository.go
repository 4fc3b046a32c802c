package repository

import (
	"context"

	"toko/internal/domain/model"
)

// 注文イベント（監査ログ）の保存・一覧取得の約束
type OrderEventRepository interface {
	//イベントを1件保存
	Create(ctx context.Context, ev model.OrderEvent) error

	//注文IDでイベントを一覧（新しい順）
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderEvent, error)
}

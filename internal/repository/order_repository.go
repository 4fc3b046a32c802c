package repository

import (
	"context"
	"errors"

	"toko/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 管理者一覧の絞り込み条件
type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
}

// 支払いステータス更新の入力。
// transaction idは通知に入っていないこともあるのでnullable
type PaymentStatusUpdate struct {
	Status               model.OrderStatus
	PaymentStatus        model.PaymentStatus
	GatewayTransactionID *string
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	//注文番号で1件取得
	FindByOrderNumber(ctx context.Context, orderNumber string) (model.Order, error)
	Create(ctx context.Context, order model.Order) (int64, error)

	//管理者によるステータス上書き
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	//ゲートウェイ通知による更新（注文番号で特定）
	UpdatePaymentStatus(ctx context.Context, orderNumber string, upd PaymentStatusUpdate) error
	//決済セッション作成後にtokenを保存する
	SetPaymentToken(ctx context.Context, orderID int64, token string) error
	//フォールバック時に支払い方法を書き換える
	UpdatePaymentMethod(ctx context.Context, orderID int64, method model.PaymentMethod) error

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}

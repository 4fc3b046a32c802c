package repository

import (
	"context"
	"errors"

	"toko/internal/domain/model"
)

// 同一(注文番号, transaction id, status)の通知を既に保存済み
var ErrDuplicateNotification = errors.New("duplicate notification")

// 支払い通知の生ログの約束（追記専用）
type PaymentNotificationRepository interface {
	//通知を1件保存。重複はErrDuplicateNotificationを返す
	Create(ctx context.Context, n model.PaymentNotification) error

	//注文番号でログを一覧（新しい順）
	ListByOrderNumber(ctx context.Context, orderNumber string) ([]model.PaymentNotification, error)
}

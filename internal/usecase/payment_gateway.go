package usecase

import (
	"context"

	"toko/internal/domain/model"
)

// 決済セッション作成の結果
type PaymentSession struct {
	Token       string
	RedirectURL string
}

// ゲートウェイが報告してくるトランザクションの状態
type GatewayStatus struct {
	OrderNumber       string
	TransactionStatus string
	FraudStatus       string
	TransactionID     string
	PaymentType       string
	GrossAmount       int64
}

// usecaseが決済ゲートウェイに依存する約束。
// 実装はinternal/infra/payment
type PaymentGateway interface {
	//ホスト型チェックアウトのセッションを作る
	CreateTransaction(ctx context.Context, order model.Order, items []model.OrderItem) (PaymentSession, error)

	//注文番号でトランザクションの現在状態を問い合わせる
	CheckTransaction(ctx context.Context, orderNumber string) (GatewayStatus, error)
}

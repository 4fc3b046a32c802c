package model

import "time"

// 注文のステータス（処理のライフサイクル）
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	//captureのfraud_statusがaccept以外のとき
	OrderStatusChallenge OrderStatus = "challenge"
)

// 支払いのステータス（注文ステータスとは独立）
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusDenied    PaymentStatus = "denied"
	PaymentStatusExpired   PaymentStatus = "expired"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// 支払い方法
type PaymentMethod string

const (
	//代金引換（オフライン）
	PaymentMethodCOD PaymentMethod = "COD"
	//Midtrans経由のオンライン決済
	PaymentMethodMidtrans PaymentMethod = "midtrans"
)

// ゲートウェイ決済が必要かどうか
func (m PaymentMethod) IsOnline() bool {
	return m == PaymentMethodMidtrans
}

type Order struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//外部向け注文番号。ゲートウェイのtransaction idにもなるのでユニーク必須
	OrderNumber string `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_number"`

	//ゲスト注文はnull
	UserID *int64 `gorm:"index" json:"user_id,omitempty"`

	CustomerName    string `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone   string `gorm:"type:varchar(20);not null" json:"customer_phone"`
	CustomerAddress string `gorm:"type:text;not null" json:"customer_address"`

	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`

	//最小通貨単位。明細の合計と一致すること
	Total int64 `gorm:"not null" json:"total"`

	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`

	//Snapのtoken（オンライン決済のみ）
	PaymentToken *string `gorm:"type:varchar(255)" json:"payment_token,omitempty"`
	//ゲートウェイが通知してきたtransaction id
	GatewayTransactionID *string `gorm:"type:varchar(255)" json:"gateway_transaction_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

package model

import "time"

// ゲートウェイからの支払い通知の生ログ（追記専用）。
// 重複通知も1行ずつ残すが、同一(注文番号, transaction id, status)は
// ユニーク制約で弾いてストレージ層でも冪等にする。
type PaymentNotification struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	OrderNumber string `gorm:"type:varchar(64);not null;index;uniqueIndex:uniq_notification" json:"order_number"`

	//ゲートウェイが報告してきた支払い種別（gopay/qrisなど）
	PaymentType string `gorm:"type:varchar(50);not null" json:"payment_type"`

	GrossAmount int64 `gorm:"not null" json:"gross_amount"`

	TransactionStatus string `gorm:"type:varchar(30);not null;uniqueIndex:uniq_notification" json:"transaction_status"`
	TransactionID     string `gorm:"type:varchar(255);not null;uniqueIndex:uniq_notification" json:"transaction_id"`

	//解釈前のペイロードをそのまま保存（監査・リプレイ用）
	RawPayload string `gorm:"type:text" json:"raw_payload"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

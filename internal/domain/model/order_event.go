package model

import "time"

// 注文に対するイベントの種類
type OrderEventType string

const (
	//ゲートウェイ通知でステータスを更新した
	OrderEventPaymentStatus OrderEventType = "PAYMENT_STATUS"
	//ゲートウェイ障害でCODにフォールバックした
	OrderEventGatewayFallback OrderEventType = "GATEWAY_FALLBACK"
	//検証できなかった通知をそのまま適用した（要手動確認）
	OrderEventUnverifiedUpdate OrderEventType = "UNVERIFIED_UPDATE"
	//管理者がステータスを上書きした
	OrderEventAdminOverride OrderEventType = "ADMIN_OVERRIDE"
)

// 注文ごとの監査イベント（1イベント1行）。
// 文字列連結のnotes欄の代わりに構造化して残す。
type OrderEvent struct {
	ID      int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID int64 `gorm:"not null;index" json:"order_id"`

	//操作したユーザーのID。システム起点（webhook等）は0
	ActorUserID int64 `gorm:"not null" json:"actor_user_id"`

	EventType OrderEventType `gorm:"type:varchar(50);not null;index" json:"event_type"`

	//JSON文字列で保存する
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

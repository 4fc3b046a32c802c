package model

import "time"

// 注文明細。注文と同時に作成して以後変更しない
type OrderItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64 `gorm:"not null;index" json:"order_id"`
	ProductID int64 `gorm:"not null;index" json:"product_id"`

	//注文時点の商品名スナップショット（商品側の変更に追従しない）
	Name string `gorm:"type:varchar(255);not null" json:"name"`
	//注文時点の単価スナップショット
	Price int64 `gorm:"not null" json:"price"`

	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

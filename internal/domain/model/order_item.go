package model

import "time"

// 注文明細
// PriceCentsは購入時点の価格のコピー（商品価格が変わっても変えない）。
type OrderItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64     `gorm:"not null;index" json:"order_id"`
	ProductID  int64     `gorm:"not null;index" json:"product_id"`
	Quantity   int64     `gorm:"not null" json:"quantity"`
	PriceCents int64     `gorm:"not null" json:"price_cents"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`

	Order   *Order   `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
}

package model

import "time"

// カートの明細
// (user_id, product_id) で1行。同じ商品の追加は数量を加算する。
type CartItem struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	ProductID int64     `gorm:"primaryKey;autoIncrement:false;index" json:"product_id"`
	Quantity  int64     `gorm:"not null;check:quantity > 0" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`

	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
}

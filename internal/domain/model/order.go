package model

import "time"

type OrderStatus string

const (
	//注文直後のステータス（このアプリでは遷移しない）
	OrderStatusPlaced OrderStatus = "placed"
)

type PaymentMethod string

const (
	//代金引換のみ
	PaymentMethodCOD PaymentMethod = "COD"
)

// 注文のスナップショット。作成後は更新しない。
type Order struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64         `gorm:"not null;index" json:"user_id"`
	TotalCents    int64         `gorm:"not null" json:"total_cents"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(50);not null" json:"payment_method"`
	Status        OrderStatus   `gorm:"type:varchar(50);not null" json:"status"`
	CreatedAt     time.Time     `gorm:"not null;index" json:"created_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
}

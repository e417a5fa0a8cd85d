package model

import "time"

// 電話番号で識別するユーザー
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Phone        string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`
	Name         string    `gorm:"type:varchar(255)" json:"name"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	TokenVersion int       `gorm:"not null;default:0" json:"token_version"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

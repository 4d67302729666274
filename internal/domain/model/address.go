package model

import "time"

// 配送先住所（住所管理は別機能。注文時は値をコピーする）
type Address struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//宛名
	Name string `gorm:"type:varchar(255);not null" json:"name"`

	//電話番号
	Phone string `gorm:"type:varchar(30)" json:"phone"`

	//住所本文
	AddressLine string `gorm:"type:text;not null" json:"address_line"`

	//建物名・階
	Building string `gorm:"type:varchar(255)" json:"building"`
	Floor    string `gorm:"type:varchar(50)" json:"floor"`

	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

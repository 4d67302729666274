package model

import "time"

// 客席テーブル。
// UnderMaintenanceは管理者が切り替えるフラグで、予約の有無とは無関係。
type Table struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code             string    `gorm:"type:varchar(20);not null;uniqueIndex" json:"code"`
	Capacity         int       `gorm:"not null;index" json:"capacity"`
	Location         string    `gorm:"type:varchar(100)" json:"location"`
	UnderMaintenance bool      `gorm:"not null;default:false" json:"under_maintenance"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityOccupied    AvailabilityStatus = "occupied"
	AvailabilityMaintenance AvailabilityStatus = "maintenance"
)

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。確定後は変更しない。
type OrderItem struct {
	ID               int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID          int64               `gorm:"not null;index" json:"order_id"`
	DishID           int64               `gorm:"not null;index" json:"dish_id"`
	Name             string              `gorm:"type:varchar(255);not null" json:"name"`
	Description      string              `gorm:"type:text" json:"description"`
	BasePrice        decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"base_price"`
	PromotionalPrice decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"promotional_price"`
	UnitPrice        decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	ModifiersTotal   decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"modifiers_total"`
	Quantity         int64               `gorm:"not null" json:"quantity"`
	LineTotal        decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"line_total"`
	Addons           Modifiers           `gorm:"type:jsonb;not null;default:'[]'" json:"addons"`
	Variants         Modifiers           `gorm:"type:jsonb;not null;default:'[]'" json:"variants"`
	CreatedAt        time.Time           `gorm:"not null;autoCreateTime" json:"created_at"`
}

// パッケージの注文明細
type OrderPackageItem struct {
	ID               int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID          int64               `gorm:"not null;index" json:"order_id"`
	PackageID        int64               `gorm:"not null;index" json:"package_id"`
	Name             string              `gorm:"type:varchar(255);not null" json:"name"`
	Description      string              `gorm:"type:text" json:"description"`
	BasePrice        decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"base_price"`
	PromotionalPrice decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"promotional_price"`
	UnitPrice        decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	ModifiersTotal   decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"modifiers_total"`
	Quantity         int64               `gorm:"not null" json:"quantity"`
	LineTotal        decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"line_total"`
	Dishes           PackageDishes       `gorm:"type:jsonb;not null;default:'[]'" json:"dishes"`
	CreatedAt        time.Time           `gorm:"not null;autoCreateTime" json:"created_at"`
}

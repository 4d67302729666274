package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細（単品）
// 名前・価格・addon/variantは追加時点の値を保存する。
type CartItem struct {
	ID               int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID           int64               `gorm:"not null;index" json:"cart_id"`
	DishID           int64               `gorm:"not null;index" json:"dish_id"`
	Name             string              `gorm:"type:varchar(255);not null" json:"name"`
	Description      string              `gorm:"type:text" json:"description"`
	BasePrice        decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"base_price"`
	PromotionalPrice decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"promotional_price"`
	Quantity         int64               `gorm:"not null" json:"quantity"`
	Addons           Modifiers           `gorm:"type:jsonb;not null;default:'[]'" json:"addons"`
	Variants         Modifiers           `gorm:"type:jsonb;not null;default:'[]'" json:"variants"`
	CreatedAt        time.Time           `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// カートの明細（パッケージ）
type CartPackageItem struct {
	ID               int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID           int64               `gorm:"not null;index" json:"cart_id"`
	PackageID        int64               `gorm:"not null;index" json:"package_id"`
	Name             string              `gorm:"type:varchar(255);not null" json:"name"`
	Description      string              `gorm:"type:text" json:"description"`
	BasePrice        decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"base_price"`
	PromotionalPrice decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"promotional_price"`
	Quantity         int64               `gorm:"not null" json:"quantity"`
	Dishes           PackageDishes       `gorm:"type:jsonb;not null;default:'[]'" json:"dishes"`
	CreatedAt        time.Time           `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

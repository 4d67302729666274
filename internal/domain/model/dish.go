package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// カタログ（メニュー管理は別システム）。カート追加時の参照だけに使う。
type Dish struct {
	ID               int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string              `gorm:"type:varchar(255);not null" json:"name"`
	Description      string              `gorm:"type:text" json:"description"`
	BasePrice        decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"base_price"`
	PromotionalPrice decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"promotional_price"`
	IsActive         bool                `gorm:"not null;default:false" json:"is_active"`
	Addons           []DishAddon         `gorm:"foreignKey:DishID" json:"addons"`
	Variants         []DishVariant       `gorm:"foreignKey:DishID" json:"variants"`
	CreatedAt        time.Time           `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt      `gorm:"index" json:"-"`
}

type DishAddon struct {
	ID     int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	DishID int64           `gorm:"not null;index" json:"dish_id"`
	Name   string          `gorm:"type:varchar(255);not null" json:"name"`
	Price  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
}

// サイズ・種類の選択。PriceModifierは加算額。
type DishVariant struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	DishID        int64           `gorm:"not null;index" json:"dish_id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	PriceModifier decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_modifier"`
}

// セット商品
type Package struct {
	ID               int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string              `gorm:"type:varchar(255);not null" json:"name"`
	Description      string              `gorm:"type:text" json:"description"`
	BasePrice        decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"base_price"`
	PromotionalPrice decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"promotional_price"`
	IsActive         bool                `gorm:"not null;default:false" json:"is_active"`
	Dishes           []PackageEntry      `gorm:"foreignKey:PackageID" json:"dishes"`
	CreatedAt        time.Time           `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// パッケージに含まれる料理
type PackageEntry struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	PackageID int64 `gorm:"not null;index" json:"package_id"`
	DishID    int64 `gorm:"not null" json:"dish_id"`
	Dish      Dish  `gorm:"foreignKey:DishID" json:"dish"`
	Quantity  int64 `gorm:"not null;default:1" json:"quantity"`
}

package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type ModifierKind string

const (
	ModifierAddon   ModifierKind = "addon"
	ModifierVariant ModifierKind = "variant"
)

// addon/variantの値スナップショット。
// カタログへの参照ではなく、追加時点の(id, name, price)をそのまま持つ。
type Modifier struct {
	Kind  ModifierKind    `json:"kind"`
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// jsonbカラムに保存する
type Modifiers []Modifier

func (m Modifiers) Value() (driver.Value, error) {
	return jsonValue(m)
}

func (m *Modifiers) Scan(src any) error {
	return jsonScan(src, m)
}

// 価格の合計
func (m Modifiers) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range m {
		total = total.Add(it.Price)
	}
	return total
}

// パッケージ内の1品（選択されたaddon/variantを含む）
type PackageDish struct {
	DishID   int64     `json:"dish_id"`
	Name     string    `json:"name"`
	Quantity int64     `json:"quantity"`
	Addons   Modifiers `json:"addons"`
	Variants Modifiers `json:"variants"`
}

type PackageDishes []PackageDish

func (p PackageDishes) Value() (driver.Value, error) {
	return jsonValue(p)
}

func (p *PackageDishes) Scan(src any) error {
	return jsonScan(src, p)
}

// 全サブ料理のaddon/variant合計
func (p PackageDishes) ModifiersTotal() decimal.Decimal {
	total := decimal.Zero
	for _, d := range p {
		total = total.Add(d.Addons.Total()).Add(d.Variants.Total())
	}
	return total
}

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	// nil sliceは[]で保存
	if string(b) == "null" {
		return "[]", nil
	}
	return string(b), nil
}

func jsonScan(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported jsonb source %T", src)
	}
}

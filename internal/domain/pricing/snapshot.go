// カート明細を確定済みの注文明細に変換する。
// カートに写してある値だけを使い、カタログは見ない。
package pricing

import (
	"errors"
	"fmt"

	"orderdesk/internal/domain/model"

	"github.com/shopspring/decimal"
)

var ErrInvalidCartState = errors.New("invalid cart state")

// 単価 = promotional ?? base
func UnitPrice(base, promotional decimal.NullDecimal) (decimal.Decimal, error) {
	if !base.Valid {
		return decimal.Zero, fmt.Errorf("%w: base price missing", ErrInvalidCartState)
	}
	if base.Decimal.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative base price", ErrInvalidCartState)
	}
	if promotional.Valid {
		if promotional.Decimal.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: negative promotional price", ErrInvalidCartState)
		}
		return promotional.Decimal, nil
	}
	return base.Decimal, nil
}

// 料理1行
func SnapshotItem(ci model.CartItem) (model.OrderItem, error) {
	if ci.Quantity < 1 {
		return model.OrderItem{}, fmt.Errorf("%w: cart item %d quantity %d", ErrInvalidCartState, ci.ID, ci.Quantity)
	}
	unit, err := UnitPrice(ci.BasePrice, ci.PromotionalPrice)
	if err != nil {
		return model.OrderItem{}, fmt.Errorf("cart item %d: %w", ci.ID, err)
	}
	if err := checkAddons(ci.Addons); err != nil {
		return model.OrderItem{}, fmt.Errorf("cart item %d: %w", ci.ID, err)
	}

	mods := ci.Addons.Total().Add(ci.Variants.Total())
	perUnit := unit.Add(mods)
	if perUnit.IsNegative() {
		return model.OrderItem{}, fmt.Errorf("%w: cart item %d priced below zero", ErrInvalidCartState, ci.ID)
	}

	return model.OrderItem{
		DishID:           ci.DishID,
		Name:             ci.Name,
		Description:      ci.Description,
		BasePrice:        ci.BasePrice.Decimal,
		PromotionalPrice: ci.PromotionalPrice,
		UnitPrice:        unit,
		ModifiersTotal:   mods,
		Quantity:         ci.Quantity,
		LineTotal:        perUnit.Mul(decimal.NewFromInt(ci.Quantity)),
		Addons:           copyModifiers(ci.Addons),
		Variants:         copyModifiers(ci.Variants),
	}, nil
}

// パッケージ1行: (単価 + 全料理のaddon/variant) × 数量
func SnapshotPackage(cp model.CartPackageItem) (model.OrderPackageItem, error) {
	if cp.Quantity < 1 {
		return model.OrderPackageItem{}, fmt.Errorf("%w: cart package %d quantity %d", ErrInvalidCartState, cp.ID, cp.Quantity)
	}
	unit, err := UnitPrice(cp.BasePrice, cp.PromotionalPrice)
	if err != nil {
		return model.OrderPackageItem{}, fmt.Errorf("cart package %d: %w", cp.ID, err)
	}
	for _, d := range cp.Dishes {
		if err := checkAddons(d.Addons); err != nil {
			return model.OrderPackageItem{}, fmt.Errorf("cart package %d dish %d: %w", cp.ID, d.DishID, err)
		}
	}

	mods := cp.Dishes.ModifiersTotal()
	perUnit := unit.Add(mods)
	if perUnit.IsNegative() {
		return model.OrderPackageItem{}, fmt.Errorf("%w: cart package %d priced below zero", ErrInvalidCartState, cp.ID)
	}

	dishes := make(model.PackageDishes, 0, len(cp.Dishes))
	for _, d := range cp.Dishes {
		dishes = append(dishes, model.PackageDish{
			DishID:   d.DishID,
			Name:     d.Name,
			Quantity: d.Quantity,
			Addons:   copyModifiers(d.Addons),
			Variants: copyModifiers(d.Variants),
		})
	}

	return model.OrderPackageItem{
		PackageID:        cp.PackageID,
		Name:             cp.Name,
		Description:      cp.Description,
		BasePrice:        cp.BasePrice.Decimal,
		PromotionalPrice: cp.PromotionalPrice,
		UnitPrice:        unit,
		ModifiersTotal:   mods,
		Quantity:         cp.Quantity,
		LineTotal:        perUnit.Mul(decimal.NewFromInt(cp.Quantity)),
		Dishes:           dishes,
	}, nil
}

// カート全体。不正な行があればそこで止める
func Snapshot(items []model.CartItem, packages []model.CartPackageItem) ([]model.OrderItem, []model.OrderPackageItem, error) {
	outItems := make([]model.OrderItem, 0, len(items))
	for _, ci := range items {
		oi, err := SnapshotItem(ci)
		if err != nil {
			return nil, nil, err
		}
		outItems = append(outItems, oi)
	}

	outPkgs := make([]model.OrderPackageItem, 0, len(packages))
	for _, cp := range packages {
		op, err := SnapshotPackage(cp)
		if err != nil {
			return nil, nil, err
		}
		outPkgs = append(outPkgs, op)
	}
	return outItems, outPkgs, nil
}

// 行合計の総和
func Sum(items []model.OrderItem, packages []model.OrderPackageItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal)
	}
	for _, p := range packages {
		total = total.Add(p.LineTotal)
	}
	return total
}

// addonは値引きにならない。variantは負の加算額を許す（小サイズなど）。
func checkAddons(addons model.Modifiers) error {
	for _, a := range addons {
		if a.Price.IsNegative() {
			return fmt.Errorf("%w: addon %d has negative price", ErrInvalidCartState, a.ID)
		}
	}
	return nil
}

func copyModifiers(in model.Modifiers) model.Modifiers {
	out := make(model.Modifiers, len(in))
	copy(out, in)
	return out
}

package pricing

import (
	"errors"
	"testing"

	"orderdesk/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func TestSnapshotItem_UnitWithModifiersTimesQuantity(t *testing.T) {
	// 25.00 + addon 3.00 + variant 5.00 = 33.00 / 2個 = 66.00
	ci := model.CartItem{
		ID:        1,
		DishID:    10,
		Name:      "Ramen",
		BasePrice: nullDec("25.00"),
		Quantity:  2,
		Addons:    model.Modifiers{{Kind: model.ModifierAddon, ID: 1, Name: "Egg", Price: dec("3.00")}},
		Variants:  model.Modifiers{{Kind: model.ModifierVariant, ID: 2, Name: "Large", Price: dec("5.00")}},
	}

	oi, err := SnapshotItem(ci)
	require.NoError(t, err)

	assert.True(t, oi.UnitPrice.Equal(dec("25.00")))
	assert.True(t, oi.ModifiersTotal.Equal(dec("8.00")))
	assert.True(t, oi.LineTotal.Equal(dec("66.00")), "got %s", oi.LineTotal)
	assert.Equal(t, int64(10), oi.DishID)
	assert.Len(t, oi.Addons, 1)
	assert.Len(t, oi.Variants, 1)
}

func TestSnapshotItem_BaseWithOneAddon(t *testing.T) {
	// (28.00 + 5.00) × 2 = 66.00
	ci := model.CartItem{
		BasePrice: nullDec("28.00"),
		Quantity:  2,
		Addons:    model.Modifiers{{Kind: model.ModifierAddon, ID: 1, Name: "Cheese", Price: dec("5.00")}},
	}

	oi, err := SnapshotItem(ci)
	require.NoError(t, err)
	assert.True(t, oi.UnitPrice.Equal(dec("28.00")))
	assert.True(t, oi.ModifiersTotal.Equal(dec("5.00")))
	assert.True(t, oi.LineTotal.Equal(dec("66.00")), "got %s", oi.LineTotal)
	assert.True(t, Sum([]model.OrderItem{oi}, nil).Equal(dec("66.00")))
}

func TestSnapshotItem_PromotionalPriceWins(t *testing.T) {
	ci := model.CartItem{
		BasePrice:        nullDec("30.00"),
		PromotionalPrice: nullDec("20.00"),
		Quantity:         1,
	}

	oi, err := SnapshotItem(ci)
	require.NoError(t, err)
	assert.True(t, oi.UnitPrice.Equal(dec("20.00")))
	assert.True(t, oi.BasePrice.Equal(dec("30.00")))
	assert.True(t, oi.LineTotal.Equal(dec("20.00")))
}

func TestSnapshotItem_NegativeVariantAllowed(t *testing.T) {
	ci := model.CartItem{
		BasePrice: nullDec("10.00"),
		Quantity:  3,
		Variants:  model.Modifiers{{Kind: model.ModifierVariant, Name: "Small", Price: dec("-2.00")}},
	}

	oi, err := SnapshotItem(ci)
	require.NoError(t, err)
	assert.True(t, oi.LineTotal.Equal(dec("24.00")))
}

func TestSnapshotItem_InvalidCartState(t *testing.T) {
	cases := []struct {
		name string
		item model.CartItem
	}{
		{"missing base price", model.CartItem{Quantity: 1}},
		{"zero quantity", model.CartItem{BasePrice: nullDec("1.00"), Quantity: 0}},
		{"negative base", model.CartItem{BasePrice: nullDec("-1.00"), Quantity: 1}},
		{"negative addon", model.CartItem{
			BasePrice: nullDec("5.00"),
			Quantity:  1,
			Addons:    model.Modifiers{{Kind: model.ModifierAddon, Price: dec("-1.00")}},
		}},
		{"below zero after variant", model.CartItem{
			BasePrice: nullDec("1.00"),
			Quantity:  1,
			Variants:  model.Modifiers{{Kind: model.ModifierVariant, Price: dec("-2.00")}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SnapshotItem(tc.item)
			assert.True(t, errors.Is(err, ErrInvalidCartState), "got %v", err)
		})
	}
}

func TestSnapshotPackage_SumsEverySubDish(t *testing.T) {
	cp := model.CartPackageItem{
		PackageID:        7,
		Name:             "Lunch set",
		BasePrice:        nullDec("40.00"),
		PromotionalPrice: nullDec("35.00"),
		Quantity:         2,
		Dishes: model.PackageDishes{
			{
				DishID:   1,
				Quantity: 1,
				Addons:   model.Modifiers{{Kind: model.ModifierAddon, Price: dec("2.50")}},
			},
			{
				DishID:   2,
				Quantity: 2,
				Variants: model.Modifiers{{Kind: model.ModifierVariant, Price: dec("1.50")}},
			},
		},
	}

	op, err := SnapshotPackage(cp)
	require.NoError(t, err)

	assert.True(t, op.UnitPrice.Equal(dec("35.00")))
	assert.True(t, op.ModifiersTotal.Equal(dec("4.00")))
	assert.True(t, op.LineTotal.Equal(dec("78.00")), "got %s", op.LineTotal)
	assert.Len(t, op.Dishes, 2)
}

func TestSnapshot_FrozenAgainstCartMutation(t *testing.T) {
	items := []model.CartItem{{
		BasePrice: nullDec("10.00"),
		Quantity:  1,
		Addons:    model.Modifiers{{Kind: model.ModifierAddon, Name: "Cheese", Price: dec("1.00")}},
	}}

	out, _, err := Snapshot(items, nil)
	require.NoError(t, err)

	items[0].Addons[0].Price = dec("99.00")
	assert.True(t, out[0].Addons[0].Price.Equal(dec("1.00")))
}

func TestSnapshot_FirstInvalidLineAborts(t *testing.T) {
	items := []model.CartItem{
		{BasePrice: nullDec("10.00"), Quantity: 1},
		{Quantity: 1},
	}

	oi, op, err := Snapshot(items, nil)
	assert.ErrorIs(t, err, ErrInvalidCartState)
	assert.Nil(t, oi)
	assert.Nil(t, op)
}

func TestSum(t *testing.T) {
	total := Sum(
		[]model.OrderItem{{LineTotal: dec("66.00")}, {LineTotal: dec("4.50")}},
		[]model.OrderPackageItem{{LineTotal: dec("78.00")}},
	)
	assert.True(t, total.Equal(dec("148.50")))
}

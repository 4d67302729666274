package validator

import (
	"orderdesk/internal/usecase"
)

const maxLineQuantity = 99

type cartValidator struct{}

func NewCartValidator() usecase.CartValidator {
	return &cartValidator{}
}

func (v *cartValidator) ValidateAddItem(in usecase.AddCartItemInput) error {
	f := fieldErrors{}
	if in.DishID <= 0 {
		f.add("dish_id", "is required")
	}
	checkQuantity(f, in.Quantity)
	checkIDs(f, "addon_ids", in.AddonIDs)
	checkIDs(f, "variant_ids", in.VariantIDs)
	return f.err()
}

func (v *cartValidator) ValidateAddPackage(in usecase.AddCartPackageInput) error {
	f := fieldErrors{}
	if in.PackageID <= 0 {
		f.add("package_id", "is required")
	}
	checkQuantity(f, in.Quantity)

	seen := map[int64]bool{}
	for _, s := range in.Selections {
		if s.DishID <= 0 {
			f.add("selections", "dish_id is required")
			continue
		}
		if seen[s.DishID] {
			f.add("selections", "dish_id must be unique")
		}
		seen[s.DishID] = true
		checkIDs(f, "selections.addon_ids", s.AddonIDs)
		checkIDs(f, "selections.variant_ids", s.VariantIDs)
	}
	return f.err()
}

func checkQuantity(f fieldErrors, q int64) {
	if q < 1 || q > maxLineQuantity {
		f.add("quantity", "must be between 1 and 99")
	}
}

// 正の値・重複なし
func checkIDs(f fieldErrors, field string, ids []int64) {
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if id <= 0 {
			f.add(field, "must be positive")
			return
		}
		if seen[id] {
			f.add(field, "must not contain duplicates")
			return
		}
		seen[id] = true
	}
}

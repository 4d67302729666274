package repository

import (
	"context"

	"orderdesk/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	ListPackagesByCartID(ctx context.Context, cartID int64) ([]model.CartPackageItem, error)

	AddItem(ctx context.Context, item model.CartItem) (model.CartItem, error)
	AddPackage(ctx context.Context, pkg model.CartPackageItem) (model.CartPackageItem, error)

	// cartIDで絞るので、他人の明細は消せない（ErrNotFound）
	DeleteItem(ctx context.Context, cartID int64, cartItemID int64) error
	DeletePackage(ctx context.Context, cartID int64, cartPackageItemID int64) error
}

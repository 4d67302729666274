package repository

import (
	"context"

	"orderdesk/internal/domain/model"
)

// メニュー参照（カート追加時だけ使う）。公開中のものだけ返す。
type CatalogRepository interface {
	FindDish(ctx context.Context, dishID int64) (model.Dish, error)
	FindPackage(ctx context.Context, packageID int64) (model.Package, error)

	CreateDish(ctx context.Context, dish model.Dish) (model.Dish, error)
	CreatePackage(ctx context.Context, pkg model.Package) (model.Package, error)
}

package repository

import (
	"context"

	"orderdesk/internal/domain/model"

	"gorm.io/gorm"
)

type CatalogGormRepository struct {
	db *gorm.DB
}

// DI
func NewCatalogGormRepository(db *gorm.DB) *CatalogGormRepository {
	return &CatalogGormRepository{db: db}
}

// 公開中の料理だけ（addon/variant付き）
func (r *CatalogGormRepository) FindDish(ctx context.Context, dishID int64) (model.Dish, error) {
	var d model.Dish
	err := r.db.WithContext(ctx).
		Preload("Addons").
		Preload("Variants").
		Where("id = ? AND is_active = ?", dishID, true).
		First(&d).Error
	if err != nil {
		return model.Dish{}, notFoundOr(err)
	}
	return d, nil
}

func (r *CatalogGormRepository) FindPackage(ctx context.Context, packageID int64) (model.Package, error) {
	var p model.Package
	err := r.db.WithContext(ctx).
		Preload("Dishes.Dish.Addons").
		Preload("Dishes.Dish.Variants").
		Where("id = ? AND is_active = ?", packageID, true).
		First(&p).Error
	if err != nil {
		return model.Package{}, notFoundOr(err)
	}
	return p, nil
}

// addon/variantも一緒に作る
func (r *CatalogGormRepository) CreateDish(ctx context.Context, d model.Dish) (model.Dish, error) {
	if err := r.db.WithContext(ctx).Create(&d).Error; err != nil {
		return model.Dish{}, err
	}
	return d, nil
}

// PackageEntry.Dishは既存行なので作らない
func (r *CatalogGormRepository) CreatePackage(ctx context.Context, p model.Package) (model.Package, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entries := p.Dishes
		p.Dishes = nil
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		for i := range entries {
			entries[i].PackageID = p.ID
			entries[i].Dish = model.Dish{}
		}
		if len(entries) > 0 {
			if err := tx.Omit("Dish").Create(&entries).Error; err != nil {
				return err
			}
		}
		p.Dishes = entries
		return nil
	})
	if err != nil {
		return model.Package{}, err
	}
	return p, nil
}

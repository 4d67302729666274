package repository

import (
	"context"
	"errors"
	"time"

	"orderdesk/internal/domain/model"
	repo "orderdesk/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// カートと明細（単品・パッケージ）をまとめて扱う
type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

func (r *CartGormRepository) activeQuery(ctx context.Context, userID int64) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.CartStatusActive).
		Order("id desc")
}

// ユーザーのACTIVEカートを取得し、無ければ作成
func (r *CartGormRepository) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND status = ?", userID, model.CartStatusActive).
			Order("id desc").
			First(&cart).Error
		if findErr == nil {
			return nil
		}
		if !isNotFound(findErr) {
			return findErr
		}

		// 無ければ作る
		now := time.Now()
		newCart := model.Cart{
			UserID:    userID,
			Status:    model.CartStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&newCart).Error; err != nil {
			return err
		}
		cart = newCart
		return nil
	})
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// ユーザーのACTIVEカートを取得
func (r *CartGormRepository) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	var cart model.Cart
	if err := r.activeQuery(ctx, userID).First(&cart).Error; err != nil {
		return model.Cart{}, notFoundOr(err)
	}
	return cart, nil
}

// カートをロック
func (r *CartGormRepository) LockActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	var cart model.Cart
	err := r.activeQuery(ctx, userID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&cart).Error
	if err != nil {
		return model.Cart{}, notFoundOr(err)
	}
	return cart, nil
}

// carts.statusを更新
func (r *CartGormRepository) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 指定カートの明細を全削除
func (r *CartGormRepository) Clear(ctx context.Context, cartID int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("cart_id = ?", cartID).Delete(&model.CartPackageItem{}).Error; err != nil {
		return err
	}
	return nil
}

// カート明細を一覧取得
func (r *CartGormRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var items []model.CartItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CartGormRepository) ListPackagesByCartID(ctx context.Context, cartID int64) ([]model.CartPackageItem, error) {
	var pkgs []model.CartPackageItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&pkgs).Error; err != nil {
		return nil, err
	}
	return pkgs, nil
}

// 選択(addon/variant)ごとに別行で持つので、同じ料理でも加算しない
func (r *CartGormRepository) AddItem(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	if item.Quantity <= 0 {
		return model.CartItem{}, errors.New("invalid quantity")
	}
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return model.CartItem{}, err
	}
	return item, nil
}

func (r *CartGormRepository) AddPackage(ctx context.Context, pkg model.CartPackageItem) (model.CartPackageItem, error) {
	if pkg.Quantity <= 0 {
		return model.CartPackageItem{}, errors.New("invalid quantity")
	}
	if err := r.db.WithContext(ctx).Create(&pkg).Error; err != nil {
		return model.CartPackageItem{}, err
	}
	return pkg, nil
}

// 明細を削除
func (r *CartGormRepository) DeleteItem(ctx context.Context, cartID int64, cartItemID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", cartItemID, cartID).
		Delete(&model.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartGormRepository) DeletePackage(ctx context.Context, cartID int64, cartPackageItemID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", cartPackageItemID, cartID).
		Delete(&model.CartPackageItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

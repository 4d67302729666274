package repository

import (
	"context"

	"orderdesk/internal/domain/model"

	"gorm.io/gorm"
)

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

func (r *OrderItemGormRepository) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *OrderItemGormRepository) CreatePackagesBulk(ctx context.Context, orderID int64, pkgs []model.OrderPackageItem) error {
	if len(pkgs) == 0 {
		return nil
	}
	for i := range pkgs {
		pkgs[i].OrderID = orderID
	}
	return r.db.WithContext(ctx).Create(&pkgs).Error
}

func (r *OrderItemGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var items []model.OrderItem
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *OrderItemGormRepository) ListPackagesByOrderID(ctx context.Context, orderID int64) ([]model.OrderPackageItem, error) {
	var pkgs []model.OrderPackageItem
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&pkgs).Error; err != nil {
		return nil, err
	}
	return pkgs, nil
}

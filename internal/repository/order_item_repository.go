package repository

import (
	"context"

	"orderdesk/internal/domain/model"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	CreatePackagesBulk(ctx context.Context, orderID int64, pkgs []model.OrderPackageItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	ListPackagesByOrderID(ctx context.Context, orderID int64) ([]model.OrderPackageItem, error)
}

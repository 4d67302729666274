package repository

import (
	"context"

	"orderdesk/internal/domain/model"
)

type TableRepository interface {
	FindByID(ctx context.Context, tableID int64) (model.Table, error)
	//行ロック。同じテーブルへの確定を直列化する
	LockByID(ctx context.Context, tableID int64) (model.Table, error)
	//capacity >= minCapacity をcode順で
	ListByMinCapacity(ctx context.Context, minCapacity int) ([]model.Table, error)
	Create(ctx context.Context, table model.Table) (model.Table, error)
}

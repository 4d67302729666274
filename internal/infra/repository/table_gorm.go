package repository

import (
	"context"

	"orderdesk/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TableGormRepository struct {
	db *gorm.DB
}

func NewTableGormRepository(db *gorm.DB) *TableGormRepository {
	return &TableGormRepository{db: db}
}

func (r *TableGormRepository) FindByID(ctx context.Context, tableID int64) (model.Table, error) {
	var t model.Table
	if err := r.db.WithContext(ctx).First(&t, tableID).Error; err != nil {
		return model.Table{}, notFoundOr(err)
	}
	return t, nil
}

// テーブルをロック
func (r *TableGormRepository) LockByID(ctx context.Context, tableID int64) (model.Table, error) {
	var t model.Table
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", tableID).
		First(&t).Error
	if err != nil {
		return model.Table{}, notFoundOr(err)
	}
	return t, nil
}

func (r *TableGormRepository) ListByMinCapacity(ctx context.Context, minCapacity int) ([]model.Table, error) {
	var tables []model.Table
	err := r.db.WithContext(ctx).
		Where("capacity >= ?", minCapacity).
		Order("code asc").
		Find(&tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *TableGormRepository) Create(ctx context.Context, t model.Table) (model.Table, error) {
	if err := r.db.WithContext(ctx).Create(&t).Error; err != nil {
		return model.Table{}, err
	}
	return t, nil
}

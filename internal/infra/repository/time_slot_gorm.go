package repository

import (
	"context"

	"orderdesk/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TimeSlotGormRepository struct {
	db *gorm.DB
}

func NewTimeSlotGormRepository(db *gorm.DB) *TimeSlotGormRepository {
	return &TimeSlotGormRepository{db: db}
}

func (r *TimeSlotGormRepository) FindByID(ctx context.Context, timeSlotID int64) (model.TimeSlot, error) {
	var s model.TimeSlot
	if err := r.db.WithContext(ctx).First(&s, timeSlotID).Error; err != nil {
		return model.TimeSlot{}, notFoundOr(err)
	}
	return s, nil
}

func (r *TimeSlotGormRepository) List(ctx context.Context) ([]model.TimeSlot, error) {
	var slots []model.TimeSlot
	if err := r.db.WithContext(ctx).Order("start_time asc").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// 同じ枠が既にあれば何もしない（seedの再実行用）
func (r *TimeSlotGormRepository) Create(ctx context.Context, s model.TimeSlot) (model.TimeSlot, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&s).Error
	if err != nil {
		return model.TimeSlot{}, err
	}
	return s, nil
}

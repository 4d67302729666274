package repository

import (
	"context"

	"orderdesk/internal/domain/model"
)

type TimeSlotRepository interface {
	FindByID(ctx context.Context, timeSlotID int64) (model.TimeSlot, error)
	List(ctx context.Context) ([]model.TimeSlot, error)
	Create(ctx context.Context, slot model.TimeSlot) (model.TimeSlot, error)
}

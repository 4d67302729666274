package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"orderdesk/internal/domain/model"
	repo "orderdesk/internal/repository"
)

type TimeSlotCatalog struct {
	slots repo.TimeSlotRepository
	log   *slog.Logger
}

func NewTimeSlotCatalog(slots repo.TimeSlotRepository, log *slog.Logger) *TimeSlotCatalog {
	return &TimeSlotCatalog{slots: slots, log: log}
}

type TimeSlotOutput struct {
	ID        int64  `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Resolve は枠IDを0時からの(start, end)にする
func (c *TimeSlotCatalog) Resolve(ctx context.Context, timeSlotID int64) (model.TimeSlot, time.Duration, time.Duration, error) {
	slot, err := c.slots.FindByID(ctx, timeSlotID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.TimeSlot{}, 0, 0, NewError(ErrNotFound, "time slot not found")
	}
	if err != nil {
		c.log.ErrorContext(ctx, "find time slot", slog.Int64("time_slot_id", timeSlotID), slog.Any("error", err))
		return model.TimeSlot{}, 0, 0, NewError(ErrTransactionFailed, "db error")
	}

	start, end, err := slot.Bounds()
	if err != nil {
		//管理データの不備
		c.log.ErrorContext(ctx, "malformed time slot", slog.Int64("time_slot_id", timeSlotID), slog.Any("error", err))
		return model.TimeSlot{}, 0, 0, NewError(ErrTransactionFailed, "malformed time slot")
	}
	return slot, start, end, nil
}

func (c *TimeSlotCatalog) List(ctx context.Context) ([]TimeSlotOutput, error) {
	slots, err := c.slots.List(ctx)
	if err != nil {
		c.log.ErrorContext(ctx, "list time slots", slog.Any("error", err))
		return nil, NewError(ErrTransactionFailed, "db error")
	}

	out := make([]TimeSlotOutput, 0, len(slots))
	for _, s := range slots {
		out = append(out, TimeSlotOutput{ID: s.ID, StartTime: s.StartTime, EndTime: s.EndTime})
	}
	return out, nil
}

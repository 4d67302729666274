package usecase

import (
	"context"
	"log/slog"
	"time"

	"orderdesk/internal/domain/model"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCommitted        = "order.committed"
	EventReservationCheckedIn  = "reservation.checked_in"
	EventReservationCheckedOut = "reservation.checked_out"
	EventReservationCancelled  = "reservation.cancelled"
	EventReservationExtended   = "reservation.extended"
	EventReservationOverdue    = "reservation.overdue"
)

type OrderCommittedEvent struct {
	OrderID       int64               `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	UserID        int64               `json:"user_id"`
	ServiceMethod model.ServiceMethod `json:"service_method"`
	Total         decimal.Decimal     `json:"total"`
	TableID       *int64              `json:"table_id,omitempty"`
	DiningDate    *time.Time          `json:"dining_date,omitempty"`
	TimeSlotID    *int64              `json:"time_slot_id,omitempty"`
}

type ReservationEvent struct {
	OrderID              int64                   `json:"order_id"`
	OrderNumber          string                  `json:"order_number"`
	TableID              *int64                  `json:"table_id,omitempty"`
	ReservationStatus    model.ReservationStatus `json:"reservation_status"`
	AutoExtendCount      int                     `json:"auto_extend_count"`
	TotalExtendedMinutes int                     `json:"total_extended_minutes"`
	ActorUserID          int64                   `json:"actor_user_id"`
}

func reservationEvent(o model.Order, actorID int64) ReservationEvent {
	return ReservationEvent{
		OrderID:              o.ID,
		OrderNumber:          o.OrderNumber,
		TableID:              o.TableID,
		ReservationStatus:    o.ReservationStatus,
		AutoExtendCount:      o.AutoExtendCount,
		TotalExtendedMinutes: o.TotalExtendedMinutes,
		ActorUserID:          actorID,
	}
}

// ベストエフォート。失敗はログだけ。
func publish(ctx context.Context, p EventPublisher, log *slog.Logger, name, key string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, name, key, payload); err != nil {
		log.WarnContext(ctx, "event publish failed",
			slog.String("event", name),
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

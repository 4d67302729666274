package usecase

import (
	"context"
	"log/slog"
	"time"

	"orderdesk/internal/domain/model"
	"orderdesk/internal/domain/reservation"
	repo "orderdesk/internal/repository"
)

type TableUsecase struct {
	tables    repo.TableRepository
	orders    repo.OrderRepository
	timeSlots *TimeSlotCatalog
	validator OrderValidator
	loc       *time.Location
	log       *slog.Logger
}

func NewTableUsecase(
	tables repo.TableRepository,
	orders repo.OrderRepository,
	timeSlots *TimeSlotCatalog,
	validator OrderValidator,
	loc *time.Location,
	log *slog.Logger,
) *TableUsecase {
	return &TableUsecase{
		tables:    tables,
		orders:    orders,
		timeSlots: timeSlots,
		validator: validator,
		loc:       loc,
		log:       log,
	}
}

type AvailabilityQuery struct {
	Date       string // YYYY-MM-DD
	TimeSlotID int64
	PartySize  int
}

type TableAvailabilityOutput struct {
	TableID          int64                    `json:"table_id"`
	Code             string                   `json:"code"`
	Capacity         int                      `json:"capacity"`
	Location         string                   `json:"location"`
	Status           model.AvailabilityStatus `json:"status"`
	UnderMaintenance bool                     `json:"under_maintenance"`
	HasConflict      bool                     `json:"has_conflict"`
}

// FindAvailable は人数を満たす全テーブルを状態付きで返す。
// 定員不足のテーブルは結果に含めない。
func (u *TableUsecase) FindAvailable(ctx context.Context, q AvailabilityQuery) ([]TableAvailabilityOutput, error) {
	date, err := u.validator.ValidateAvailability(q)
	if err != nil {
		return nil, err
	}

	window, err := u.requestedWindow(ctx, date, q.TimeSlotID)
	if err != nil {
		return nil, err
	}

	tables, err := u.tables.ListByMinCapacity(ctx, q.PartySize)
	if err != nil {
		u.log.ErrorContext(ctx, "list tables", slog.Int("party_size", q.PartySize), slog.Any("error", err))
		return nil, NewError(ErrTransactionFailed, "db error")
	}

	out := make([]TableAvailabilityOutput, 0, len(tables))
	for _, t := range tables {
		a, err := evaluateTable(ctx, u.orders, t, date, window)
		if err != nil {
			u.log.ErrorContext(ctx, "list reservations", slog.Int64("table_id", t.ID), slog.Any("error", err))
			return nil, NewError(ErrTransactionFailed, "db error")
		}
		out = append(out, toAvailabilityOutput(a))
	}
	return out, nil
}

// 日付(loc)＋枠 → [check_in, check_out)
func (u *TableUsecase) requestedWindow(ctx context.Context, date time.Time, timeSlotID int64) (reservation.Interval, error) {
	_, start, end, err := u.timeSlots.Resolve(ctx, timeSlotID)
	if err != nil {
		return reservation.Interval{}, err
	}
	return reservation.Window(date, start, end, u.loc), nil
}

// コミット時もTx内のrepoでこれを呼び直す
func evaluateTable(ctx context.Context, orders repo.OrderRepository, t model.Table, date time.Time, window reservation.Interval) (reservation.Availability, error) {
	pending, err := orders.ListPendingReservations(ctx, t.ID, date)
	if err != nil {
		return reservation.Availability{}, err
	}
	return reservation.Evaluate(t, pending, window), nil
}

func toAvailabilityOutput(a reservation.Availability) TableAvailabilityOutput {
	return TableAvailabilityOutput{
		TableID:          a.Table.ID,
		Code:             a.Table.Code,
		Capacity:         a.Table.Capacity,
		Location:         a.Table.Location,
		Status:           a.Status,
		UnderMaintenance: a.UnderMaintenance,
		HasConflict:      a.HasConflict,
	}
}

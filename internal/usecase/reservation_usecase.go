package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"orderdesk/internal/domain/model"
	"orderdesk/internal/domain/reservation"
	repo "orderdesk/internal/repository"
)

type ReservationUsecase struct {
	tx        repo.TransactionManager
	events    EventPublisher
	clock     Clock
	batchSize int
	log       *slog.Logger
}

func NewReservationUsecase(tx repo.TransactionManager, events EventPublisher, clock Clock, batchSize int, log *slog.Logger) *ReservationUsecase {
	if clock == nil {
		clock = SystemClock{}
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	return &ReservationUsecase{tx: tx, events: events, clock: clock, batchSize: batchSize, log: log}
}

type SweepResult struct {
	Scanned  int      `json:"scanned"`
	Extended []string `json:"extended"`
	Flagged  []string `json:"flagged"`
}

// 1件分の状態遷移
type transitionSpec struct {
	name   string
	action model.AuditAction
	event  string
	apply  func(r repo.TxRepos, o *model.Order, now time.Time) error
}

func (u *ReservationUsecase) CheckIn(ctx context.Context, actor Actor, orderID int64) (OrderOutput, error) {
	return u.run(ctx, actor, orderID, transitionSpec{
		name:   "check-in",
		action: model.AuditActionCheckIn,
		event:  EventReservationCheckedIn,
		apply: func(_ repo.TxRepos, o *model.Order, now time.Time) error {
			return reservation.CheckIn(o, now)
		},
	})
}

// pending → completed。注文もCOMPLETEDにする
func (u *ReservationUsecase) CheckOut(ctx context.Context, actor Actor, orderID int64) (OrderOutput, error) {
	return u.run(ctx, actor, orderID, transitionSpec{
		name:   "check-out",
		action: model.AuditActionCheckOut,
		event:  EventReservationCheckedOut,
		apply: func(_ repo.TxRepos, o *model.Order, now time.Time) error {
			if err := reservation.CheckOut(o, now); err != nil {
				return err
			}
			o.Status = model.OrderStatusCompleted
			return nil
		},
	})
}

// pending → cancelled。注文もCANCELEDにする
func (u *ReservationUsecase) Cancel(ctx context.Context, actor Actor, orderID int64) (OrderOutput, error) {
	return u.run(ctx, actor, orderID, transitionSpec{
		name:   "cancel",
		action: model.AuditActionCancel,
		event:  EventReservationCancelled,
		apply: func(_ repo.TxRepos, o *model.Order, now time.Time) error {
			if err := reservation.Cancel(o, now); err != nil {
				return err
			}
			o.Status = model.OrderStatusCanceled
			return nil
		},
	})
}

// 手動延長。次の予約と重なるなら延長しない
func (u *ReservationUsecase) Extend(ctx context.Context, actor Actor, orderID int64) (OrderOutput, error) {
	return u.run(ctx, actor, orderID, transitionSpec{
		name:   "extend",
		action: model.AuditActionExtend,
		event:  EventReservationExtended,
		apply: func(r repo.TxRepos, o *model.Order, _ time.Time) error {
			if !reservation.CanExtend(*o) {
				return reservation.Extend(o)
			}
			next, ok := reservation.ExtendedInterval(*o)
			if !ok || o.TableID == nil || o.DiningDate == nil {
				return reservation.ErrNoReservation
			}
			others, err := r.Orders().ListPendingReservations(ctx, *o.TableID, *o.DiningDate)
			if err != nil {
				return err
			}
			if reservation.ConflictsWith(next, others, o.ID) {
				return NewError(ErrTableUnavailable, "extension overlaps the next reservation")
			}
			return reservation.Extend(o)
		},
	})
}

func (u *ReservationUsecase) run(ctx context.Context, actor Actor, orderID int64, spec transitionSpec) (OrderOutput, error) {
	if err := requireActor(actor); err != nil {
		return OrderOutput{}, err
	}
	if orderID <= 0 {
		return OrderOutput{}, NewValidationError(map[string]string{"id": "must be positive"})
	}

	var after model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().LockByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(ErrNotFound, "order not found")
		}
		if err != nil {
			return u.failed(ctx, spec.name, orderID, err)
		}
		if !actor.CanAccess(o.UserID) {
			return NewError(ErrUnauthorized, "order belongs to another user")
		}

		before := o
		now := u.clock.Now()
		if err := spec.apply(r, &o, now); err != nil {
			return u.mapTransitionError(ctx, spec.name, orderID, err)
		}

		if err := r.Orders().SaveReservation(ctx, o); err != nil {
			return u.failed(ctx, spec.name, orderID, err)
		}
		if err := writeAudit(ctx, r, actor.UserID, spec.action, before, o, now); err != nil {
			return u.failed(ctx, spec.name, orderID, err)
		}
		after = o
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.log.InfoContext(ctx, "reservation "+spec.name,
		slog.Int64("order_id", after.ID),
		slog.Int64("actor_user_id", actor.UserID),
		slog.String("reservation_status", string(after.ReservationStatus)),
	)
	publish(ctx, u.events, u.log, spec.event, after.OrderNumber, reservationEvent(after, actor.UserID))

	return toOrderOutput(after, nil, nil), nil
}

func (u *ReservationUsecase) mapTransitionError(ctx context.Context, step string, orderID int64, err error) error {
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, reservation.ErrExtensionLimit):
		return NewError(ErrExtensionLimitReached, "reservation was already extended twice")
	case errors.Is(err, reservation.ErrNotPending),
		errors.Is(err, reservation.ErrNoReservation),
		errors.Is(err, reservation.ErrAlreadyCheckedIn),
		errors.Is(err, reservation.ErrUnknownTransition):
		return NewError(ErrInvalidTransition, err.Error())
	}
	return u.failed(ctx, step, orderID, err)
}

func (u *ReservationUsecase) failed(ctx context.Context, step string, orderID int64, cause error) error {
	u.log.ErrorContext(ctx, "reservation transaction failed",
		slog.String("step", step),
		slog.Int64("order_id", orderID),
		slog.Any("error", cause),
	)
	return NewError(ErrTransactionFailed, "db error")
}

// ProcessExpired は管理者用の入口
func (u *ReservationUsecase) ProcessExpired(ctx context.Context, actor Actor) (SweepResult, error) {
	if err := requireAdmin(actor); err != nil {
		return SweepResult{}, err
	}
	return u.Sweep(ctx, actor.UserID)
}

// Sweep は超過したpending予約を延長するか、手動対応フラグを立てる。
// 直後にもう一度実行しても何も変わらない。actorUserIDはCLIなら0。
func (u *ReservationUsecase) Sweep(ctx context.Context, actorUserID int64) (SweepResult, error) {
	res := SweepResult{Extended: []string{}, Flagged: []string{}}
	var extended, flagged []model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		now := u.clock.Now()
		candidates, err := r.Orders().LockOverdueReservations(ctx, now, u.batchSize)
		if err != nil {
			return u.failed(ctx, "sweep scan", 0, err)
		}
		res.Scanned = len(candidates)

		for _, o := range candidates {
			if o.TableID == nil || o.DiningDate == nil {
				continue
			}
			//同じTx内の更新も見える
			sameTable, err := r.Orders().ListPendingReservations(ctx, *o.TableID, *o.DiningDate)
			if err != nil {
				return u.failed(ctx, "sweep list", o.ID, err)
			}

			before := o
			var action model.AuditAction
			switch reservation.Decide(o, sameTable, now) {
			case reservation.DecisionNone:
				continue
			case reservation.DecisionExtend:
				if err := reservation.Extend(&o); err != nil {
					return u.failed(ctx, "sweep extend", o.ID, err)
				}
				action = model.AuditActionExtend
				extended = append(extended, o)
			case reservation.DecisionFlag:
				reservation.Flag(&o, now)
				action = model.AuditActionOverdue
				flagged = append(flagged, o)
			}

			if err := r.Orders().SaveReservation(ctx, o); err != nil {
				return u.failed(ctx, "sweep save", o.ID, err)
			}
			if err := writeAudit(ctx, r, actorUserID, action, before, o, now); err != nil {
				return u.failed(ctx, "sweep audit", o.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return SweepResult{}, err
	}

	for _, o := range extended {
		res.Extended = append(res.Extended, o.OrderNumber)
		publish(ctx, u.events, u.log, EventReservationExtended, o.OrderNumber, reservationEvent(o, actorUserID))
	}
	for _, o := range flagged {
		res.Flagged = append(res.Flagged, o.OrderNumber)
		publish(ctx, u.events, u.log, EventReservationOverdue, o.OrderNumber, reservationEvent(o, actorUserID))
	}

	u.log.InfoContext(ctx, "reservation sweep",
		slog.Int("scanned", res.Scanned),
		slog.Int("extended", len(res.Extended)),
		slog.Int("flagged", len(res.Flagged)),
	)
	return res, nil
}

// 予約列だけを監査ログに残す
type reservationSnapshot struct {
	Status               string                  `json:"status"`
	ReservationStatus    model.ReservationStatus `json:"reservation_status"`
	AutoExtendCount      int                     `json:"auto_extend_count"`
	TotalExtendedMinutes int                     `json:"total_extended_minutes"`
	CheckedInAt          *time.Time              `json:"checked_in_at,omitempty"`
	CheckedOutAt         *time.Time              `json:"checked_out_at,omitempty"`
	CancelledAt          *time.Time              `json:"cancelled_at,omitempty"`
	OverdueFlaggedAt     *time.Time              `json:"overdue_flagged_at,omitempty"`
}

func snapshotJSON(o model.Order) (string, error) {
	b, err := json.Marshal(reservationSnapshot{
		Status:               string(o.Status),
		ReservationStatus:    o.ReservationStatus,
		AutoExtendCount:      o.AutoExtendCount,
		TotalExtendedMinutes: o.TotalExtendedMinutes,
		CheckedInAt:          o.CheckedInAt,
		CheckedOutAt:         o.CheckedOutAt,
		CancelledAt:          o.CancelledAt,
		OverdueFlaggedAt:     o.OverdueFlaggedAt,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeAudit(ctx context.Context, r repo.TxRepos, actorID int64, action model.AuditAction, before, after model.Order, now time.Time) error {
	b, err := snapshotJSON(before)
	if err != nil {
		return err
	}
	a, err := snapshotJSON(after)
	if err != nil {
		return err
	}
	return r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   after.ID,
		BeforeJSON:   b,
		AfterJSON:    a,
		CreatedAt:    now,
	})
}

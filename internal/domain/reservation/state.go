package reservation

import (
	"errors"
	"fmt"
	"time"

	"orderdesk/internal/domain/model"
)

const (
	MaxAutoExtensions = 2
	ExtensionStep     = 30 * time.Minute
)

var (
	ErrNoReservation     = errors.New("order has no table reservation")
	ErrNotPending        = errors.New("reservation is not pending")
	ErrAlreadyCheckedIn  = errors.New("reservation already checked in")
	ErrExtensionLimit    = errors.New("reservation extension limit reached")
	ErrUnknownTransition = errors.New("unknown reservation transition")
)

// 状態遷移。pending以外からは動かない。
func transition(o *model.Order, to model.ReservationStatus) error {
	if !o.RequiresTable() {
		return ErrNoReservation
	}
	switch o.ReservationStatus {
	case model.ReservationPending:
	case model.ReservationCompleted, model.ReservationCancelled:
		return fmt.Errorf("%w: %s", ErrNotPending, o.ReservationStatus)
	case model.ReservationNone:
		return ErrNoReservation
	default:
		return fmt.Errorf("%w: from %q", ErrUnknownTransition, o.ReservationStatus)
	}

	switch to {
	case model.ReservationPending, model.ReservationCompleted, model.ReservationCancelled:
		o.ReservationStatus = to
		return nil
	case model.ReservationNone:
		return fmt.Errorf("%w: to none", ErrUnknownTransition)
	}
	return fmt.Errorf("%w: to %q", ErrUnknownTransition, to)
}

// 来店。テーブルは押さえたまま（pending）
func CheckIn(o *model.Order, now time.Time) error {
	if err := transition(o, model.ReservationPending); err != nil {
		return err
	}
	if o.CheckedInAt != nil {
		return ErrAlreadyCheckedIn
	}
	o.CheckedInAt = &now
	return nil
}

// 退店: pending → completed
func CheckOut(o *model.Order, now time.Time) error {
	if err := transition(o, model.ReservationCompleted); err != nil {
		return err
	}
	o.CheckedOutAt = &now
	return nil
}

// 取消: pending → cancelled
func Cancel(o *model.Order, now time.Time) error {
	if err := transition(o, model.ReservationCancelled); err != nil {
		return err
	}
	o.CancelledAt = &now
	return nil
}

func CanExtend(o model.Order) bool {
	return o.ReservationStatus == model.ReservationPending && o.AutoExtendCount < MaxAutoExtensions
}

// 30分延長: pending → pending
func Extend(o *model.Order) error {
	if err := transition(o, model.ReservationPending); err != nil {
		return err
	}
	if o.AutoExtendCount >= MaxAutoExtensions {
		return ErrExtensionLimit
	}
	o.AutoExtendCount++
	o.TotalExtendedMinutes += int(ExtensionStep / time.Minute)
	return nil
}

// もう1回延長したときの占有区間
func ExtendedInterval(o model.Order) (Interval, bool) {
	held, ok := Occupied(o)
	if !ok {
		return Interval{}, false
	}
	held.End = held.End.Add(ExtensionStep)
	return held, true
}

// pendingのまま 退店時刻＋延長分 を過ぎたか
func IsOverdue(o model.Order, now time.Time) bool {
	if o.ReservationStatus != model.ReservationPending || o.CheckOutTime == nil {
		return false
	}
	return now.After(EffectiveCheckOut(o))
}

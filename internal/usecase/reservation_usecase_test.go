package usecase_test

import (
	"context"
	"testing"

	"orderdesk/internal/domain/model"
	"orderdesk/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// 12:00-13:00 の予約を1件作ってIDを返す
func (h *harness) bookLunch(t *testing.T, actor usecase.Actor, table model.Table, slot model.TimeSlot) usecase.OrderOutput {
	t.Helper()
	h.fillCart(t, actor, h.seedDish(t))
	out, _, err := h.orders.PlaceOrder(context.Background(), actor, dineInInput("66.00", table.ID, slot.ID, 2))
	require.NoError(t, err)
	return out
}

func TestReservation_CheckInThenCheckOut(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	booked := h.bookLunch(t, customer, h.seedTable(t, "T01", 4), h.seedSlot(t, "12:00", "13:00"))

	h.clock.now = timeAt(12, 5)
	in, err := h.reservations.CheckIn(ctx, customer, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationPending, in.Reservation.Status)
	require.NotNil(t, in.Reservation.CheckedInAt)

	_, err = h.reservations.CheckIn(ctx, customer, booked.ID)
	requireKind(t, err, usecase.ErrInvalidTransition)

	h.clock.now = timeAt(12, 55)
	out, err := h.reservations.CheckOut(ctx, admin, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCompleted, out.Reservation.Status)
	assert.Equal(t, "COMPLETED", out.Status)

	//終端からは動かない
	_, err = h.reservations.Cancel(ctx, customer, booked.ID)
	requireKind(t, err, usecase.ErrInvalidTransition)

	trail, err := h.adminOrders.AuditTrail(ctx, admin, booked.ID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, model.AuditActionCheckIn, trail[0].Action)
	assert.Equal(t, model.AuditActionCheckOut, trail[1].Action)
	assert.Equal(t, adminID, trail[1].ActorUserID)
	assert.Contains(t, trail[1].BeforeJSON, `"reservation_status":"pending"`)
	assert.Contains(t, trail[1].AfterJSON, `"reservation_status":"completed"`)

	h.pub.AssertCalled(t, "Publish", mock.Anything, usecase.EventReservationCheckedOut, booked.OrderNumber, mock.Anything)
}

func TestReservation_CancelFreesTheTable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	table := h.seedTable(t, "T01", 4)
	slot := h.seedSlot(t, "12:00", "13:00")
	booked := h.bookLunch(t, customer, table, slot)

	out, err := h.reservations.Cancel(ctx, customer, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, out.Reservation.Status)
	assert.Equal(t, "CANCELED", out.Status)

	//同じ枠をもう一度取れる
	h.bookLunch(t, other, table, slot)
}

func TestReservation_Ownership(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	booked := h.bookLunch(t, customer, h.seedTable(t, "T01", 4), h.seedSlot(t, "12:00", "13:00"))

	_, err := h.reservations.Cancel(ctx, other, booked.ID)
	requireKind(t, err, usecase.ErrUnauthorized)

	_, err = h.reservations.CheckIn(ctx, usecase.Actor{}, booked.ID)
	requireKind(t, err, usecase.ErrUnauthenticated)

	_, err = h.reservations.CheckIn(ctx, customer, 9999)
	requireKind(t, err, usecase.ErrNotFound)
}

func TestReservation_NonReservationOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.fillCart(t, customer, h.seedDish(t))
	placed, _, err := h.orders.PlaceOrder(ctx, customer, pickupInput("66.00"))
	require.NoError(t, err)

	_, err = h.reservations.CheckIn(ctx, customer, placed.ID)
	requireKind(t, err, usecase.ErrInvalidTransition)
}

func TestReservation_ExtendIsBounded(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	booked := h.bookLunch(t, customer, h.seedTable(t, "T01", 4), h.seedSlot(t, "12:00", "13:00"))

	for i := 1; i <= 2; i++ {
		out, err := h.reservations.Extend(ctx, customer, booked.ID)
		require.NoError(t, err)
		assert.Equal(t, i, out.Reservation.AutoExtendCount)
		assert.Equal(t, 30*i, out.Reservation.TotalExtendedMinutes)
	}

	_, err := h.reservations.Extend(ctx, customer, booked.ID)
	requireKind(t, err, usecase.ErrExtensionLimitReached)
}

func TestReservation_ExtendBlockedByNextBooking(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	table := h.seedTable(t, "T01", 4)
	booked := h.bookLunch(t, customer, table, h.seedSlot(t, "12:00", "13:00"))
	h.bookLunch(t, other, table, h.seedSlot(t, "13:00", "14:00"))

	_, err := h.reservations.Extend(ctx, customer, booked.ID)
	requireKind(t, err, usecase.ErrTableUnavailable)
	assert.Equal(t, 0, h.store.orders[booked.ID].AutoExtendCount)
}

func TestSweep_ExtendsThenFlags(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	booked := h.bookLunch(t, customer, h.seedTable(t, "T01", 4), h.seedSlot(t, "12:00", "13:00"))

	//13:10 → 13:30まで延長
	h.clock.now = timeAt(13, 10)
	res, err := h.reservations.Sweep(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{booked.OrderNumber}, res.Extended)
	assert.Empty(t, res.Flagged)

	//直後の再実行は何もしない
	res, err = h.reservations.Sweep(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, res.Scanned)
	assert.Empty(t, res.Extended)

	//13:40 → 14:00まで延長（2回目）
	h.clock.now = timeAt(13, 40)
	res, err = h.reservations.Sweep(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, res.Extended, 1)

	//14:10 → 上限なのでフラグ
	h.clock.now = timeAt(14, 10)
	res, err = h.reservations.Sweep(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Extended)
	assert.Equal(t, []string{booked.OrderNumber}, res.Flagged)

	o := h.store.orders[booked.ID]
	assert.Equal(t, 2, o.AutoExtendCount)
	assert.Equal(t, 60, o.TotalExtendedMinutes)
	require.NotNil(t, o.OverdueFlaggedAt)
	assert.Equal(t, model.ReservationPending, o.ReservationStatus)

	//フラグ済みは対象外
	res, err = h.reservations.Sweep(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, res.Scanned)

	h.pub.AssertCalled(t, "Publish", mock.Anything, usecase.EventReservationOverdue, booked.OrderNumber, mock.Anything)
}

func TestSweep_FlagsWhenExtensionWouldCollide(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	table := h.seedTable(t, "T01", 4)
	booked := h.bookLunch(t, customer, table, h.seedSlot(t, "12:00", "13:00"))
	next := h.bookLunch(t, other, table, h.seedSlot(t, "13:00", "14:00"))

	h.clock.now = timeAt(13, 10)
	res, err := h.reservations.Sweep(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Extended)
	assert.Equal(t, []string{booked.OrderNumber}, res.Flagged)

	//次の予約には触らない
	n := h.store.orders[next.ID]
	assert.Nil(t, n.OverdueFlaggedAt)
	assert.Zero(t, n.AutoExtendCount)
}

func TestSweep_FlagsWhenTooLateToExtend(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	booked := h.bookLunch(t, customer, h.seedTable(t, "T01", 4), h.seedSlot(t, "12:00", "13:00"))

	//30分延ばしても過ぎている
	h.clock.now = timeAt(13, 45)
	res, err := h.reservations.Sweep(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{booked.OrderNumber}, res.Flagged)
	assert.Zero(t, h.store.orders[booked.ID].AutoExtendCount)
}

func TestSweep_LeavesCheckedOutAlone(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	booked := h.bookLunch(t, customer, h.seedTable(t, "T01", 4), h.seedSlot(t, "12:00", "13:00"))

	_, err := h.reservations.CheckOut(ctx, customer, booked.ID)
	require.NoError(t, err)

	h.clock.now = timeAt(15, 0)
	res, err := h.reservations.Sweep(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, res.Scanned)
}

func TestProcessExpired_AdminOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.reservations.ProcessExpired(ctx, customer)
	requireKind(t, err, usecase.ErrUnauthorized)

	res, err := h.reservations.ProcessExpired(ctx, admin)
	require.NoError(t, err)
	assert.Zero(t, res.Scanned)
}

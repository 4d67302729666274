package usecase_test

import (
	"context"
	"testing"
	"time"

	"orderdesk/internal/domain/model"
	"orderdesk/internal/usecase"
	"orderdesk/internal/validator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var jst = time.FixedZone("JST", 9*60*60)

const (
	customerID = int64(100)
	otherID    = int64(200)
	adminID    = int64(1)
)

var (
	customer = usecase.Actor{UserID: customerID, Role: model.RoleUser}
	other    = usecase.Actor{UserID: otherID, Role: model.RoleUser}
	admin    = usecase.Actor{UserID: adminID, Role: model.RoleAdmin}
)

type harness struct {
	store *memStore
	clock *fixedClock
	pub   *MockPublisher

	orders       *usecase.OrderUsecase
	reservations *usecase.ReservationUsecase
	carts        *usecase.CartUsecase
	tables       *usecase.TableUsecase
	adminOrders  *usecase.AdminOrderUsecase
	addresses    *usecase.AddressUsecase
}

// 2026-03-01 10:00 JST 固定
func newHarness(t *testing.T) *harness {
	t.Helper()

	store := newMemStore()
	clock := &fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, jst)}
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	log := discardLogger()
	slots := usecase.NewTimeSlotCatalog(slotsView{store}, log)
	ov := validator.NewOrderValidator(jst)

	return &harness{
		store: store,
		clock: clock,
		pub:   pub,
		orders: usecase.NewOrderUsecase(usecase.OrderUsecaseDeps{
			Tx:        store,
			Addresses: addressesView{store},
			TimeSlots: slots,
			Validator: ov,
			Numbers:   &seqNumbers{},
			Events:    pub,
			Clock:     clock,
			Location:  jst,
			Log:       log,
		}),
		reservations: usecase.NewReservationUsecase(store, pub, clock, 100, log),
		carts:        usecase.NewCartUsecase(store, store, store, catalogView{store}, validator.NewCartValidator(), log),
		tables:       usecase.NewTableUsecase(tablesView{store}, store, slots, ov, jst, log),
		adminOrders:  usecase.NewAdminOrderUsecase(store, auditView{store}, log),
		addresses:    usecase.NewAddressUsecase(addressesView{store}, clock, log),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

// 25.00 + addon 3.00 + variant 5.00 の料理
func (h *harness) seedDish(t *testing.T) model.Dish {
	t.Helper()
	d, err := catalogView{h.store}.CreateDish(context.Background(), model.Dish{
		Name:      "Grilled chicken",
		BasePrice: dec("25.00"),
		IsActive:  true,
		Addons:    []model.DishAddon{{Name: "cheese", Price: dec("3.00")}},
		Variants:  []model.DishVariant{{Name: "large", PriceModifier: dec("5.00")}},
	})
	require.NoError(t, err)
	return d
}

func (h *harness) seedTable(t *testing.T, code string, capacity int) model.Table {
	t.Helper()
	tbl, err := tablesView{h.store}.Create(context.Background(), model.Table{Code: code, Capacity: capacity})
	require.NoError(t, err)
	return tbl
}

func (h *harness) seedSlot(t *testing.T, start, end string) model.TimeSlot {
	t.Helper()
	s, err := slotsView{h.store}.Create(context.Background(), model.TimeSlot{StartTime: start, EndTime: end})
	require.NoError(t, err)
	return s
}

// 66.00 のカートを作る
func (h *harness) fillCart(t *testing.T, actor usecase.Actor, dish model.Dish) usecase.CartResponse {
	t.Helper()
	cart, err := h.carts.AddItem(context.Background(), actor, usecase.AddCartItemInput{
		DishID:     dish.ID,
		Quantity:   2,
		AddonIDs:   []int64{dish.Addons[0].ID},
		VariantIDs: []int64{dish.Variants[0].ID},
	})
	require.NoError(t, err)
	return cart
}

func pickupInput(subtotal string) usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{
		ServiceMethod: string(model.ServicePickup),
		PaymentMethod: string(model.PaymentCash),
		PaymentStatus: string(model.PaymentUnpaid),
		Subtotal:      dec(subtotal),
		DeliveryFee:   decimal.Zero,
		Discount:      decimal.Zero,
		Total:         dec(subtotal),
	}
}

func dineInInput(subtotal string, tableID, slotID int64, guests int) usecase.PlaceOrderInput {
	in := pickupInput(subtotal)
	in.ServiceMethod = string(model.ServiceDineIn)
	in.TableID = ptr(tableID)
	in.TimeSlotID = ptr(slotID)
	in.GuestCount = guests
	in.DiningDate = "2026-03-01"
	return in
}

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
}

// 2026-03-01 の h:m（JST）
func timeAt(hour, min int) time.Time {
	return time.Date(2026, 3, 1, hour, min, 0, 0, jst)
}

//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"orderdesk/internal/config"
	"orderdesk/internal/domain/model"
	"orderdesk/internal/infra/db"
	"orderdesk/internal/infra/events"
	infraRepo "orderdesk/internal/infra/repository"
	"orderdesk/internal/server"
	"orderdesk/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// go test -tags integration ./internal/infra/repository/...

type env struct {
	gdb *gorm.DB
	c   *server.Container
	loc *time.Location
	log *slog.Logger
	pub *events.Publisher
}

func startPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16",
		Env:          map[string]string{"POSTGRES_PASSWORD": "postgres", "POSTGRES_USER": "postgres", "POSTGRES_DB": "orderdesk"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/orderdesk?sslmode=disable", host, port.Port())
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	gdb, err := db.Open(startPostgres(ctx, t), "error")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	pub := events.NewPublisher(events.NewLogTransport(log))
	cfg := config.Config{Location: loc, SweepBatchSize: 50}

	return &env{gdb: gdb, c: server.NewContainer(cfg, gdb, pub, log), loc: loc, log: log, pub: pub}
}

// =====================
// fixtures
// =====================

func (e *env) user(t *testing.T, email string) usecase.Actor {
	t.Helper()
	u := &model.User{Email: email, Role: model.RoleUser, IsActive: true}
	require.NoError(t, e.c.Users.Create(context.Background(), u))
	return usecase.Actor{UserID: u.ID, Role: model.RoleUser}
}

func (e *env) dish(t *testing.T) model.Dish {
	t.Helper()
	d, err := infraRepo.NewCatalogGormRepository(e.gdb).CreateDish(context.Background(), model.Dish{
		Name: "Ramen", BasePrice: decimal.RequireFromString("25.00"), IsActive: true,
	})
	require.NoError(t, err)
	return d
}

func (e *env) tableAndSlot(t *testing.T) (model.Table, model.TimeSlot) {
	t.Helper()
	ctx := context.Background()
	tbl, err := infraRepo.NewTableGormRepository(e.gdb).Create(ctx, model.Table{Code: "T01", Capacity: 4})
	require.NoError(t, err)
	slot, err := infraRepo.NewTimeSlotGormRepository(e.gdb).Create(ctx, model.TimeSlot{StartTime: "12:00", EndTime: "13:00"})
	require.NoError(t, err)
	return tbl, slot
}

// 明日（TIME_ZONE基準）
func (e *env) tomorrow() time.Time {
	now := time.Now().In(e.loc)
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, e.loc)
}

func (e *env) dineIn(tbl model.Table, slot model.TimeSlot) usecase.PlaceOrderInput {
	tableID, slotID := tbl.ID, slot.ID
	return usecase.PlaceOrderInput{
		ServiceMethod: string(model.ServiceDineIn),
		PaymentMethod: string(model.PaymentCash),
		PaymentStatus: string(model.PaymentUnpaid),
		Subtotal:      decimal.RequireFromString("25.00"),
		DeliveryFee:   decimal.Zero,
		Discount:      decimal.Zero,
		Total:         decimal.RequireFromString("25.00"),
		TableID:       &tableID,
		TimeSlotID:    &slotID,
		GuestCount:    2,
		DiningDate:    e.tomorrow().Format(time.DateOnly),
	}
}

func pickup(total string) usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{
		ServiceMethod: string(model.ServicePickup),
		PaymentMethod: string(model.PaymentCash),
		PaymentStatus: string(model.PaymentUnpaid),
		Subtotal:      decimal.RequireFromString(total),
		DeliveryFee:   decimal.Zero,
		Discount:      decimal.Zero,
		Total:         decimal.RequireFromString(total),
	}
}

func (e *env) addToCart(t *testing.T, actor usecase.Actor, dish model.Dish) {
	t.Helper()
	_, err := e.c.Carts.AddItem(context.Background(), actor, usecase.AddCartItemInput{DishID: dish.ID, Quantity: 1})
	require.NoError(t, err)
}

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

// =====================
// tests
// =====================

func TestPostgres_ConcurrentCommitsDoNotDoubleBook(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	dish := e.dish(t)
	tbl, slot := e.tableAndSlot(t)

	const guests = 6
	actors := make([]usecase.Actor, guests)
	for i := range actors {
		actors[i] = e.user(t, fmt.Sprintf("guest%d@example.com", i))
		e.addToCart(t, actors[i], dish)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
	)
	for _, a := range actors {
		wg.Add(1)
		go func(a usecase.Actor) {
			defer wg.Done()
			_, _, err := e.c.Orders.PlaceOrder(ctx, a, e.dineIn(tbl, slot))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			assert.ErrorIs(t, err, usecase.ErrTableUnavailable)
			rejected++
		}(a)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, guests-1, rejected)

	var pending int64
	require.NoError(t, e.gdb.Model(&model.Order{}).
		Where("table_id = ? AND reservation_status = ?", tbl.ID, model.ReservationPending).
		Count(&pending).Error)
	assert.EqualValues(t, 1, pending)
}

// 同じカートを同時に確定しても注文は1件
func TestPostgres_ConcurrentCommitsOnSameCart(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	actor := e.user(t, "twice@example.com")
	e.addToCart(t, actor, e.dish(t))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		ok    int
		empty int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := e.c.Orders.PlaceOrder(ctx, actor, pickup("25.00"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			assert.ErrorIs(t, err, usecase.ErrEmptyCart)
			empty++
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, empty)

	var orders int64
	require.NoError(t, e.gdb.Model(&model.Order{}).Where("user_id = ?", actor.UserID).Count(&orders).Error)
	assert.EqualValues(t, 1, orders)
}

// 確定と同時に追加した明細は、確定済みの注文か新しいカートのどちらか一方に必ず残る
func TestPostgres_AddRacingCommitIsNotLost(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	actor := e.user(t, "racer@example.com")
	e.addToCart(t, actor, e.dish(t))

	gyoza, err := infraRepo.NewCatalogGormRepository(e.gdb).CreateDish(ctx, model.Dish{
		Name: "Gyoza", BasePrice: decimal.RequireFromString("8.00"), IsActive: true,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _, err := e.c.Orders.PlaceOrder(ctx, actor, pickup("25.00"))
		//追加が先に入った場合は小計不一致で弾かれる
		if err != nil {
			assert.ErrorIs(t, err, usecase.ErrValidationFailed)
		}
	}()
	go func() {
		defer wg.Done()
		_, err := e.c.Carts.AddItem(ctx, actor, usecase.AddCartItemInput{DishID: gyoza.ID, Quantity: 1})
		assert.NoError(t, err)
	}()
	wg.Wait()

	var inCart, inOrders int64
	require.NoError(t, e.gdb.Model(&model.CartItem{}).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ? AND carts.status = ? AND cart_items.dish_id = ?", actor.UserID, model.CartStatusActive, gyoza.ID).
		Count(&inCart).Error)
	require.NoError(t, e.gdb.Model(&model.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND order_items.dish_id = ?", actor.UserID, gyoza.ID).
		Count(&inOrders).Error)
	assert.EqualValues(t, 1, inCart+inOrders)
}

func TestPostgres_IdempotentReplay(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	dish := e.dish(t)
	actor := e.user(t, "replay@example.com")
	e.addToCart(t, actor, dish)

	in := pickup("25.00")
	in.IdempotencyKey = "key-1"

	first, replayed, err := e.c.Orders.PlaceOrder(ctx, actor, in)
	require.NoError(t, err)
	assert.False(t, replayed)

	second, replayed, err := e.c.Orders.PlaceOrder(ctx, actor, in)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.OrderNumber, second.OrderNumber)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "Ramen", second.Items[0].Name)
}

func TestPostgres_SweepIsIdempotentUnderConcurrency(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	dish := e.dish(t)
	tbl, slot := e.tableAndSlot(t)
	actor := e.user(t, "late@example.com")
	e.addToCart(t, actor, dish)

	placed, _, err := e.c.Orders.PlaceOrder(ctx, actor, e.dineIn(tbl, slot))
	require.NoError(t, err)

	//枠終了(13:00)の10分後
	clock := &stepClock{now: e.tomorrow().Add(13*time.Hour + 10*time.Minute)}
	sweeper := usecase.NewReservationUsecase(infraRepo.NewTxManagerGorm(e.gdb), e.pub, clock, 50, e.log)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []usecase.SweepResult
	)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := sweeper.Sweep(ctx, 0)
			assert.NoError(t, err)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}()
	}
	wg.Wait()

	extended := 0
	for _, r := range results {
		extended += len(r.Extended)
	}
	assert.Equal(t, 1, extended)

	var o model.Order
	require.NoError(t, e.gdb.First(&o, placed.ID).Error)
	assert.Equal(t, 1, o.AutoExtendCount)
	assert.Equal(t, 30, o.TotalExtendedMinutes)
	assert.Nil(t, o.OverdueFlaggedAt)

	//延長後の終了(13:30)前なので何もしない
	res, err := sweeper.Sweep(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, res.Scanned)

	var audits int64
	require.NoError(t, e.gdb.Model(&model.AuditLog{}).
		Where("resource_id = ? AND action = ?", placed.ID, model.AuditActionExtend).
		Count(&audits).Error)
	assert.EqualValues(t, 1, audits)
}

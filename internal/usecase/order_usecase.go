package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"orderdesk/internal/domain/model"
	"orderdesk/internal/domain/pricing"
	"orderdesk/internal/domain/reservation"
	repo "orderdesk/internal/repository"

	"github.com/shopspring/decimal"
)

// order_number衝突時の再採番回数
const maxOrderNumberAttempts = 5

type OrderUsecase struct {
	tx        repo.TransactionManager
	addresses repo.AddressRepository
	timeSlots *TimeSlotCatalog
	validator OrderValidator
	numbers   OrderNumberGenerator
	events    EventPublisher
	clock     Clock
	loc       *time.Location
	log       *slog.Logger
}

type OrderUsecaseDeps struct {
	Tx        repo.TransactionManager
	Addresses repo.AddressRepository
	TimeSlots *TimeSlotCatalog
	Validator OrderValidator
	Numbers   OrderNumberGenerator
	Events    EventPublisher
	Clock     Clock
	Location  *time.Location
	Log       *slog.Logger
}

func NewOrderUsecase(d OrderUsecaseDeps) *OrderUsecase {
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Numbers == nil {
		d.Numbers = NewOrderNumberGenerator(d.Location)
	}
	return &OrderUsecase{
		tx:        d.Tx,
		addresses: d.Addresses,
		timeSlots: d.TimeSlots,
		validator: d.Validator,
		numbers:   d.Numbers,
		events:    d.Events,
		clock:     d.Clock,
		loc:       d.Location,
		log:       d.Log,
	}
}

type PlaceOrderInput struct {
	IdempotencyKey string

	ServiceMethod string
	PaymentMethod string
	PaymentStatus string

	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal

	PromoCode    string
	Instructions string
	PickupTime   *time.Time

	//delivery
	AddressID *int64

	//dine_in
	TableID    *int64
	GuestCount int
	DiningDate string
	TimeSlotID *int64
}

// 確定前に決まる予約情報
type dineInPlan struct {
	tableID    int64
	guestCount int
	date       time.Time
	slotID     int64
	window     reservation.Interval
}

// PlaceOrder はACTIVEカートを1トランザクションで注文に変換する。
// 冪等キーが同じなら既存の注文を返す（replayed=true）。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, actor Actor, in PlaceOrderInput) (OrderOutput, bool, error) {
	if err := requireActor(actor); err != nil {
		return OrderOutput{}, false, err
	}

	diningDate, err := u.validator.ValidatePlaceOrder(in)
	if err != nil {
		return OrderOutput{}, false, err
	}

	//合計の整合（明細との突き合わせはTx内）
	if !in.Total.Equal(in.Subtotal.Add(in.DeliveryFee).Sub(in.Discount)) {
		return OrderOutput{}, false, NewValidationError(map[string]string{
			"total": "must equal subtotal + delivery_fee - discount",
		})
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	now := u.clock.Now()

	header := model.Order{
		UserID:        actor.UserID,
		Status:        model.OrderStatusPending,
		ServiceMethod: model.ServiceMethod(in.ServiceMethod),
		PaymentMethod: model.PaymentMethod(in.PaymentMethod),
		PaymentStatus: model.PaymentStatus(in.PaymentStatus),
		Subtotal:      in.Subtotal,
		DeliveryFee:   in.DeliveryFee,
		Discount:      in.Discount,
		Total:         in.Total,
		PromoCode:     strings.TrimSpace(in.PromoCode),
		Instructions:  strings.TrimSpace(in.Instructions),
		PickupTime:    in.PickupTime,
	}
	if key != "" {
		header.IdempotencyKey = &key
	}

	//住所の存在確認＋所有チェック
	if header.ServiceMethod == model.ServiceDelivery {
		if err := u.attachAddress(ctx, actor, *in.AddressID, &header); err != nil {
			return OrderOutput{}, false, err
		}
	}

	var plan *dineInPlan
	if header.ServiceMethod == model.ServiceDineIn {
		p, err := u.planDineIn(ctx, in, diningDate, now)
		if err != nil {
			return OrderOutput{}, false, err
		}
		plan = &p
	}

	var (
		out      OrderOutput
		replayed bool
		created  model.Order
	)

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//カートをロック
		cart, cartErr := r.Carts().LockActiveByUserID(ctx, actor.UserID)
		if cartErr != nil && !errors.Is(cartErr, repo.ErrNotFound) {
			return u.txFailed(ctx, actor, "lock cart", cartErr)
		}

		// 同じキーなら同じ結果（ロック後なので先行Txの結果が見える）
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, actor.UserID, key)
			if err != nil {
				return u.txFailed(ctx, actor, "find by idempotency key", err)
			}
			if found {
				full, err := r.Orders().FindByID(ctx, existing.ID)
				if err != nil {
					return u.txFailed(ctx, actor, "load replayed order", err)
				}
				out = toOrderOutput(full, full.Items, full.PackageItems)
				replayed = true
				return nil
			}
		}

		if cartErr != nil {
			return NewError(ErrEmptyCart, "cart is empty")
		}

		items, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return u.txFailed(ctx, actor, "list cart items", err)
		}
		pkgs, err := r.CartItems().ListPackagesByCartID(ctx, cart.ID)
		if err != nil {
			return u.txFailed(ctx, actor, "list cart packages", err)
		}
		if len(items) == 0 && len(pkgs) == 0 {
			return NewError(ErrEmptyCart, "cart is empty")
		}

		order := header
		order.CartID = cart.ID

		if plan != nil {
			if err := u.reserveTable(ctx, r, plan, &order); err != nil {
				return err
			}
		}

		//スナップショット
		orderItems, orderPkgs, err := pricing.Snapshot(items, pkgs)
		if err != nil {
			return NewError(ErrInvalidCartState, err.Error())
		}
		if sum := pricing.Sum(orderItems, orderPkgs); !sum.Equal(in.Subtotal) {
			return NewValidationError(map[string]string{
				"subtotal": "must equal the sum of cart lines (" + sum.StringFixed(2) + ")",
			})
		}

		if err := u.createWithNumber(ctx, r, &order); err != nil {
			return err
		}

		if err := r.OrderItems().CreateBulk(ctx, order.ID, orderItems); err != nil {
			return u.txFailed(ctx, actor, "create order items", err)
		}
		if err := r.OrderItems().CreatePackagesBulk(ctx, order.ID, orderPkgs); err != nil {
			return u.txFailed(ctx, actor, "create order packages", err)
		}

		//カートをCHECKED_OUTにして、明細をクリア（再注文防止）
		if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusCheckedOut); err != nil {
			return u.txFailed(ctx, actor, "checkout cart", err)
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return u.txFailed(ctx, actor, "clear cart", err)
		}

		created, err = r.Orders().FindByID(ctx, order.ID)
		if err != nil {
			return u.txFailed(ctx, actor, "reload order", err)
		}
		out = toOrderOutput(created, created.Items, created.PackageItems)
		return nil
	})
	if err != nil {
		return OrderOutput{}, false, err
	}

	if !replayed {
		u.log.InfoContext(ctx, "order committed",
			slog.Int64("order_id", created.ID),
			slog.String("order_number", created.OrderNumber),
			slog.Int64("user_id", actor.UserID),
			slog.String("service_method", string(created.ServiceMethod)),
		)
		publish(ctx, u.events, u.log, EventOrderCommitted, created.OrderNumber, OrderCommittedEvent{
			OrderID:       created.ID,
			OrderNumber:   created.OrderNumber,
			UserID:        created.UserID,
			ServiceMethod: created.ServiceMethod,
			Total:         created.Total,
			TableID:       created.TableID,
			DiningDate:    created.DiningDate,
			TimeSlotID:    created.TimeSlotID,
		})
	}
	return out, replayed, nil
}

func (u *OrderUsecase) attachAddress(ctx context.Context, actor Actor, addressID int64, o *model.Order) error {
	addr, err := u.addresses.FindByID(ctx, addressID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewError(ErrNotFound, "address not found")
	}
	if err != nil {
		return u.txFailed(ctx, actor, "find address", err)
	}
	//他人の住所なら403
	if addr.UserID != actor.UserID {
		return NewError(ErrUnauthorized, "address belongs to another user")
	}

	o.AddressID = &addr.ID
	o.DeliveryName = addr.Name
	o.DeliveryPhone = addr.Phone
	o.DeliveryAddress = addr.AddressLine
	o.DeliveryBuilding = addr.Building
	o.DeliveryFloor = addr.Floor
	return nil
}

func (u *OrderUsecase) planDineIn(ctx context.Context, in PlaceOrderInput, date time.Time, now time.Time) (dineInPlan, error) {
	_, start, end, err := u.timeSlots.Resolve(ctx, *in.TimeSlotID)
	if err != nil {
		return dineInPlan{}, err
	}
	window := reservation.Window(date, start, end, u.loc)
	if !window.End.After(now) {
		return dineInPlan{}, NewValidationError(map[string]string{
			"dining_date": "reservation window has already passed",
		})
	}
	return dineInPlan{
		tableID:    *in.TableID,
		guestCount: in.GuestCount,
		date:       date,
		slotID:     *in.TimeSlotID,
		window:     window,
	}, nil
}

// テーブル行をロックしてから重複を再判定する
func (u *OrderUsecase) reserveTable(ctx context.Context, r repo.TxRepos, p *dineInPlan, o *model.Order) error {
	table, err := r.Tables().LockByID(ctx, p.tableID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewError(ErrNotFound, "table not found")
	}
	if err != nil {
		return u.txFailed(ctx, Actor{UserID: o.UserID}, "lock table", err)
	}
	if table.Capacity < p.guestCount {
		return NewError(ErrTableUnavailable, "table capacity is smaller than guest count")
	}

	a, err := evaluateTable(ctx, r.Orders(), table, p.date, p.window)
	if err != nil {
		return u.txFailed(ctx, Actor{UserID: o.UserID}, "list reservations", err)
	}
	switch a.Status {
	case model.AvailabilityAvailable:
	case model.AvailabilityMaintenance:
		return NewError(ErrTableUnavailable, "table is under maintenance")
	case model.AvailabilityOccupied:
		return NewError(ErrTableUnavailable, "table is already reserved for this time")
	default:
		return NewError(ErrTableUnavailable, "")
	}

	// date列はセッションTZで丸められるので、暦日をUTC 0時で持つ
	date := time.Date(p.date.Year(), p.date.Month(), p.date.Day(), 0, 0, 0, 0, time.UTC)
	in, out := p.window.Start, p.window.End
	slotID, tableID := p.slotID, table.ID
	o.TableID = &tableID
	o.TableCode = table.Code
	o.GuestCount = p.guestCount
	o.DiningDate = &date
	o.TimeSlotID = &slotID
	o.CheckInTime = &in
	o.CheckOutTime = &out
	o.ReservationStatus = model.ReservationPending
	o.AutoExtendCount = 0
	o.TotalExtendedMinutes = 0
	return nil
}

// 採番して保存。衝突したら採り直す。
func (u *OrderUsecase) createWithNumber(ctx context.Context, r repo.TxRepos, o *model.Order) error {
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		o.OrderNumber = u.numbers.Next(u.clock.Now())
		err := r.Orders().Create(ctx, o)
		if err == nil {
			return nil
		}
		if errors.Is(err, repo.ErrDuplicateOrderNumber) {
			u.log.WarnContext(ctx, "order number collision", slog.String("order_number", o.OrderNumber), slog.Int("attempt", attempt))
			continue
		}
		if errors.Is(err, repo.ErrDuplicateIdempotencyKey) {
			// カートロックで直列化されるので通常は起きない
			return NewError(ErrTransactionFailed, "concurrent order with the same idempotency key")
		}
		return u.txFailed(ctx, Actor{UserID: o.UserID}, "create order", err)
	}
	return u.txFailed(ctx, Actor{UserID: o.UserID}, "create order", errors.New("order number attempts exhausted"))
}

func (u *OrderUsecase) txFailed(ctx context.Context, actor Actor, step string, cause error) error {
	u.log.ErrorContext(ctx, "order transaction failed",
		slog.String("step", step),
		slog.Int64("user_id", actor.UserID),
		slog.Any("error", cause),
	)
	return NewError(ErrTransactionFailed, "db error")
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, actor Actor, page, limit int) ([]OrderOutput, int64, error) {
	if err := requireActor(actor); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var (
		outs  []OrderOutput
		total int64
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, n, err := r.Orders().ListByUserID(ctx, actor.UserID, page, limit)
		if err != nil {
			return u.txFailed(ctx, actor, "list orders", err)
		}
		total = n

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			out, err := loadOrderOutput(ctx, r, o)
			if err != nil {
				return u.txFailed(ctx, actor, "list order items", err)
			}
			outs = append(outs, out)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return outs, total, nil
}

// 本人か管理者のみ
func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, actor Actor, orderID int64) (OrderOutput, error) {
	if err := requireActor(actor); err != nil {
		return OrderOutput{}, err
	}
	if orderID <= 0 {
		return OrderOutput{}, NewValidationError(map[string]string{"id": "must be positive"})
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(ErrNotFound, "order not found")
		}
		if err != nil {
			return u.txFailed(ctx, actor, "find order", err)
		}
		if !actor.CanAccess(o.UserID) {
			return NewError(ErrUnauthorized, "order belongs to another user")
		}
		out = toOrderOutput(o, o.Items, o.PackageItems)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func loadOrderOutput(ctx context.Context, r repo.TxRepos, o model.Order) (OrderOutput, error) {
	items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, err
	}
	pkgs, err := r.OrderItems().ListPackagesByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, err
	}
	return toOrderOutput(o, items, pkgs), nil
}

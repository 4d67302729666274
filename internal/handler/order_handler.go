package handler

import (
	"net/http"
	"time"

	"orderdesk/internal/config"
	"orderdesk/internal/middleware"
	"orderdesk/internal/repository"
	"orderdesk/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	orders       *usecase.OrderUsecase
	reservations *usecase.ReservationUsecase
}

func NewOrderHandler(orders *usecase.OrderUsecase, reservations *usecase.ReservationUsecase) *OrderHandler {
	return &OrderHandler{orders: orders, reservations: reservations}
}

type OrderCreateRequest struct {
	ServiceMethod string `json:"service_method"`
	PaymentMethod string `json:"payment_method"`
	PaymentStatus string `json:"payment_status"`

	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`

	PromoCode    string     `json:"promo_code"`
	Instructions string     `json:"instructions"`
	PickupTime   *time.Time `json:"pickup_time"`

	AddressID *int64 `json:"address_id"`

	TableID    *int64 `json:"table_id"`
	GuestCount int    `json:"guest_count"`
	DiningDate string `json:"dining_date"`
	TimeSlotID *int64 `json:"time_slot_id"`
}

type OrderListResponse struct {
	Orders []usecase.OrderOutput `json:"orders"`
	Total  int64                 `json:"total"`
	Page   int                   `json:"page"`
	Limit  int                   `json:"limit"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.detail)

	//予約の状態遷移
	g.POST("/:id/check-in", h.checkIn)
	g.POST("/:id/check-out", h.checkOut)
	g.POST("/:id/cancel", h.cancel)
	g.POST("/:id/extend", h.extend)
}

func (h *OrderHandler) create(c echo.Context) error {
	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "body", "invalid json")
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	idemKey := c.Request().Header.Get("X-Idempotency-Key")

	out, replayed, err := h.orders.PlaceOrder(c.Request().Context(), actorFromContext(c), usecase.PlaceOrderInput{
		IdempotencyKey: idemKey,
		ServiceMethod:  req.ServiceMethod,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  req.PaymentStatus,
		Subtotal:       req.Subtotal,
		DeliveryFee:    req.DeliveryFee,
		Discount:       req.Discount,
		Total:          req.Total,
		PromoCode:      req.PromoCode,
		Instructions:   req.Instructions,
		PickupTime:     req.PickupTime,
		AddressID:      req.AddressID,
		TableID:        req.TableID,
		GuestCount:     req.GuestCount,
		DiningDate:     req.DiningDate,
		TimeSlotID:     req.TimeSlotID,
	})
	if err != nil {
		return writeError(c, err)
	}

	//再送は既存の注文をそのまま返す
	if replayed {
		return c.JSON(http.StatusOK, out)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "page", "must be a number")
	}
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return badRequest(c, "limit", "must be a number")
	}

	out, total, err := h.orders.ListMyOrders(c.Request().Context(), actorFromContext(c), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, OrderListResponse{Orders: out, Total: total, Page: page, Limit: limit})
}

func (h *OrderHandler) detail(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "id", "invalid id")
	}

	out, err := h.orders.GetMyOrderDetail(c.Request().Context(), actorFromContext(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type transitionFunc func(h *OrderHandler, c echo.Context, id int64) (usecase.OrderOutput, error)

func (h *OrderHandler) transition(c echo.Context, fn transitionFunc) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	out, err := fn(h, c, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) checkIn(c echo.Context) error {
	return h.transition(c, func(h *OrderHandler, c echo.Context, id int64) (usecase.OrderOutput, error) {
		return h.reservations.CheckIn(c.Request().Context(), actorFromContext(c), id)
	})
}

func (h *OrderHandler) checkOut(c echo.Context) error {
	return h.transition(c, func(h *OrderHandler, c echo.Context, id int64) (usecase.OrderOutput, error) {
		return h.reservations.CheckOut(c.Request().Context(), actorFromContext(c), id)
	})
}

func (h *OrderHandler) cancel(c echo.Context) error {
	return h.transition(c, func(h *OrderHandler, c echo.Context, id int64) (usecase.OrderOutput, error) {
		return h.reservations.Cancel(c.Request().Context(), actorFromContext(c), id)
	})
}

func (h *OrderHandler) extend(c echo.Context) error {
	return h.transition(c, func(h *OrderHandler, c echo.Context, id int64) (usecase.OrderOutput, error) {
		return h.reservations.Extend(c.Request().Context(), actorFromContext(c), id)
	})
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"orderdesk/internal/config"
	"orderdesk/internal/middleware"
	"orderdesk/internal/repository"
	"orderdesk/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc           *usecase.AdminOrderUsecase
	reservations *usecase.ReservationUsecase
	loc          *time.Location
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase, reservations *usecase.ReservationUsecase, loc *time.Location) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc, reservations: reservations, loc: loc}
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.TokenVersionGuard(userRepo))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("/orders", h.list)
	admin.GET("/orders/:id/audit-logs", h.auditLogs)
	admin.POST("/orders/:id/check-out", h.checkOut)
	admin.POST("/reservations/sweep", h.sweep)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "page", "must be a number")
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "limit", "must be a number")
	}

	f := repository.AdminOrderListFilter{
		Page:              page,
		Limit:             limit,
		Status:            c.QueryParam("status"),
		ReservationStatus: c.QueryParam("reservation_status"),
	}

	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "user_id", "must be a number")
		}
		f.UserID = &id
	}

	//利用日は店舗のタイムゾーンで解釈
	if v := c.QueryParam("dining_date"); v != "" {
		d, err := time.ParseInLocation(time.DateOnly, v, h.loc)
		if err != nil {
			return badRequest(c, "dining_date", "must be YYYY-MM-DD")
		}
		f.DiningDate = &d
	}

	if v := c.QueryParam("from"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "from", "must be RFC3339")
		}
		f.From = &tm
	}
	if v := c.QueryParam("to"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "to", "must be RFC3339")
		}
		f.To = &tm
	}

	out, err := h.uc.List(c.Request().Context(), actorFromContext(c), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) auditLogs(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	out, err := h.uc.AuditTrail(c.Request().Context(), actorFromContext(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 店舗側のチェックアウト
func (h *AdminOrderHandler) checkOut(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	out, err := h.reservations.CheckOut(c.Request().Context(), actorFromContext(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 超過予約の手動実行
func (h *AdminOrderHandler) sweep(c echo.Context) error {
	out, err := h.reservations.ProcessExpired(c.Request().Context(), actorFromContext(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

package handler

import (
	"net/http"
	"strconv"

	"orderdesk/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 席の空き確認は公開API
type TableHandler struct {
	tables    *usecase.TableUsecase
	timeSlots *usecase.TimeSlotCatalog
}

func NewTableHandler(tables *usecase.TableUsecase, timeSlots *usecase.TimeSlotCatalog) *TableHandler {
	return &TableHandler{tables: tables, timeSlots: timeSlots}
}

func (h *TableHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/tables/availability", h.availability)
	e.GET("/time-slots", h.listTimeSlots)
}

// ?date=2026-01-01&time_slot_id=1&party_size=4
func (h *TableHandler) availability(c echo.Context) error {
	q := usecase.AvailabilityQuery{Date: c.QueryParam("date")}

	if v := c.QueryParam("time_slot_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "time_slot_id", "must be a number")
		}
		q.TimeSlotID = id
	}

	size, ok := queryInt(c, "party_size", 0)
	if !ok {
		return badRequest(c, "party_size", "must be a number")
	}
	q.PartySize = size

	out, err := h.tables.FindAvailable(c.Request().Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TableHandler) listTimeSlots(c echo.Context) error {
	out, err := h.timeSlots.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

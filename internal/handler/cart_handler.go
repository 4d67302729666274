package handler

import (
	"net/http"

	"orderdesk/internal/config"
	"orderdesk/internal/middleware"
	"orderdesk/internal/repository"
	"orderdesk/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartItemRequest struct {
	DishID     int64   `json:"dish_id"`
	Quantity   int64   `json:"quantity"`
	AddonIDs   []int64 `json:"addon_ids"`
	VariantIDs []int64 `json:"variant_ids"`
}

type PackageSelectionRequest struct {
	DishID     int64   `json:"dish_id"`
	AddonIDs   []int64 `json:"addon_ids"`
	VariantIDs []int64 `json:"variant_ids"`
}

type AddCartPackageRequest struct {
	PackageID  int64                     `json:"package_id"`
	Quantity   int64                     `json:"quantity"`
	Selections []PackageSelectionRequest `json:"selections"`
}

// /cart, /cart/items, /cart/packages を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/cart")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.GET("", h.getCart)
	g.POST("/items", h.addItem)
	g.DELETE("/items/:id", h.deleteItem)
	g.POST("/packages", h.addPackage)
	g.DELETE("/packages/:id", h.deletePackage)
}

func (h *CartHandler) getCart(c echo.Context) error {
	out, err := h.uc.GetCart(c.Request().Context(), actorFromContext(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	var req AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "body", "invalid json")
	}

	out, err := h.uc.AddItem(c.Request().Context(), actorFromContext(c), usecase.AddCartItemInput{
		DishID:     req.DishID,
		Quantity:   req.Quantity,
		AddonIDs:   req.AddonIDs,
		VariantIDs: req.VariantIDs,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addPackage(c echo.Context) error {
	var req AddCartPackageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "body", "invalid json")
	}

	sel := make([]usecase.PackageSelection, 0, len(req.Selections))
	for _, s := range req.Selections {
		sel = append(sel, usecase.PackageSelection{
			DishID:     s.DishID,
			AddonIDs:   s.AddonIDs,
			VariantIDs: s.VariantIDs,
		})
	}

	out, err := h.uc.AddPackage(c.Request().Context(), actorFromContext(c), usecase.AddCartPackageInput{
		PackageID:  req.PackageID,
		Quantity:   req.Quantity,
		Selections: sel,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	out, err := h.uc.RemoveItem(c.Request().Context(), actorFromContext(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) deletePackage(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	out, err := h.uc.RemovePackage(c.Request().Context(), actorFromContext(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

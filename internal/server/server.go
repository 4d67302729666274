package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"orderdesk/internal/config"
	"orderdesk/internal/handler"
	"orderdesk/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 10 * time.Second

// NewEcho はルーティング済みのechoを返す
func NewEcho(cfg config.Config, c *Container, log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))

	handler.NewHealthHandler(c.DB).RegisterRoutes(e)
	handler.NewTableHandler(c.Tables, c.TimeSlots).RegisterRoutes(e)
	handler.NewCartHandler(c.Carts).RegisterRoutes(e, cfg, c.Users)
	handler.NewAddressHandler(c.Addresses).RegisterRoutes(e, cfg, c.Users)
	handler.NewOrderHandler(c.Orders, c.Reservations).RegisterRoutes(e, cfg, c.Users)
	handler.NewAdminOrderHandler(c.AdminOrders, c.Reservations, cfg.Location).RegisterRoutes(e, cfg, c.Users)

	return e
}

// Start はctxが終わるまでサーバーを動かし、終わったらgracefulに止める
func Start(ctx context.Context, addr string, e *echo.Echo, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server started", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info("http server shutting down")
	return e.Shutdown(shutdownCtx)
}

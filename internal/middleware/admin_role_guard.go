package middleware

import (
	"orderdesk/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// contextに入っているroleがADMINかどうかを確認します。
func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxUserRoleKey).(model.Role)
			if !ok || role == "" {
				return unauthenticated(c)
			}

			//USERは拒否、ADMINだけ許可
			if role != model.RoleAdmin {
				return forbidden(c, "admin only")
			}
			return next(c)
		}
	}
}

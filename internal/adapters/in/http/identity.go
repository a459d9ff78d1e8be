package http

import (
	"net/http"

	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/user"

	"github.com/labstack/echo/v4"
)

// Identity headers are set by the upstream gateway after it has verified the
// caller's credentials.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	userContextKey = "user"
)

// Identity resolves the gateway headers into a user.User stored on the echo
// context. Requests without a usable identity are rejected with 401.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := kernel.UUIDFromString(c.Request().Header.Get(HeaderUserID))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed "+HeaderUserID)
			}

			role, err := user.ParseRole(c.Request().Header.Get(HeaderUserRole))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or unknown "+HeaderUserRole)
			}

			u, err := user.NewUser(id, role)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			c.Set(userContextKey, u)
			return next(c)
		}
	}
}

// RequireRole lets the request through only when the resolved user has the
// given role.
func RequireRole(role user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := currentUser(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
			}
			if !u.Is(role) {
				return echo.NewHTTPError(http.StatusForbidden, "only a "+role.String()+" may do this")
			}
			return next(c)
		}
	}
}

func currentUser(c echo.Context) (user.User, bool) {
	u, ok := c.Get(userContextKey).(user.User)
	return u, ok
}

package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/medvisit/scheduler/internal/model"
	"github.com/medvisit/scheduler/internal/service"
)

const principalKey = "principal"

// Authenticate parses the Bearer token and stores the principal on the
// request context.
func Authenticate(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			principal, err := auth.ParseAccess(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// RequireRole rejects principals outside the allowed roles.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := c.Get(principalKey).(model.Principal)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			for _, role := range roles {
				if principal.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}

func principalFrom(c echo.Context) model.Principal {
	principal, _ := c.Get(principalKey).(model.Principal)
	return principal
}

package middleware

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/digitalblog/backoffice/internal/access"
	"github.com/labstack/echo/v4"
)

// AdminGate lets through only callers the policy grants. Unauthenticated
// callers are redirected to loginURL with the requested page in "next";
// authenticated callers without the role get 403.
func AdminGate(policy access.Policy, loginURL string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := CallerFrom(c)
			decision := policy.Decide(caller)

			switch decision {
			case access.Granted:
				return next(c)
			case access.Unauthenticated:
				slog.Info("admin access denied",
					"outcome", decision.String(),
					"path", c.Request().URL.Path,
				)
				return c.Redirect(http.StatusFound, loginRedirect(loginURL, c.Request().URL.RequestURI()))
			default:
				slog.Warn("admin access denied",
					"outcome", decision.String(),
					"user_id", caller.UserID,
					"role", caller.Role.String(),
					"path", c.Request().URL.Path,
				)
				return echo.NewHTTPError(http.StatusForbidden, "access denied")
			}
		}
	}
}

func loginRedirect(loginURL, next string) string {
	u, err := url.Parse(loginURL)
	if err != nil {
		return loginURL
	}
	q := u.Query()
	q.Set("next", next)
	u.RawQuery = q.Encode()
	return u.String()
}

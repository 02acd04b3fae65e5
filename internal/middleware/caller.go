package middleware

import (
	"strings"

	"github.com/digitalblog/backoffice/internal/access"
	"github.com/labstack/echo/v4"
)

const callerKey = "caller"

// CallerResolver works out who issued a request. ok is false when the
// request carries no credentials this resolver understands, or when they
// do not check out.
type CallerResolver interface {
	Resolve(c echo.Context) (caller access.Caller, ok bool)
}

// ResolverFunc adapts a function to CallerResolver.
type ResolverFunc func(c echo.Context) (access.Caller, bool)

func (f ResolverFunc) Resolve(c echo.Context) (access.Caller, bool) { return f(c) }

// ChainResolvers tries each resolver in turn and takes the first caller found.
func ChainResolvers(resolvers ...CallerResolver) CallerResolver {
	return ResolverFunc(func(c echo.Context) (access.Caller, bool) {
		for _, r := range resolvers {
			if r == nil {
				continue
			}
			if caller, ok := r.Resolve(c); ok {
				return caller, true
			}
		}
		return access.Anonymous, false
	})
}

// ResolveCaller stores the caller of every request in the echo context.
// Requests nobody can vouch for proceed as access.Anonymous.
func ResolveCaller(resolver CallerResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := resolver.Resolve(c)
			if !ok {
				caller = access.Anonymous
			}
			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

// CallerFrom returns the caller stored by ResolveCaller.
func CallerFrom(c echo.Context) access.Caller {
	if caller, ok := c.Get(callerKey).(access.Caller); ok {
		return caller
	}
	return access.Anonymous
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/digitalblog/backoffice/internal/access"
	"github.com/digitalblog/backoffice/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// SessionCookie is the cookie that may carry the session token instead of
// the Authorization header.
const SessionCookie = "session"

// Claims are the claims of a session token.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// UserByID loads a user; *repositories.PostgresUserRepository satisfies it.
type UserByID interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// JWTResolver resolves callers from HS256 session tokens signed with the
// application secret. The role is always read from the store, so a token
// outlives neither a demotion nor a ban.
type JWTResolver struct {
	secret []byte
	users  UserByID
}

func NewJWTResolver(secret string, users UserByID) *JWTResolver {
	return &JWTResolver{secret: []byte(secret), users: users}
}

func (r *JWTResolver) Resolve(c echo.Context) (access.Caller, bool) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		if cookie, err := c.Cookie(SessionCookie); err == nil {
			tokenString = cookie.Value
		}
	}
	if tokenString == "" {
		return access.Anonymous, false
	}

	claims, err := r.parse(tokenString)
	if err != nil {
		slog.Debug("session token rejected", "error", err)
		return access.Anonymous, false
	}

	user, err := r.users.GetUserByID(c.Request().Context(), claims.UserID)
	if err != nil {
		slog.Debug("session user not loaded", "user_id", claims.UserID, "error", err)
		return access.Anonymous, false
	}
	return callerFromUser(user)
}

func (r *JWTResolver) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// IssueToken signs a session token for user that expires after ttl.
func IssueToken(secret string, user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// callerFromUser turns a stored user into an authenticated caller. Banned
// users are treated as if they had not logged in.
func callerFromUser(user *models.User) (access.Caller, bool) {
	if user.Banned {
		return access.Anonymous, false
	}
	return access.Caller{
		Authenticated: true,
		UserID:        user.ID,
		Role:          user.Role,
		Email:         user.Email,
	}, true
}

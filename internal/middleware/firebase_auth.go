package middleware

import (
	"context"
	"log/slog"

	"firebase.google.com/go/v4/auth"
	"github.com/digitalblog/backoffice/internal/access"
	"github.com/digitalblog/backoffice/internal/models"
	"github.com/labstack/echo/v4"
)

// IDTokenVerifier verifies Firebase ID tokens; *auth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// UserByEmail loads a user by e-mail address.
type UserByEmail interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// FirebaseResolver resolves callers from Firebase ID tokens. The verified
// e-mail claim is matched against the user table.
type FirebaseResolver struct {
	verifier IDTokenVerifier
	users    UserByEmail
}

func NewFirebaseResolver(verifier IDTokenVerifier, users UserByEmail) *FirebaseResolver {
	return &FirebaseResolver{verifier: verifier, users: users}
}

func (r *FirebaseResolver) Resolve(c echo.Context) (access.Caller, bool) {
	idToken := bearerToken(c)
	if idToken == "" {
		return access.Anonymous, false
	}

	ctx := c.Request().Context()
	token, err := r.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		slog.Debug("firebase id token rejected", "error", err)
		return access.Anonymous, false
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		slog.Debug("firebase id token has no email claim", "uid", token.UID)
		return access.Anonymous, false
	}

	user, err := r.users.GetUserByEmail(ctx, email)
	if err != nil {
		slog.Debug("firebase user not loaded", "uid", token.UID, "error", err)
		return access.Anonymous, false
	}
	return callerFromUser(user)
}

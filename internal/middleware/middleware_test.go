package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/digitalblog/backoffice/internal/access"
	"github.com/digitalblog/backoffice/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var errNoUser = errors.New("no such user")

type fakeUsers map[uint]*models.User

func (f fakeUsers) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errNoUser
}

func (f fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errNoUser
}

type fakeVerifier map[string]*auth.Token

func (f fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if tok, ok := f[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("bad id token")
}

func testUsers() fakeUsers {
	return fakeUsers{
		1: {ID: 1, Username: "root", Email: "root@example.com", Role: models.RoleAdmin},
		2: {ID: 2, Username: "writer", Email: "writer@example.com", Role: models.RoleBlogger},
		3: {ID: 3, Username: "troll", Email: "troll@example.com", Role: models.RoleAdmin, Banned: true},
	}
}

// newGatedServer serves GET /admin/things behind ResolveCaller and AdminGate.
func newGatedServer(resolver CallerResolver) *echo.Echo {
	e := echo.New()
	g := e.Group("/admin", ResolveCaller(resolver), AdminGate(access.AdminOnly, "https://blog.example/auth/login"))
	g.GET("/things", func(c echo.Context) error {
		return c.String(http.StatusOK, "welcome "+CallerFrom(c).Email)
	})
	return e
}

func mustToken(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := IssueToken(testSecret, u, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestAdminGate_JWT(t *testing.T) {
	users := testUsers()
	e := newGatedServer(NewJWTResolver(testSecret, users))

	t.Run("admin bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/things", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+mustToken(t, users[1]))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "welcome root@example.com", rec.Body.String())
	})

	t.Run("admin session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/things", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: mustToken(t, users[1])})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/things", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+mustToken(t, users[2]))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("anonymous is redirected to login", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/things?page=2", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		loc, err := url.Parse(rec.Header().Get(echo.HeaderLocation))
		require.NoError(t, err)
		assert.Equal(t, "blog.example", loc.Host)
		assert.Equal(t, "/auth/login", loc.Path)
		assert.Equal(t, "/admin/things?page=2", loc.Query().Get("next"))
	})

	t.Run("banned admin counts as anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/things", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+mustToken(t, users[3]))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		forged, err := IssueToken("other-secret", users[1], time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/admin/things", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+forged)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := IssueToken(testSecret, users[1], -time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/admin/things", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+expired)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
	})

	t.Run("user deleted after token was issued", func(t *testing.T) {
		gone := &models.User{ID: 99, Email: "gone@example.com", Role: models.RoleAdmin}
		req := httptest.NewRequest(http.MethodGet, "/admin/things", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+mustToken(t, gone))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
	})
}

func TestAdminGate_FirebaseChain(t *testing.T) {
	users := testUsers()
	verifier := fakeVerifier{
		"fb-admin":  {UID: "a", Claims: map[string]interface{}{"email": "root@example.com"}},
		"fb-writer": {UID: "w", Claims: map[string]interface{}{"email": "writer@example.com"}},
		"fb-nomail": {UID: "n", Claims: map[string]interface{}{}},
	}
	e := newGatedServer(ChainResolvers(
		NewJWTResolver(testSecret, users),
		nil,
		NewFirebaseResolver(verifier, users),
	))

	tests := []struct {
		token string
		want  int
	}{
		{"fb-admin", http.StatusOK},
		{"fb-writer", http.StatusForbidden},
		{"fb-nomail", http.StatusFound},
		{"garbage", http.StatusFound},
		{mustToken(t, users[1]), http.StatusOK},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/admin/things", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tt.token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, "token %.12s", tt.token)
	}
}

func TestCallerFrom_DefaultsToAnonymous(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, access.Anonymous, CallerFrom(c))
}

func TestLoginRedirect(t *testing.T) {
	assert.Equal(t,
		"https://blog.example/auth/login?lang=ru&next=%2Fadmin%2F",
		loginRedirect("https://blog.example/auth/login?lang=ru", "/admin/"),
	)
}

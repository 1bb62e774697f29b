package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/camera_shop/internal/models"
	"github.com/Skotchmaster/camera_shop/pkg/tokens"
)

var secret = []byte("test-secret")

type fakeUsers map[uuid.UUID]*models.User

func (f fakeUsers) FindUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func bearer(t *testing.T, u *models.User, role string) string {
	t.Helper()
	tok, err := tokens.SignAccess(secret, u.ID.String(), role, u.Name, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return "Bearer " + tok
}

func expiredBearer(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := tokens.SignAccess(secret, u.ID.String(), u.Role, u.Name, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	return "Bearer " + tok
}

func hs512Bearer(t *testing.T, u *models.User) string {
	t.Helper()
	claims := tokens.AccessClaims{
		Role:             u.Role,
		Name:             u.Name,
		RegisteredClaims: jwt.RegisteredClaims{Subject: u.ID.String(), ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)
	return "Bearer " + tok
}

func serve(mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, bool) {
	e := echo.New()
	called := false
	e.GET("/x", func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, UserID(c).String())
	}, mw)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, called
}

func TestAuthorize(t *testing.T) {
	user := &models.User{ID: uuid.New(), Name: "Bob", Role: models.RoleUser}
	admin := &models.User{ID: uuid.New(), Name: "Root", Role: models.RoleAdmin}
	ghost := &models.User{ID: uuid.New(), Name: "Ghost", Role: models.RoleAdmin}
	a := NewAuthorizer(secret, fakeUsers{user.ID: user, admin.ID: admin})

	tests := []struct {
		name       string
		mw         echo.MiddlewareFunc
		header     string
		wantStatus int
	}{
		{"no token", a.Authorize(), "", http.StatusUnauthorized},
		{"garbage token", a.Authorize(), "Bearer nope", http.StatusUnauthorized},
		{"user on protected route", a.Authorize(), bearer(t, user, models.RoleUser), http.StatusOK},
		{"user on admin route", a.Authorize(models.RoleAdmin), bearer(t, user, models.RoleUser), http.StatusForbidden},
		{"forged admin claim", a.Authorize(models.RoleAdmin), bearer(t, user, models.RoleAdmin), http.StatusForbidden},
		{"admin on admin route", a.Authorize(models.RoleAdmin), bearer(t, admin, models.RoleAdmin), http.StatusOK},
		{"deleted user", a.Authorize(models.RoleAdmin), bearer(t, ghost, models.RoleAdmin), http.StatusUnauthorized},
		{"require admin as user", a.RequireAdmin, bearer(t, user, models.RoleUser), http.StatusForbidden},
		{"require admin as admin", a.RequireAdmin, bearer(t, admin, models.RoleAdmin), http.StatusOK},
		{"expired token", a.RequireAuth, expiredBearer(t, user), http.StatusUnauthorized},
		{"hs512 token", a.RequireAuth, hs512Bearer(t, admin), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, called := serve(tt.mw, tt.header)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, called)
		})
	}
}

func TestAuthorizeSetsCaller(t *testing.T) {
	user := &models.User{ID: uuid.New(), Name: "Bob", Role: models.RoleUser}
	a := NewAuthorizer(secret, fakeUsers{user.ID: user})

	rec, _ := serve(a.RequireAuth, bearer(t, user, models.RoleUser))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID.String(), rec.Body.String())
}

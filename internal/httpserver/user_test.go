package httpserver_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/camera_shop/internal/models"
	"github.com/Skotchmaster/camera_shop/internal/testutil"
	"github.com/Skotchmaster/camera_shop/internal/transport"
)

func TestUsers_RegisterLoginProfile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/users", map[string]any{"name": "Ann", "email": "ann@example.com", "password": "weak"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"param":"password"`)

	rec = env.do(http.MethodPost, "/api/users", map[string]any{"name": "Ann", "email": "ann@example.com", "password": "Secret123"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := decode[transport.AuthResponse](t, rec)
	assert.NotEmpty(t, reg.Token)
	assert.NotEmpty(t, reg.RefreshToken)

	rec = env.do(http.MethodPost, "/api/users/register", map[string]any{"name": "Ann", "email": "ANN@example.com", "password": "Secret123"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists")

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/users/login", map[string]any{"email": "ann@example.com", "password": "nope"}, "").Code)
	rec = env.do(http.MethodPost, "/api/users/login", map[string]any{"email": "ann@example.com", "password": "Secret123"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[transport.AuthResponse](t, rec)

	rec = env.do(http.MethodGet, "/api/users/profile", nil, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ann@example.com", decode[models.User](t, rec).Email)
	assert.NotContains(t, rec.Body.String(), "Secret123")
	assert.NotContains(t, rec.Body.String(), "password")

	rec = env.do(http.MethodPut, "/api/users/profile", map[string]any{"name": "Annie"}, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Annie", decode[transport.AuthResponse](t, rec).Name)

	rec = env.do(http.MethodPost, "/api/users/refresh", map[string]any{"refreshToken": login.RefreshToken}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	next := decode[transport.AuthResponse](t, rec)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/users/refresh", map[string]any{"refreshToken": login.RefreshToken}, "").Code)

	assert.Equal(t, http.StatusNoContent, env.do(http.MethodPost, "/api/users/logout", map[string]any{"refreshToken": next.RefreshToken}, "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/users/refresh", map[string]any{"refreshToken": next.RefreshToken}, "").Code)
}

func TestUsers_AdminRoutes(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "ann@example.com", models.RoleUser)
	admin := testutil.CreateUser(t, env.db, "root@example.com", models.RoleAdmin)

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/users", nil, testutil.Token(t, user)).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/users", nil, "").Code)

	rec := env.do(http.MethodGet, "/api/users", nil, testutil.Token(t, admin))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.User](t, rec), 2)

	rec = env.do(http.MethodPut, "/api/users/"+user.ID.String(), map[string]any{"role": "superuser"}, testutil.Token(t, admin))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPut, "/api/users/"+user.ID.String(), map[string]any{"role": "admin"}, testutil.Token(t, admin))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleAdmin, decode[models.User](t, rec).Role)

	assert.Equal(t, http.StatusOK, env.do(http.MethodDelete, "/api/users/"+user.ID.String(), nil, testutil.Token(t, admin)).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/users/"+user.ID.String(), nil, testutil.Token(t, admin)).Code)

	// the deleted user's still-valid token no longer authenticates
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/users/profile", nil, testutil.Token(t, user)).Code)
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/camera_shop/internal/logging"
	"github.com/Skotchmaster/camera_shop/internal/models"
	"github.com/Skotchmaster/camera_shop/pkg/tokens"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxName   = "name"
	ctxClaims = "claims"
)

// UserLookup re-reads the caller on every authorized request so that deleted
// users and demoted admins lose access before their token expires.
type UserLookup interface {
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Authorizer struct {
	JWTSecret []byte
	Users     UserLookup
}

func NewAuthorizer(secret []byte, users UserLookup) *Authorizer {
	return &Authorizer{JWTSecret: secret, Users: users}
}

// Authorize verifies the bearer token and, when roles are given, requires the
// stored user to hold one of them.
func (a *Authorizer) Authorize(roles ...string) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		ContextKey:  ctxClaims,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (any, error) {
			return tokens.AccessClaimsFromToken(auth, a.JWTSecret)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).Warn("authorize_error", "status", 401, "reason", "missing or invalid token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed")
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(a.requireUserWithRoles(next, roles))
	}
}

func (a *Authorizer) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return a.Authorize()(next)
}

func (a *Authorizer) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return a.Authorize(models.RoleAdmin)(next)
}

func (a *Authorizer) requireUserWithRoles(next echo.HandlerFunc, roles []string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "authorize")

		claims, ok := c.Get(ctxClaims).(*tokens.AccessClaims)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token")
		}
		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			l.Warn("authorize_error", "status", 401, "reason", "subject is not a uuid", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed")
		}

		user, err := a.Users.FindUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				l.Warn("authorize_error", "status", 401, "reason", "user no longer exists", "user_id", userID)
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, user not found")
			}
			l.Error("authorize_error", "status", 500, "reason", "cannot load user", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
		}

		if len(roles) > 0 && !slices.Contains(roles, user.Role) {
			l.Warn("authorize_error", "status", 403, "reason", "role not allowed", "user_id", userID, "role", user.Role)
			return echo.NewHTTPError(http.StatusForbidden, "Not authorized as "+roles[0])
		}

		setUserContext(c, user)
		return next(c)
	}
}

func setUserContext(c echo.Context, u *models.User) {
	c.Set(ctxUserID, u.ID)
	c.Set(ctxRole, u.Role)
	c.Set(ctxName, u.Name)
}

// UserID returns the authenticated caller, uuid.Nil outside Authorize.
func UserID(c echo.Context) uuid.UUID {
	id, _ := c.Get(ctxUserID).(uuid.UUID)
	return id
}

func Role(c echo.Context) string {
	role, _ := c.Get(ctxRole).(string)
	return role
}

func Name(c echo.Context) string {
	name, _ := c.Get(ctxName).(string)
	return name
}

package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/camera_shop/internal/logging"
	"github.com/Skotchmaster/camera_shop/internal/service"
	"github.com/Skotchmaster/camera_shop/internal/transport"
	authmw "github.com/Skotchmaster/camera_shop/pkg/middleware/auth"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.register")

	var req transport.RegisterRequest
	if err := bindAndValidate(c, l, "register_error", &req); err != nil {
		return err
	}
	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("register_success", "user_id", res.ID)
	return c.JSON(http.StatusCreated, res)
}

func (h *UserHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.login")

	var req transport.LoginRequest
	if err := bindAndValidate(c, l, "login_error", &req); err != nil {
		return err
	}
	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fail(l, "login_error", err)
	}

	l.Info("login_success", "user_id", res.ID)
	return c.JSON(http.StatusOK, res)
}

func (h *UserHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.refresh")

	var req transport.RefreshRequest
	if err := bindAndValidate(c, l, "refresh_error", &req); err != nil {
		return err
	}
	res, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return fail(l, "refresh_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UserHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.logout")

	var req transport.RefreshRequest
	if err := bindAndValidate(c, l, "logout_error", &req); err != nil {
		return err
	}
	if err := h.Svc.Logout(ctx, req.RefreshToken); err != nil {
		return fail(l, "logout_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHTTP) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get_profile")

	u, err := h.Svc.Profile(ctx, authmw.UserID(c))
	if err != nil {
		return fail(l, "get_profile_error", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_profile")

	var req transport.UpdateProfileRequest
	if err := bindAndValidate(c, l, "update_profile_error", &req); err != nil {
		return err
	}
	res, err := h.Svc.UpdateProfile(ctx, authmw.UserID(c), req)
	if err != nil {
		return fail(l, "update_profile_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UserHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	users, err := h.Svc.ListUsers(ctx)
	if err != nil {
		return fail(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get")

	id, err := parseID(c, l, "get_user_error")
	if err != nil {
		return err
	}
	u, err := h.Svc.GetUser(ctx, id)
	if err != nil {
		return fail(l, "get_user_error", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update")

	id, err := parseID(c, l, "update_user_error")
	if err != nil {
		return err
	}
	var req transport.AdminUpdateUserRequest
	if err := bindAndValidate(c, l, "update_user_error", &req); err != nil {
		return err
	}
	u, err := h.Svc.AdminUpdateUser(ctx, id, req)
	if err != nil {
		return fail(l, "update_user_error", err)
	}

	l.Info("update_user_success", "user_id", id)
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete")

	id, err := parseID(c, l, "delete_user_error")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteUser(ctx, id, caller(c)); err != nil {
		return fail(l, "delete_user_error", err)
	}

	l.Info("delete_user_success", "user_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "User removed"})
}

package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/nexus_market/internal/models"
	"github.com/Skotchmaster/nexus_market/internal/service"
	"github.com/Skotchmaster/nexus_market/pkg/logging"
)

type AccountHTTP struct {
	Svc *service.AccountService
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool               `json:"success"`
	User    models.SessionUser `json:"user"`
	Token   string             `json:"token,omitempty"`
}

func (h *AccountHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := h.Svc.Register(ctx, req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateUsername):
			return echo.NewHTTPError(http.StatusBadRequest, "Username already exists")
		case errors.Is(err, service.ErrValidation):
			l.Warn("register_error", "status", 400, "reason", "missing fields")
			return echo.NewHTTPError(http.StatusBadRequest, "Username and password are required")
		default:
			l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Registration failed")
		}
	}

	l.Info("register_success", "username", req.Username)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *AccountHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
		l.Error("login_error", "status", 500, "reason", "cannot check credentials", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Login failed")
	}

	return c.JSON(http.StatusOK, loginResponse{Success: true, User: res.User, Token: res.AccessToken})
}

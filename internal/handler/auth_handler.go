package handler

import (
	"net/http"

	"supplier-portal/internal/service"
	"supplier-portal/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LoginRequest holds the management credentials
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthHandler serves manager login
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login exchanges the fixed credentials for a management token
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)

	var req LoginRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		log.Warn("Invalid login request")
		return err
	}

	session, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		log.Warn("Login failed", zap.String("username", req.Username))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, session)
}

package middleware

import (
	"net/http"
	"strings"

	"supplier-portal/pkg/jwtutil"
	"supplier-portal/pkg/logger"
	"supplier-portal/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ManagerKey is the echo context key holding the authenticated manager name
const ManagerKey = "manager"

// ManagerAuth verifies the management JWT and stores the manager name
func ManagerAuth(jwt *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			// Track authentication attempts
			prometheus.AuthAttemptsCounter.Inc()

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization token")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			// Check if it's a Bearer token
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				log.Warn("Invalid Authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwt.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}
			if claims.Role != jwtutil.RoleManager {
				log.Warn("Token without manager role", zap.String("role", claims.Role))
				prometheus.RecordAuthError("forbidden_role")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "manager role required"})
			}

			c.Set(ManagerKey, claims.Username)
			c.Set("logger", log.With(zap.String("manager", claims.Username)))

			return next(c)
		}
	}
}

// ManagerFromContext returns the manager set by ManagerAuth
func ManagerFromContext(c echo.Context) string {
	manager, _ := c.Get(ManagerKey).(string)
	return manager
}

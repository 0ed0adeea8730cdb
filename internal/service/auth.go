package service

import (
	"context"
	"time"

	"supplier-portal/pkg/config"
	"supplier-portal/pkg/jwtutil"
	"supplier-portal/prometheus"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ManagerRole is the role carried by management tokens
const ManagerRole = jwtutil.RoleManager

const invalidCredentials = "Usuário ou senha inválidos."

// Session is an issued management token
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
}

// AuthService checks the fixed management credentials
type AuthService struct {
	username     string
	passwordHash []byte
	jwt          *jwtutil.JWTUtil
	log          *zap.Logger
}

// NewAuthService hashes the configured password once at startup
func NewAuthService(cfg config.ManagerConfig, jwt *jwtutil.JWTUtil, log *zap.Logger) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		username:     cfg.Username,
		passwordHash: hash,
		jwt:          jwt,
		log:          log,
	}, nil
}

// Login returns a management token for the configured credentials
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	prometheus.AuthAttemptsCounter.Inc()

	if username != s.username {
		s.log.Warn("Unknown manager", zap.String("username", username))
		prometheus.RecordAuthError("user_not_found")
		return nil, newError(ErrAuthentication, invalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		s.log.Warn("Invalid password", zap.String("username", username))
		prometheus.RecordAuthError("invalid_password")
		return nil, wrapError(ErrAuthentication, invalidCredentials, err)
	}

	token, expiresAt, err := s.jwt.GenerateToken(username, ManagerRole)
	if err != nil {
		s.log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return nil, err
	}

	s.log.Info("Manager logged in", zap.String("username", username))
	return &Session{Token: token, ExpiresAt: expiresAt, Username: username}, nil
}

// Package security adapts the bridge's optional bearer-token auth mode.
package security

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/nexstar-alpaca/bridge/pkg/healthcheck"
)

// AppSecurityEngine issues and validates the JWT bearer tokens accepted by
// pkg/alpaca's optional AuthMiddleware bearer mode. It covers the single
// concern this bridge actually has a client for:
// ASCOM Alpaca carries no user accounts, so there is nothing to issue a
// token against beyond the single configured shared secret.
type AppSecurityEngine struct {
	jwtSecret     []byte
	tokenDuration time.Duration

	mu                sync.RWMutex
	blacklistedTokens map[string]time.Time

	logger *zap.Logger
}

// JWTClaims is the claim set carried by a bridge bearer token.
type JWTClaims struct {
	Subject string `json:"sub"`
	jwt.RegisteredClaims
}

// NewAppSecurityEngine builds an engine signing/validating tokens with
// jwtSecret. tokenDuration of zero defaults to 24h.
func NewAppSecurityEngine(jwtSecret string, tokenDuration time.Duration, logger *zap.Logger) *AppSecurityEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tokenDuration == 0 {
		tokenDuration = 24 * time.Hour
	}
	return &AppSecurityEngine{
		jwtSecret:         []byte(jwtSecret),
		tokenDuration:     tokenDuration,
		blacklistedTokens: make(map[string]time.Time),
		logger:            logger.With(zap.String("engine", "app_security")),
	}
}

// GenerateToken issues a signed bearer token for subject (typically a
// configured client name, since this bridge has no user directory).
func (e *AppSecurityEngine) GenerateToken(subject string) (string, time.Time, error) {
	expiresAt := time.Now().Add(e.tokenDuration)
	claims := &JWTClaims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        subject + "-" + expiresAt.Format(time.RFC3339Nano),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "nexstar-alpacad",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(e.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("security: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken parses and verifies tokenString, rejecting blacklisted or
// expired tokens.
func (e *AppSecurityEngine) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return e.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("security: parse token: %w", err)
	}
	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("security: invalid token")
	}

	e.mu.RLock()
	_, blacklisted := e.blacklistedTokens[claims.ID]
	e.mu.RUnlock()
	if blacklisted {
		return nil, fmt.Errorf("security: token has been revoked")
	}
	return claims, nil
}

// RevokeToken blacklists a previously issued token by its claim ID.
func (e *AppSecurityEngine) RevokeToken(claims *JWTClaims) {
	e.mu.Lock()
	e.blacklistedTokens[claims.ID] = claims.ExpiresAt.Time
	e.mu.Unlock()
}

// Check implements healthcheck.Checker.
func (e *AppSecurityEngine) Check(_ context.Context) *healthcheck.Result {
	e.mu.RLock()
	blacklisted := len(e.blacklistedTokens)
	e.mu.RUnlock()
	return &healthcheck.Result{
		ComponentName: e.Name(),
		Status:        healthcheck.StatusHealthy,
		Message:       "bearer-token auth engine operational",
		Timestamp:     time.Now(),
		Details:       map[string]interface{}{"blacklisted_tokens": blacklisted},
	}
}

// Name implements healthcheck.Checker.
func (e *AppSecurityEngine) Name() string { return "app_security_engine" }

package alpaca

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nexstar-alpaca/bridge/internal/engines/security"
)

// LoggingMiddleware logs every request/response pair.
func LoggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		clientIP := c.ClientIP()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("client_ip", clientIP),
			zap.Int("status", statusCode),
			zap.Duration("duration", duration),
		}
		switch {
		case statusCode >= 500:
			logger.Error("request failed", fields...)
		case statusCode >= 400:
			logger.Warn("request returned client error", fields...)
		default:
			logger.Debug("request completed", fields...)
		}
	}
}

// CORSConfig controls the optional CORS middleware; DefaultCORSConfig and
// the bridge's default configuration both enable it.
type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig is the permissive configuration used when a caller
// enables CORS without supplying one.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         3600,
	}
}

// CORSMiddleware adds the configured CORS headers.
func CORSMiddleware(config CORSConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		allowedOrigin := ""
		for _, allowed := range config.AllowedOrigins {
			if allowed == "*" || allowed == origin {
				allowedOrigin = allowed
				break
			}
		}

		if allowedOrigin != "" {
			if allowedOrigin == "*" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
			c.Header("Access-Control-Allow-Headers", strings.Join(config.AllowedHeaders, ", "))
			if config.AllowCredentials {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
			c.Header("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// AuthConfig controls the optional authentication middleware, disabled by
// default; the Alpaca protocol itself carries no authentication.
// Two modes are supported and may both be enabled at once: HTTP Basic
// (fixed single credential, checked against a bcrypt hash) and a bearer JWT
// issued/verified by an *security.AppSecurityEngine. A request satisfying
// either configured mode is let through.
type AuthConfig struct {
	Enabled  bool
	Username string
	// PasswordHash is the bcrypt hash of the single Basic Auth password.
	PasswordHash string
	Realm        string

	// Bearer, when non-nil, enables the "Authorization: Bearer <token>"
	// mode alongside Basic Auth.
	Bearer *security.AppSecurityEngine
}

// AuthMiddleware enforces the configured authentication mode(s) when
// Enabled; a no-op pass-through otherwise.
func AuthMiddleware(config AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !config.Enabled {
			c.Next()
			return
		}

		if config.Bearer != nil {
			if token, ok := bearerToken(c.Request.Header.Get("Authorization")); ok {
				if _, err := config.Bearer.ValidateToken(token); err == nil {
					c.Next()
					return
				}
			}
		}

		username, password, hasAuth := c.Request.BasicAuth()
		if hasAuth && username == config.Username && checkPassword(config.PasswordHash, password) {
			c.Next()
			return
		}

		c.Header("WWW-Authenticate", `Basic realm="`+config.Realm+`"`)
		c.AbortWithStatus(http.StatusUnauthorized)
	}
}

// checkPassword compares candidate against the configured bcrypt hash.
// An empty hash never matches, closing Basic Auth when no password has
// been configured.
func checkPassword(hash, candidate string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

// bearerToken extracts the token from a "Bearer <token>" Authorization
// header value.
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// RecoveryMiddleware catches panics from a handler and converts them into
// an HTTP 400 with a diagnostic body. Panics are dispatcher-level failures,
// not operation outcomes, so they never populate an Envelope.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered in request handler",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method))
				writeDispatchError(c, http.StatusBadRequest, fmt.Sprintf("request failed: %v", err))
				c.Abort()
			}
		}()
		c.Next()
	}
}

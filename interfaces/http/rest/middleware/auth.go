package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"mindbloom-backend/pkg/auth"
	"mindbloom-backend/pkg/common"

	"go.uber.org/zap"
)

// Authenticator validates bearer tokens and applies per-IP and per-user rate limits.
type Authenticator struct {
	validator   *auth.JWTValidator
	ipLimiter   auth.RateLimiter
	userLimiter auth.RateLimiter
	logger      *zap.Logger
}

// NewAuthenticator creates the authentication middleware. Nil limiters disable limiting.
func NewAuthenticator(validator *auth.JWTValidator, ipLimiter, userLimiter auth.RateLimiter, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		validator:   validator,
		ipLimiter:   ipLimiter,
		userLimiter: userLimiter,
		logger:      logger,
	}
}

// Authenticate rejects requests without a valid token and attaches the
// caller to the request context.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)
		if !a.allow(r, a.ipLimiter, clientIP) {
			respondTooManyRequests(w, "Rate limit exceeded")
			return
		}

		token := extractToken(r)
		if token == "" {
			respondUnauthorized(w, "Missing authentication token")
			return
		}

		claims, err := a.validator.ValidateToken(token)
		if err != nil {
			a.logger.Warn("Invalid token",
				zap.Error(err),
				zap.String("ip", clientIP),
				zap.String("path", r.URL.Path),
			)
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				respondUnauthorized(w, "Token has expired")
			case errors.Is(err, auth.ErrInvalidSignature):
				respondUnauthorized(w, "Invalid token signature")
			default:
				respondUnauthorized(w, "Invalid token")
			}
			return
		}

		if !a.allow(r, a.userLimiter, claims.Subject) {
			respondTooManyRequests(w, "User rate limit exceeded")
			return
		}

		user := &auth.UserContext{
			UserID: claims.Subject,
			Email:  claims.Email,
			Name:   claims.Name,
			Roles:  claims.AllRoles(),
		}
		a.logger.Debug("Request authenticated",
			zap.String("user_id", user.UserID),
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
		)
		next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), user)))
	})
}

// allow fails open when the limiter itself errors.
func (a *Authenticator) allow(r *http.Request, limiter auth.RateLimiter, key string) bool {
	if limiter == nil {
		return true
	}
	allowed, err := limiter.Allow(r.Context(), key)
	if err != nil {
		a.logger.Error("Rate limiter error", zap.Error(err))
		return true
	}
	return allowed
}

// extractToken reads the bearer token from the Authorization header, falling
// back to the auth_token cookie.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// getClientIP returns the host of RemoteAddr. The router runs chi's RealIP
// middleware first, which rewrites RemoteAddr from the proxy headers.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, message)
}

func respondTooManyRequests(w http.ResponseWriter, message string) {
	w.Header().Set("Retry-After", "60")
	common.RespondError(w, http.StatusTooManyRequests, common.StandardErrorCodes.TooManyRequests, message)
}

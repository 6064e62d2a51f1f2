package http

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/csrf"
)

// KeySize is the length of the CSRF signing key.
const KeySize = 32

// CSRFConfig configures the anti-forgery middleware. The zero value
// disables protection.
type CSRFConfig struct {
	Enabled        bool
	Key            []byte
	FieldName      string
	HeaderName     string
	CookieName     string
	MaxAge         time.Duration
	Secure         bool
	TrustedOrigins []string
}

// NewCSRF returns the CSRF middleware described by cfg.
// Rejected requests get a 400 carrying the failure reason.
func NewCSRF(cfg CSRFConfig, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }, nil
	}
	if len(cfg.Key) != KeySize {
		return nil, fmt.Errorf("csrf key must be %d bytes, got %d", KeySize, len(cfg.Key))
	}

	opts := []csrf.Option{
		csrf.Secure(cfg.Secure),
		csrf.HttpOnly(true),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(failureHandler(logger)),
	}
	if cfg.FieldName != "" {
		opts = append(opts, csrf.FieldName(cfg.FieldName))
	}
	if cfg.HeaderName != "" {
		opts = append(opts, csrf.RequestHeader(cfg.HeaderName))
	}
	if cfg.CookieName != "" {
		opts = append(opts, csrf.CookieName(cfg.CookieName))
	}
	if cfg.MaxAge > 0 {
		opts = append(opts, csrf.MaxAge(int(cfg.MaxAge/time.Second)))
	}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}

	protect := csrf.Protect(cfg.Key, opts...)
	return func(next http.Handler) http.Handler {
		return markPlaintext(protect(next))
	}, nil
}

// markPlaintext flags requests that did not arrive over TLS so that the
// strict Referer check only applies to HTTPS traffic.
func markPlaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil {
			r = csrf.PlaintextHTTPRequest(r)
		}
		next.ServeHTTP(w, r)
	})
}

func failureHandler(logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reason := "CSRF validation failed"
		if err := csrf.FailureReason(r); err != nil {
			reason = err.Error()
		}
		logger.Warn("CSRF check rejected request",
			"method", r.Method,
			"path", r.URL.Path,
			"reason", reason,
		)
		http.Error(w, "Bad Request: "+reason, http.StatusBadRequest)
	})
}

// DeriveKey turns a configured secret into a signing key. A base64 value
// decoding to exactly KeySize bytes is used as-is; anything else is hashed.
func DeriveKey(secret string) []byte {
	if decoded, err := base64.StdEncoding.DecodeString(secret); err == nil && len(decoded) >= 16 {
		if len(decoded) == KeySize {
			return decoded
		}
		h := sha256.Sum256(decoded)
		return h[:]
	}
	h := sha256.Sum256([]byte(secret))
	return h[:]
}

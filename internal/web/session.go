package web

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/trendora/storefront/internal/platform/requestctx"
)

// sessionData is the signed payload stored in the visitor cookie. The cart
// identifier is the only state the storefront keeps client-side.
type sessionData struct {
	CartID    string    `json:"cart"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionManager issues and verifies the signed visitor-session cookie that
// carries the cart identifier.
type SessionManager struct {
	cookieName string
	signKey    []byte
	maxAge     time.Duration
	secure     bool
}

// SessionConfig configures the session cookie.
type SessionConfig struct {
	CookieName string
	Secret     string
	MaxAge     time.Duration
	Secure     bool
}

// NewSessionManager constructs a session manager. When no secret is
// configured a process-ephemeral signing key is generated; carts then reset
// across restarts, which is acceptable only for local development.
func NewSessionManager(cfg SessionConfig, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	key := []byte(cfg.Secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			logger.Error("session: failed to generate signing key", zap.Error(err))
		}
		logger.Warn("session: using ephemeral signing key; set a session secret for production")
	}
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = "trendora_cart"
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}
	return &SessionManager{
		cookieName: cookieName,
		signKey:    key,
		maxAge:     maxAge,
		secure:     cfg.Secure,
	}
}

// Middleware loads the visitor's cart identifier from the signed cookie,
// minting a fresh one when the cookie is absent or tampered with, and stores
// it on the request context.
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	if next == nil {
		next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, ok := m.readCookie(r)
		if !ok {
			sd = sessionData{
				CartID:    ulid.Make().String(),
				CreatedAt: time.Now().UTC(),
			}
			m.writeCookie(w, sd)
		}
		ctx := requestctx.WithCartID(r.Context(), sd.CartID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *SessionManager) readCookie(r *http.Request) (sessionData, bool) {
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return sessionData{}, false
	}
	payload, sig, found := splitCookieValue(c.Value)
	if !found {
		return sessionData{}, false
	}
	payloadB, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return sessionData{}, false
	}
	sigB, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return sessionData{}, false
	}
	mac := hmac.New(sha256.New, m.signKey)
	mac.Write(payloadB)
	if !hmac.Equal(sigB, mac.Sum(nil)) {
		return sessionData{}, false
	}
	var sd sessionData
	if err := json.Unmarshal(payloadB, &sd); err != nil || sd.CartID == "" {
		return sessionData{}, false
	}
	return sd, true
}

func (m *SessionManager) writeCookie(w http.ResponseWriter, sd sessionData) {
	b, _ := json.Marshal(sd)
	payload := base64.RawURLEncoding.EncodeToString(b)
	mac := hmac.New(sha256.New, m.signKey)
	mac.Write(b)
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    payload + "." + sig,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(m.maxAge),
	})
}

func splitCookieValue(value string) (payload, sig string, ok bool) {
	for i := 0; i < len(value); i++ {
		if value[i] == '.' {
			return value[:i], value[i+1:], true
		}
	}
	return "", "", false
}

package serverutils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionCookie = "brdgenius_session"
	SessionHeader = "X-Session-Token"
	sessionLocal  = "session_id"
)

type SessionClaims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies the signed token that names a wizard session.
// A client without a valid token gets a new session.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewSessionManager(secret string, ttl time.Duration, secureCookie bool) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secureCookie,
	}
}

func (m *SessionManager) Issue(sessionID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *SessionManager) Parse(tokenStr string) (string, error) {
	var claims SessionClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid session token")
	}
	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return "", errors.New("session token has no valid session_id")
	}
	return claims.SessionID, nil
}

// Middleware resolves the session id from the Authorization header, the
// session cookie or the token query parameter, in that order.
func (m *SessionManager) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sessionID, ok := m.Resolve(c); ok {
			c.Locals(sessionLocal, sessionID)
			return c.Next()
		}

		sessionID := uuid.NewString()
		token, err := m.Issue(sessionID)
		if err != nil {
			return NewAppError(fiber.StatusInternalServerError, "Failed to start session", err)
		}
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().Add(m.ttl),
			HTTPOnly: true,
			Secure:   m.secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		c.Set(SessionHeader, token)
		c.Locals(sessionLocal, sessionID)
		return c.Next()
	}
}

// Resolve returns the session named by the first valid token on the request
// without minting a new one.
func (m *SessionManager) Resolve(c *fiber.Ctx) (string, bool) {
	for _, candidate := range tokenCandidates(c) {
		if sessionID, err := m.Parse(candidate); err == nil {
			return sessionID, true
		}
	}
	return "", false
}

func tokenCandidates(c *fiber.Ctx) []string {
	var out []string
	if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		out = append(out, strings.TrimSpace(auth[len("Bearer "):]))
	}
	if cookie := c.Cookies(SessionCookie); cookie != "" {
		out = append(out, cookie)
	}
	if q := c.Query("token"); q != "" {
		out = append(out, q)
	}
	return out
}

// SessionID returns the id stored by Middleware.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionLocal).(string)
	return id
}

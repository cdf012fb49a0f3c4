package serverutils

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionApp(m *SessionManager) *fiber.App {
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(SessionID(c))
	})
	return app
}

func body(t *testing.T, r io.Reader) string {
	t.Helper()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

func TestSessionMiddlewareMintsSession(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, false)
	app := newSessionApp(m)

	resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)

	sessionID := body(t, resp.Body)
	_, err = uuid.Parse(sessionID)
	require.NoError(t, err)

	token := resp.Header.Get(SessionHeader)
	require.NotEmpty(t, token)
	parsed, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, parsed)

	var cookie string
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			cookie = c.Value
			assert.True(t, c.HttpOnly)
		}
	}
	assert.Equal(t, token, cookie)
}

func TestSessionMiddlewareReusesToken(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, false)
	app := newSessionApp(m)
	sessionID := uuid.NewString()
	token, err := m.Issue(sessionID)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, sessionID, body(t, resp.Body))
	assert.Empty(t, resp.Header.Get(SessionHeader))

	req = httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Cookie", SessionCookie+"="+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, sessionID, body(t, resp.Body))

	resp, err = app.Test(httptest.NewRequest("GET", "/whoami?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, sessionID, body(t, resp.Body))
}

func TestSessionMiddlewareRejectsForeignTokens(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, false)
	app := newSessionApp(m)
	sessionID := uuid.NewString()

	other, err := NewSessionManager("other-secret", time.Hour, false).Issue(sessionID)
	require.NoError(t, err)
	expired, err := NewSessionManager("secret", -time.Minute, false).Issue(sessionID)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{SessionID: sessionID}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{"wrong secret": other, "expired": expired, "alg none": none, "garbage": "abc"} {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err, name)
		assert.NotEqual(t, sessionID, body(t, resp.Body), name)
		assert.NotEmpty(t, resp.Header.Get(SessionHeader), name)
	}
}

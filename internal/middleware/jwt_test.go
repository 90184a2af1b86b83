package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/meeting-room-reservation/internal/utils"
)

const testSecret = "unit-test-secret"

func invoke(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/reservations", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuth(t *testing.T) {
	t.Run("valid token passes and exposes claims", func(t *testing.T) {
		at, err := utils.NewAccessToken(testSecret, 7, "USER", 5)
		require.NoError(t, err)

		rec, c := invoke(t, JWTAuth(testSecret), "Bearer "+at.Token)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(7), c.Get("user_id"))
		assert.Equal(t, "USER", c.Get("role"))
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		rec, _ := invoke(t, JWTAuth(testSecret), "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-bearer scheme is unauthorized", func(t *testing.T) {
		rec, _ := invoke(t, JWTAuth(testSecret), "Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		at, err := utils.NewAccessToken("someone-elses-secret", 7, "USER", 5)
		require.NoError(t, err)

		rec, _ := invoke(t, JWTAuth(testSecret), "Bearer "+at.Token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		at, err := utils.NewAccessToken(testSecret, 7, "USER", -5)
		require.NoError(t, err)

		rec, _ := invoke(t, JWTAuth(testSecret), "Bearer "+at.Token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	run := func(t *testing.T, role interface{}, allowed ...string) int {
		t.Helper()
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		h := RequireRole(allowed...)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, h(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run(t, "ADMIN", "USER", "ADMIN"))
	assert.Equal(t, http.StatusOK, run(t, "USER", "USER", "ADMIN"))
	assert.Equal(t, http.StatusForbidden, run(t, "USER", "ADMIN"))
	assert.Equal(t, http.StatusForbidden, run(t, nil, "USER", "ADMIN"))
	assert.Equal(t, http.StatusForbidden, run(t, 42, "USER", "ADMIN"))
}

package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/talatrivia-api/internal/pkg/errors"
	"github.com/yourusername/talatrivia-api/internal/service"
)

func TestLogin_SetsCookieAndReturnsToken(t *testing.T) {
	api := newAPI(t, false)
	api.auth.On("Login", mock.Anything, "ana@talana.com", "secret1").
		Return(&service.LoginResult{User: playerUser, AccessToken: "jwt-value", ExpiresIn: 30 * time.Minute}, nil)

	w := doRequest(api.router, http.MethodPost, "/api/auth/login", `{"email":"ana@talana.com","password":"secret1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token_type":"bearer"`)
	assert.Contains(t, w.Body.String(), `"access_token":"jwt-value"`)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "access_token", cookies[0].Name)
	assert.Equal(t, "jwt-value", cookies[0].Value)
	assert.Equal(t, 1800, cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
}

func TestLogin_Errors(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		api := newAPI(t, false)
		w := doRequest(api.router, http.MethodPost, "/api/auth/login", `{"email":"not-an-email"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		api := newAPI(t, false)
		api.auth.On("Login", mock.Anything, "ana@talana.com", "wrong").
			Return(nil, apperrors.ErrUnauthorized)

		w := doRequest(api.router, http.MethodPost, "/api/auth/login", `{"email":"ana@talana.com","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, w.Result().Cookies())
	})
}

func TestLogout_ClearsCookie(t *testing.T) {
	api := newAPI(t, false)

	w := doRequest(api.router, http.MethodPost, "/api/auth/logout", "")

	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestMe_CookieAuthentication(t *testing.T) {
	api := newAPI(t, false)

	w := doRequest(api.router, http.MethodGet, "/api/auth/me", "", "Cookie", "access_token=player-token")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"ana@talana.com"`)
	assert.NotContains(t, w.Body.String(), "password")
}

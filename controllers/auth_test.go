package controllers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nuthu-archive/storefront-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/register", map[string]any{
		"email":    "  New@Example.com ",
		"password": "secret123",
		"name":     "Wanjiru",
	}, "")
	assertStatus(t, w, http.StatusCreated)

	body := decode(t, w)
	assert.Equal(t, true, body["requiresEmailVerification"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "new@example.com", user["email"])
	assert.Equal(t, "Wanjiru", user["name"])
	assert.Equal(t, false, user["emailVerified"])

	var stored models.User
	require.NoError(t, env.db.Where("email = ?", "new@example.com").First(&stored).Error)
	assert.Equal(t, models.RoleCustomer, stored.Role)
	assert.False(t, stored.EmailVerified)
	assert.NotEqual(t, "secret123", stored.Password)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "taken@example.com", "password123", true, models.RoleCustomer)

	tests := []struct {
		name    string
		body    map[string]any
		message string
	}{
		{"missing password", map[string]any{"email": "a@example.com"}, "Email and password are required"},
		{"missing email", map[string]any{"password": "x"}, "Email and password are required"},
		{"duplicate", map[string]any{"email": "TAKEN@example.com", "password": "x"}, "Email already registered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/auth/register", tt.body, "")
			assertStatus(t, w, http.StatusBadRequest)
			assert.Equal(t, tt.message, decode(t, w)["error"])
		})
	}
}

func TestRegisterAdminEmailGetsAdminRole(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/register", map[string]any{
		"email":    "admin@example.com",
		"password": "password123",
	}, "")
	assertStatus(t, w, http.StatusCreated)

	var stored models.User
	require.NoError(t, env.db.Where("email = ?", "admin@example.com").First(&stored).Error)
	assert.Equal(t, models.RoleAdmin, stored.Role)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "buyer@example.com", "password123", true, models.RoleCustomer)
	env.createUser(t, "pending@example.com", "password123", false, models.RoleCustomer)

	t.Run("unknown email", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "nobody@example.com", "password": "x"}, "")
		assertStatus(t, w, http.StatusUnauthorized)
		assert.Equal(t, "Invalid email or password", decode(t, w)["error"])
	})

	t.Run("unverified", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "pending@example.com", "password": "password123"}, "")
		assertStatus(t, w, http.StatusForbidden)
		assert.Equal(t, "EMAIL_NOT_VERIFIED", decode(t, w)["code"])
	})

	t.Run("wrong password", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "buyer@example.com", "password": "nope"}, "")
		assertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("success sets cookie", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "BUYER@example.com", "password": "password123"}, "")
		assertStatus(t, w, http.StatusOK)

		body := decode(t, w)
		assert.Equal(t, "Login successful", body["message"])
		assert.NotEmpty(t, body["token"])

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "token", cookies[0].Name)
		assert.Equal(t, body["token"], cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
		assert.Equal(t, 7*24*60*60, cookies[0].MaxAge)
	})
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.customerToken(t)

	t.Run("bearer token", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/auth/me", nil, token)
		assertStatus(t, w, http.StatusOK)
		me := decode(t, w)["user"].(map[string]any)
		assert.Equal(t, float64(user.ID), me["id"])
		assert.Equal(t, true, me["emailVerified"])
		assert.NotEmpty(t, me["created_at"])
	})

	t.Run("cookie token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
		w := httptest.NewRecorder()
		env.server.ServeHTTP(w, req)
		assertStatus(t, w, http.StatusOK)
	})

	t.Run("no token", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/auth/me", nil, "")
		assertStatus(t, w, http.StatusUnauthorized)
		assert.Equal(t, "Authentication required", decode(t, w)["error"])
	})

	t.Run("bad token", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/auth/me", nil, "not-a-jwt")
		assertStatus(t, w, http.StatusForbidden)
		assert.Equal(t, "Invalid or expired token", decode(t, w)["error"])
	})

	t.Run("deleted user", func(t *testing.T) {
		require.NoError(t, env.db.Delete(&models.User{}, user.ID).Error)
		w := env.do(http.MethodGet, "/api/auth/me", nil, token)
		assertStatus(t, w, http.StatusNotFound)
	})
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/logout", nil, "")
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, "Logged out successfully", decode(t, w)["message"])

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestPasswordReset(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "forgetful@example.com", "password123", true, models.RoleCustomer)

	w := env.do(http.MethodPost, "/api/auth/forgot-password", map[string]any{"email": "forgetful@example.com"}, "")
	assertStatus(t, w, http.StatusOK)

	var stored models.User
	require.NoError(t, env.db.First(&stored, user.ID).Error)
	require.NotEmpty(t, stored.PasswordResetToken)

	sent := env.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, stored.PasswordResetToken)

	w = env.do(http.MethodPost, "/api/auth/reset-password/"+stored.PasswordResetToken, map[string]any{"password": "short"}, "")
	assertStatus(t, w, http.StatusBadRequest)

	w = env.do(http.MethodPost, "/api/auth/reset-password/"+stored.PasswordResetToken, map[string]any{"password": "newpassword1"}, "")
	assertStatus(t, w, http.StatusOK)

	w = env.do(http.MethodPost, "/api/auth/login", map[string]any{"email": "forgetful@example.com", "password": "newpassword1"}, "")
	assertStatus(t, w, http.StatusOK)

	w = env.do(http.MethodPost, "/api/auth/reset-password/"+stored.PasswordResetToken, map[string]any{"password": "another123"}, "")
	assertStatus(t, w, http.StatusBadRequest)
}

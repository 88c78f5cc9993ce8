package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newAdminRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/admin", AdminAuth(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": c.GetString("subject")})
	})
	return router
}

func callAdmin(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAdminAuth(t *testing.T) {
	router := newAdminRouter("secret")

	t.Run("valid admin token", func(t *testing.T) {
		token, err := GenerateAdminToken("secret", "ops", time.Minute)
		require.NoError(t, err)

		w := callAdmin(router, "Bearer "+token)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"subject":"ops"`)
	})

	t.Run("missing header", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, callAdmin(router, "").Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := GenerateAdminToken("secret", "ops", -time.Minute)
		require.NoError(t, err)

		require.Equal(t, http.StatusUnauthorized, callAdmin(router, "Bearer "+token).Code)
	})

	t.Run("token without admin role", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  "viewer",
			"role": "viewer",
			"exp":  time.Now().Add(time.Minute).Unix(),
		}).SignedString([]byte("secret"))
		require.NoError(t, err)

		require.Equal(t, http.StatusForbidden, callAdmin(router, "Bearer "+token).Code)
	})

	t.Run("other signing method is rejected", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
			"sub":  "ops",
			"role": "admin",
			"exp":  time.Now().Add(time.Minute).Unix(),
		}).SignedString([]byte("secret"))
		require.NoError(t, err)

		require.Equal(t, http.StatusUnauthorized, callAdmin(router, "Bearer "+token).Code)
	})
}

func TestGenerateAdminToken_RequiresSecret(t *testing.T) {
	_, err := GenerateAdminToken("", "ops", time.Minute)
	require.Error(t, err)
}

func TestCheckOrigin(t *testing.T) {
	allowedWSOrigins = []string{"https://allowed.example"}
	defer func() { allowedWSOrigins = nil }()

	cases := map[string]bool{
		"":                        true,
		"http://example.com":      true,
		"https://allowed.example": true,
		"https://evil.example":    false,
	}
	for origin, expected := range cases {
		t.Run(origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://example.com/ws", nil)
			if origin != "" {
				req.Header.Set("Origin", origin)
			}
			require.Equal(t, expected, checkOrigin(req))
		})
	}
}

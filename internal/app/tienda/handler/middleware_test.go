package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func generateTestToken(t *testing.T, roleName string, expiresAt time.Time) string {
	claims := JWTClaims{
		UserID:   "42",
		Email:    "test@example.com",
		RoleName: roleName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func setupAuthRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/protected", handlers...)
	return router
}

// ===================== Authenticate Tests =====================

func TestAuthenticate_ValidToken(t *testing.T) {
	m := NewAuthMiddleware(testSecret)
	router := setupAuthRouter(m.Authenticate())

	token := generateTestToken(t, "manager", time.Now().Add(time.Hour))

	req, _ := http.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	m := NewAuthMiddleware(testSecret)
	router := setupAuthRouter(m.Authenticate())

	req, _ := http.NewRequest(http.MethodPost, "/protected", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	m := NewAuthMiddleware(testSecret)
	router := setupAuthRouter(m.Authenticate())

	req, _ := http.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Authorization", "Token abc123")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	m := NewAuthMiddleware(testSecret)
	router := setupAuthRouter(m.Authenticate())

	token := generateTestToken(t, "manager", time.Now().Add(-time.Hour))

	req, _ := http.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	m := NewAuthMiddleware("another-secret")
	router := setupAuthRouter(m.Authenticate())

	token := generateTestToken(t, "manager", time.Now().Add(time.Hour))

	req, _ := http.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ===================== RequireRole Tests =====================

func TestRequireRole_AllowedRole(t *testing.T) {
	m := NewAuthMiddleware(testSecret)
	router := setupAuthRouter(m.Authenticate(), m.RequireRole("manager", "admin"))

	token := generateTestToken(t, "admin", time.Now().Add(time.Hour))

	req, _ := http.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_ForbiddenRole(t *testing.T) {
	m := NewAuthMiddleware(testSecret)
	router := setupAuthRouter(m.Authenticate(), m.RequireRole("manager", "admin"))

	token := generateTestToken(t, "customer", time.Now().Add(time.Hour))

	req, _ := http.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole_WithoutAuthenticate(t *testing.T) {
	m := NewAuthMiddleware(testSecret)
	router := setupAuthRouter(m.RequireRole("manager"))

	req, _ := http.NewRequest(http.MethodPost, "/protected", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

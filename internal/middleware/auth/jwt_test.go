package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-jwt-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runMiddleware(t *testing.T, path, authHeader string) (*httptest.ResponseRecorder, *AuthUser) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured *AuthUser
	handler := JWTMiddleware(JWTConfig{
		Secret:    testSecret,
		Logger:    zap.NewNop(),
		SkipPaths: []string{"/health", "/api/v1/payments/vnpay/return"},
	})(func(c echo.Context) error {
		captured, _ = UserFromContext(c)
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	return rec, captured
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":   userID.String(),
		"email": "student@example.com",
		"role":  "user",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	rec, user := runMiddleware(t, "/api/v1/payments", "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	assert.Equal(t, userID, user.UserID)
	assert.Equal(t, "student@example.com", user.Email)
	assert.Equal(t, "user", user.Role)
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	rec, _ := runMiddleware(t, "/api/v1/payments", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_AUTH_HEADER")
}

func TestJWTMiddleware_MalformedHeader(t *testing.T) {
	rec, _ := runMiddleware(t, "/api/v1/payments", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_AUTH_FORMAT")
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	rec, _ := runMiddleware(t, "/api/v1/payments", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	rec, _ := runMiddleware(t, "/api/v1/payments", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_NonUUIDSubject(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "not-a-uuid",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	rec, _ := runMiddleware(t, "/api/v1/payments", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TOKEN_SUBJECT")
}

func TestJWTMiddleware_SkipPaths(t *testing.T) {
	// Gateway callbacks authenticate with signatures, not user tokens
	rec, user := runMiddleware(t, "/api/v1/payments/vnpay/return", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, user)

	rec, _ = runMiddleware(t, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

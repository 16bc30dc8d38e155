package enrollment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/toanvc0910/TechHub-BE-sub001/internal/config"
)

const testTokenSecret = "shared-service-secret"

func newTestClient(baseURL string) *Client {
	return NewClient(config.EnrollmentConfig{
		BaseURL:     baseURL,
		TokenSecret: testTokenSecret,
	}, zap.NewNop())
}

func TestGrantAccess_SendsSignedServiceToken(t *testing.T) {
	userID, courseID := uuid.New(), uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/v1/enrollments", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, userID.String(), body["user_id"])
		assert.Equal(t, courseID.String(), body["course_id"])

		// The bearer token must verify with the shared secret and carry the
		// service identity, not a user identity.
		tokenString := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		require.NotEqual(t, r.Header.Get("Authorization"), tokenString)

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte(testTokenSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		require.NoError(t, err)

		claims := token.Claims.(jwt.MapClaims)
		issuer, _ := claims.GetIssuer()
		assert.Equal(t, "payment-service", issuer)
		audience, _ := claims.GetAudience()
		assert.Contains(t, audience, "course-service")
		expiry, err := claims.GetExpirationTime()
		require.NoError(t, err)
		assert.NotNil(t, expiry)

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	err := newTestClient(server.URL).GrantAccess(context.Background(), userID, courseID)
	assert.NoError(t, err)
}

func TestGrantAccess_AcceptsOKForExistingEnrollment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The course service answers 200 when the enrollment already exists
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := newTestClient(server.URL).GrantAccess(context.Background(), uuid.New(), uuid.New())
	assert.NoError(t, err)
}

func TestGrantAccess_RejectedRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	err := newTestClient(server.URL).GrantAccess(context.Background(), uuid.New(), uuid.New())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestGrantAccess_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	err := newTestClient(server.URL).GrantAccess(context.Background(), uuid.New(), uuid.New())
	assert.Error(t, err)
}

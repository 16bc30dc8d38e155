package enrollment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/toanvc0910/TechHub-BE-sub001/internal/config"
	domainEnrollment "github.com/toanvc0910/TechHub-BE-sub001/internal/domain/enrollment"
)

const (
	serviceTokenIssuer   = "payment-service"
	serviceTokenAudience = "course-service"
	serviceTokenTTL      = 2 * time.Minute
	defaultTimeout       = 10 * time.Second
)

// Client calls the course service's internal enrollment endpoint. Calls are
// authenticated with a short-lived HMAC-signed service token instead of
// forwarded user identity headers, so the downstream auth filter can verify
// who is calling.
type Client struct {
	baseURL     string
	tokenSecret string
	client      *http.Client
	logger      *zap.Logger
}

func NewClient(cfg config.EnrollmentConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout.Std()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		tokenSecret: cfg.TokenSecret,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

var _ domainEnrollment.Dispatcher = (*Client)(nil)

type grantRequest struct {
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
}

// GrantAccess enrolls the user into the course. The course service dedupes
// on (user, course), so redelivery after a partial failure is safe.
func (c *Client) GrantAccess(ctx context.Context, userID, courseID uuid.UUID) error {
	body, err := json.Marshal(grantRequest{
		UserID:   userID.String(),
		CourseID: courseID.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal enrollment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/internal/v1/enrollments", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create enrollment request: %w", err)
	}

	token, err := c.signServiceToken()
	if err != nil {
		return fmt.Errorf("failed to sign service token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("enrollment request failed",
			zap.String("user_id", userID.String()),
			zap.String("course_id", courseID.String()),
			zap.Error(err))
		return fmt.Errorf("enrollment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Error("enrollment request rejected",
			zap.String("user_id", userID.String()),
			zap.String("course_id", courseID.String()),
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))
		return fmt.Errorf("enrollment request rejected with status %d", resp.StatusCode)
	}

	c.logger.Info("course access granted",
		zap.String("user_id", userID.String()),
		zap.String("course_id", courseID.String()))

	return nil
}

// signServiceToken mints the service-identity token the course service
// requires on internal calls.
func (c *Client) signServiceToken() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": serviceTokenIssuer,
		"aud": serviceTokenAudience,
		"iat": now.Unix(),
		"exp": now.Add(serviceTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.tokenSecret))
}

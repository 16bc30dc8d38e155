package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
service:
  name: payment-service
  vnpay:
    tmn_code: TESTMERCH
    hash_secret: test-hash-secret
    pay_url: https://sandbox.gateway.test/pay
    return_url: http://localhost:8080/api/v1/payments/vnpay/return
  paypal:
    client_id: test-client-id
    secret: test-secret
    base_url: https://api.sandbox.gateway.test
    timeout: 15s
  enrollment:
    base_url: http://course-service:8080
    token_secret: shared-service-secret
    timeout: 10s

database:
  host: localhost
  port: 5432
  name: payment
  user: payment
  password: secret
  max_open_conns: 20
  max_idle_conns: 5
  conn_max_lifetime: 30m
  conn_max_idle_time: 300

server:
  http:
    host: 0.0.0.0
    port: 8080

log:
  level: debug
  format: console
  output: stdout

jwt:
  secret: test-jwt-secret
`

func writeTestConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeTestConfig(t, testConfigYAML))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "TESTMERCH", cfg.Service.VNPay.TmnCode)
	assert.Equal(t, "test-client-id", cfg.Service.PayPal.ClientID)
	assert.Equal(t, "test-jwt-secret", cfg.JWT.Secret)
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_DurationForms(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeTestConfig(t, testConfigYAML))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.Service.PayPal.Timeout.Std())
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime.Std())
	// Bare integers are read as seconds
	assert.Equal(t, 300*time.Second, cfg.Database.ConnMaxIdleTime.Std())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeTestConfig(t, `
service:
  paypal:
    timeout: soon
`))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		Name:     "payment",
		User:     "svc",
		Password: "pw",
	}
	assert.Equal(t, "host=db.internal port=5433 user=svc password=pw dbname=payment", cfg.DSN())
}

package http

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/toanvc0910/TechHub-BE-sub001/internal/config"
	"github.com/toanvc0910/TechHub-BE-sub001/internal/infrastructure/database"
)

func TestServerStartReturnsNilAfterShutdown(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.HTTP.Host = "127.0.0.1"
	cfg.Server.HTTP.Port = 0

	srv := NewServer(cfg, zap.NewNop(), &database.Repositories{})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for the listener before shutting down
	require.Eventually(t, func() bool {
		return srv.echo.ListenerAddr() != nil
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, srv.Shutdown(context.Background()))

	select {
	case err := <-errCh:
		// A graceful shutdown is a clean exit, not a startup failure
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after shutdown")
	}
}

package serve

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 50051, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.GracefulTimeout)
	assert.Empty(t, cfg.TLSCertFile)
	assert.Empty(t, cfg.TLSKeyFile)
}

func TestNewServer(t *testing.T) {
	srv, err := NewServer(&Config{Port: 0, GracefulTimeout: 5 * time.Second})
	require.NoError(t, err)
	require.NotNil(t, srv)
	defer srv.Stop()

	assert.NotNil(t, srv.GRPCServer())
	assert.Greater(t, srv.Port(), 0)
}

func TestHealthTransitions(t *testing.T) {
	srv, err := NewServer(&Config{Port: 0, GracefulTimeout: time.Second})
	require.NoError(t, err)

	ctx := context.Background()
	go func() {
		_ = srv.Serve(ctx)
	}()
	defer srv.Stop()

	time.Sleep(100 * time.Millisecond)

	conn, err := grpc.NewClient(
		fmt.Sprintf("localhost:%d", srv.Port()),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	client := grpc_health_v1.NewHealthClient(conn)
	check := func() grpc_health_v1.HealthCheckResponse_ServingStatus {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		resp, err := client.Check(checkCtx, &grpc_health_v1.HealthCheckRequest{Service: ServiceName})
		require.NoError(t, err)
		return resp.GetStatus()
	}

	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, check())

	srv.SetServing()
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, check())

	srv.SetNotServing()
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, check())
}

func TestServerGracefulStop(t *testing.T) {
	srv, err := NewServer(&Config{Port: 0, GracefulTimeout: time.Second})
	require.NoError(t, err)

	go func() {
		_ = srv.Serve(context.Background())
	}()

	time.Sleep(100 * time.Millisecond)

	start := time.Now()
	srv.GracefulStop()
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestServerContextCancellation(t *testing.T) {
	srv, err := NewServer(&Config{Port: 0, GracefulTimeout: time.Second})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after context cancellation")
	}
}

package grpc_test

import (
	"context"
	"net"
	"testing"
	"time"

	grpcadapter "dronedispatch/internal/adapters/in/grpc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestHealthServer(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := grpcadapter.NewHealthServer(nil)
	served := make(chan error, 1)
	go func() { served <- server.Serve(lis) }()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	client := healthpb.NewHealthClient(conn)

	check := func(service string) healthpb.HealthCheckResponse_ServingStatus {
		ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
		defer cancel()

		resp, checkErr := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
		require.NoError(t, checkErr)
		return resp.GetStatus()
	}

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(grpcadapter.ServiceName))

	server.SetServing(true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(grpcadapter.ServiceName))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(""))

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
	require.NoError(t, <-served)
}

// Package grpc serves the standard gRPC health service so orchestrators can
// check the dispatch process without a token.
package grpc

import (
	"context"
	"net"

	"dronedispatch/internal/pkg/logger"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health entry that tracks the dispatch API.
const ServiceName = "dronedispatch.v1.Dispatch"

// HealthServer exposes the standard gRPC health service for load balancers.
type HealthServer struct {
	srv    *grpc.Server
	health *health.Server
	log    *logrus.Entry
}

// NewHealthServer registers the health service. ServiceName reports NOT_SERVING
// until SetServing(true) is called.
func NewHealthServer(log *logrus.Entry) *HealthServer {
	if log == nil {
		log = logger.Discard()
	}

	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthServer{srv: srv, health: hs, log: logger.Component(log, "grpc-health")}
}

// SetServing flips both the overall and the dispatch status.
func (s *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve accepts connections on lis until Shutdown. It blocks.
func (s *HealthServer) Serve(lis net.Listener) error {
	s.log.WithField("addr", lis.Addr().String()).Info("gRPC health server listening")
	return s.srv.Serve(lis)
}

// Shutdown marks everything NOT_SERVING and stops gracefully, or hard when ctx
// ends first.
func (s *HealthServer) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() { s.srv.GracefulStop(); close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.srv.Stop()
		return ctx.Err()
	}
}

package grpc

import (
	"log/slog"
	"net"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name probes use to ask for the chat service status.
// The empty name reports the same status.
const ServiceName = "roomchat.Chat"

// HealthServer exposes grpc.health.v1.Health. It starts NOT_SERVING until
// the store has answered once.
type HealthServer struct {
	log    *slog.Logger
	server *gogrpc.Server
	health *health.Server
}

func NewHealthServer(log *slog.Logger, opts ...gogrpc.ServerOption) *HealthServer {
	server := gogrpc.NewServer(opts...)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	h := &HealthServer{log: log, server: server, health: healthServer}
	h.SetServing(false)
	return h
}

func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
	h.log.Debug("gRPC health status set", "status", status.String())
}

// Serve blocks until Stop is called or the listener fails.
func (h *HealthServer) Serve(lis net.Listener) error {
	h.log.Info("gRPC health server listening", "addr", lis.Addr().String())
	return h.server.Serve(lis)
}

// Stop marks every service NOT_SERVING then drains in-flight calls.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.server.GracefulStop()
}

package grpcinterface

import (
	"fmt"
	"net"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-privateswap/internal/interfaces/grpc/interceptor"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name the daemon's health status is reported with, in
// addition to the overall server status.
const ServiceName = "privswapd"

type ServiceOpts struct {
	// Address to listen on, ignored if Listener is set.
	Address  string
	Listener net.Listener
}

func (o ServiceOpts) validate() error {
	if o.Address == "" && o.Listener == nil {
		return fmt.Errorf("missing operator address")
	}
	return nil
}

// Service exposes the grpc health service of the daemon.
type Service struct {
	opts   ServiceOpts
	server *grpc.Server
	health *health.Server
}

func NewService(opts ServiceOpts) (*Service, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}

	server := grpc.NewServer(
		interceptor.UnaryInterceptor(),
		interceptor.StreamInterceptor(),
	)
	healthSvc := health.NewServer()
	healthpb.RegisterHealthServer(server, healthSvc)
	healthSvc.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthSvc.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Service{opts, server, healthSvc}, nil
}

// Start serves the health service and marks the daemon as serving.
func (s *Service) Start() error {
	listener := s.opts.Listener
	if listener == nil {
		var err error
		if listener, err = net.Listen("tcp", s.opts.Address); err != nil {
			return err
		}
	}

	go func() {
		if err := s.server.Serve(listener); err != nil {
			log.WithError(err).Debug("grpc interface stopped")
		}
	}()

	s.setStatus(healthpb.HealthCheckResponse_SERVING)
	log.Infof("grpc interface listening on %s", listener.Addr())
	return nil
}

// Drain marks the daemon as not serving, the server keeps answering health
// checks until stopped.
func (s *Service) Drain() {
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
}

func (s *Service) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
	log.Debug("disabled grpc interface")
}

func (s *Service) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

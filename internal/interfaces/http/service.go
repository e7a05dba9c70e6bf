package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Service runs the REST API server.
type Service struct {
	address string
	server  *http.Server
	hub     *Hub
	errCh   chan error
}

// NewService returns the REST interface listening on the given address.
func NewService(address string, router http.Handler, hub *Hub) (*Service, error) {
	if address == "" {
		return nil, fmt.Errorf("missing http address")
	}
	if router == nil {
		return nil, fmt.Errorf("missing router")
	}
	return &Service{
		address: address,
		server:  &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second},
		hub:     hub,
		errCh:   make(chan error, 1),
	}, nil
}

func (s *Service) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	log.Infof("http interface listening on %s", s.address)

	go func() {
		if err := s.server.Serve(listener); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http interface stopped unexpectedly")
			s.errCh <- err
		}
	}()
	return nil
}

// Err notifies if the server stopped unexpectedly.
func (s *Service) Err() <-chan error {
	return s.errCh
}

func (s *Service) Stop() {
	if s.hub != nil {
		s.hub.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("failed to gracefully stop http interface")
	}
	log.Debug("disabled http interface")
}

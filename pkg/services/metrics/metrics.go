package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/nspcc-dev/neo-mpt/pkg/config"
	"go.uber.org/zap"
)

// Service serves metrics.
type Service struct {
	http        []*http.Server
	config      config.BasicService
	log         *zap.Logger
	serviceType string
	started     atomic.Bool
}

// NewService configures logger and returns new service instance.
func NewService(name string, httpServers []*http.Server, cfg config.BasicService, log *zap.Logger) *Service {
	return &Service{
		http:        httpServers,
		config:      cfg,
		serviceType: name,
		log:         log.With(zap.String("service", name)),
	}
}

// Start runs http service with the exposed endpoint on the configured port.
// All listeners are opened before serving, so if any of them can't be bound
// nothing is served and the service can be started again.
func (ms *Service) Start() error {
	if !ms.config.Enabled {
		ms.log.Info("service hasn't started since it's disabled")
		return nil
	}
	if !ms.started.CompareAndSwap(false, true) {
		ms.log.Info("service already started")
		return nil
	}
	lns := make([]net.Listener, 0, len(ms.http))
	for _, srv := range ms.http {
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			for _, l := range lns {
				_ = l.Close()
			}
			ms.started.Store(false)
			return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
		}
		lns = append(lns, ln)
	}
	for i, srv := range ms.http {
		srv.Addr = lns[i].Addr().String() // set Addr to the actual address
		ms.log.Info("starting service", zap.String("endpoint", srv.Addr))
		go func(s *http.Server, ln net.Listener) {
			err := s.Serve(ln)
			if !errors.Is(err, http.ErrServerClosed) {
				ms.log.Error("failed to start service", zap.String("endpoint", s.Addr), zap.Error(err))
			}
		}(srv, lns[i])
	}
	return nil
}

// ShutDown stops the service.
func (ms *Service) ShutDown() {
	if !ms.config.Enabled || !ms.started.CompareAndSwap(true, false) {
		return
	}
	for _, srv := range ms.http {
		ms.log.Info("shutting down service", zap.String("endpoint", srv.Addr))
		err := srv.Shutdown(context.Background())
		if err != nil {
			ms.log.Error("can't shut service down", zap.String("endpoint", srv.Addr), zap.Error(err))
		}
	}
	_ = ms.log.Sync()
}

// Addresses returns the list of addresses the service is bound to. Ports
// are the actual ones after Start.
func (ms *Service) Addresses() []string {
	res := make([]string, 0, len(ms.http))
	for _, srv := range ms.http {
		res = append(res, srv.Addr)
	}
	return res
}

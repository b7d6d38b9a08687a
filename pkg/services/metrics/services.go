package metrics

import (
	"net/http"
	"net/http/pprof"

	"github.com/nspcc-dev/neo-mpt/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewPrometheusService creates a service exposing the default prometheus
// registry (trie counters included) at /metrics on every configured address.
func NewPrometheusService(cfg config.BasicService, log *zap.Logger) *Service {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return newHTTPService("Prometheus", mux, cfg, log)
}

// NewPprofService creates a service serving runtime profiles at
// /debug/pprof/.
func NewPprofService(cfg config.BasicService, log *zap.Logger) *Service {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return newHTTPService("Pprof", mux, cfg, log)
}

// newHTTPService makes one server per address, all sharing the handler.
func newHTTPService(name string, h http.Handler, cfg config.BasicService, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	srvs := make([]*http.Server, 0, len(cfg.Addresses))
	for _, addr := range cfg.Addresses {
		srvs = append(srvs, &http.Server{
			Addr:    addr,
			Handler: h,
		})
	}
	return NewService(name, srvs, cfg, log)
}

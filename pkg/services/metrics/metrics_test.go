package metrics

import (
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/nspcc-dev/neo-mpt/pkg/config"
	_ "github.com/nspcc-dev/neo-mpt/pkg/core/mpt" // registers trie metrics
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func get(t *testing.T, url string) string {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPrometheusService(t *testing.T) {
	cfg := config.BasicService{Enabled: true, Addresses: []string{"127.0.0.1:0"}}
	s := NewPrometheusService(cfg, zaptest.NewLogger(t))
	require.NoError(t, s.Start())
	t.Cleanup(s.ShutDown)

	// Second start is a no-op.
	require.NoError(t, s.Start())

	addrs := s.Addresses()
	require.Len(t, addrs, 1)
	require.NotEqual(t, "127.0.0.1:0", addrs[0])

	body := get(t, "http://"+addrs[0]+"/metrics")
	require.Contains(t, body, "neogo_mpt_persisted_nodes_total")
	require.Contains(t, body, "neogo_mpt_resolved_nodes_total")
	require.Contains(t, body, "neogo_mpt_cache_hits_total")
}

func TestPprofService(t *testing.T) {
	cfg := config.BasicService{Enabled: true, Addresses: []string{"127.0.0.1:0"}}
	s := NewPprofService(cfg, zaptest.NewLogger(t))
	require.NoError(t, s.Start())
	t.Cleanup(s.ShutDown)

	body := get(t, "http://"+s.Addresses()[0]+"/debug/pprof/")
	require.Contains(t, body, "goroutine")
}

func TestServiceDisabled(t *testing.T) {
	s := NewPrometheusService(config.BasicService{Addresses: []string{"127.0.0.1:0"}}, zaptest.NewLogger(t))
	require.NoError(t, s.Start())
	require.Equal(t, []string{"127.0.0.1:0"}, s.Addresses())
	s.ShutDown()

	// No logger is fine too.
	s = NewPprofService(config.BasicService{}, nil)
	require.NoError(t, s.Start())
	require.Empty(t, s.Addresses())
}

func TestServiceBadAddress(t *testing.T) {
	cfg := config.BasicService{Enabled: true, Addresses: []string{"256.0.0.1:1"}}
	s := NewPrometheusService(cfg, zaptest.NewLogger(t))
	require.Error(t, s.Start())
}

func TestServicePartialBind(t *testing.T) {
	// Reserve a free port and release it for the service to take.
	free, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	freeAddr := free.Addr().String()
	require.NoError(t, free.Close())

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := config.BasicService{Enabled: true, Addresses: []string{freeAddr, busy.Addr().String()}}
	s := NewPrometheusService(cfg, zaptest.NewLogger(t))
	require.Error(t, s.Start())
	require.Equal(t, cfg.Addresses, s.Addresses())

	// The first address is released after the failure.
	ln, err := net.Listen("tcp", freeAddr)
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	// The service can be started once the address is available.
	require.NoError(t, busy.Close())
	require.NoError(t, s.Start())
	t.Cleanup(s.ShutDown)
	for _, addr := range s.Addresses() {
		require.Contains(t, get(t, "http://"+addr+"/metrics"), "neogo_mpt_cache_hits_total")
	}
}

package network

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server exposes a GuardedChain over HTTP.
type Server struct {
	chain     *GuardedChain
	logger    *slog.Logger
	server    *http.Server
	tlsConfig *tls.Config
}

func NewServer(chain *GuardedChain, opts ...ServerOption) *Server {
	s := &Server{
		chain:  chain,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		server: &http.Server{ReadHeaderTimeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.server.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /chain", s.handleGetChain)
	mux.HandleFunc("GET /chain/valid", s.handleValid)
	mux.HandleFunc("POST /add_block", s.handleAddBlock)
	return mux
}

// Handler returns the routes without a listener, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Serve accepts connections on l until Shutdown is called. It returns nil
// after a clean shutdown.
func (s *Server) Serve(l net.Listener) error {
	if s.tlsConfig != nil {
		l = tls.NewListener(l, s.tlsConfig)
	}
	s.logger.Info("serving ledger", "address", l.Addr().String(), "tls", s.tlsConfig != nil)
	err := s.server.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight ones,
// including any mining run, to finish or for ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

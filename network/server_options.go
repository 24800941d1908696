package network

import (
	"crypto/tls"
	"log/slog"
	"time"
)

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithReadHeaderTimeout(timeout time.Duration) ServerOption {
	return func(s *Server) {
		s.server.ReadHeaderTimeout = timeout
	}
}

func WithCertificate(cert tls.Certificate) ServerOption {
	return func(s *Server) {
		if s.tlsConfig == nil {
			s.tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		s.tlsConfig.Certificates = append(s.tlsConfig.Certificates, cert)
	}
}

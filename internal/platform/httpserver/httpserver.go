package httpserver

import (
	"net/http"
	"time"
)

const (
	defaultReadHeaderTimeout = 5 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	// Request bodies are tiny JSON documents; 64 KiB of headers is plenty.
	maxHeaderBytes = 64 << 10
)

// Option tweaks the server built by New.
type Option func(*http.Server)

// WithRequestTimeout bounds reads and writes a little above the handler
// timeout so the timeout middleware answers before the connection is cut.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *http.Server) {
		if d <= 0 {
			return
		}
		s.ReadTimeout = d + time.Second
		s.WriteTimeout = d + 2*time.Second
	}
}

// New builds the status list HTTP server.
func New(addr string, handler http.Handler, opts ...Option) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		IdleTimeout:       defaultIdleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

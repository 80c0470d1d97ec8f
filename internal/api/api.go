// Package api provides the HTTP REST API server.
package api

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/viken-labs/ressurstorg/internal/api/health"
	"github.com/viken-labs/ressurstorg/internal/market"
	"github.com/viken-labs/ressurstorg/internal/storage"
)

// Config contains HTTP API server configuration.
type Config struct {
	Address             string
	JWTSecret           []byte
	HTTPTLSEnabled      bool   // Enable HTTPS for API server
	HTTPTLSCertFile     string // HTTPS certificate file
	HTTPTLSKeyFile      string // HTTPS private key file
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	RateLimitPerIP      int
	RateLimitPerCompany int
	LockoutThreshold    int
	LockoutDuration     time.Duration
	StreamMaxDuration   time.Duration // Max lifetime for SSE event streams
	Verbose             bool
}

// SetDefaults applies default values for missing configuration.
func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = 15 * time.Minute
	}
	if c.RefreshTokenTTL == 0 {
		c.RefreshTokenTTL = 7 * 24 * time.Hour // 7 days
	}
	if c.RateLimitPerIP == 0 {
		c.RateLimitPerIP = 10 // login attempts per minute
	}
	if c.RateLimitPerCompany == 0 {
		c.RateLimitPerCompany = 120 // requests per minute
	}
	if c.LockoutThreshold == 0 {
		c.LockoutThreshold = 5 // failed attempts
	}
	if c.LockoutDuration == 0 {
		c.LockoutDuration = 30 * time.Minute
	}
	if c.StreamMaxDuration == 0 {
		c.StreamMaxDuration = 30 * time.Minute
	}
}

// Server is the HTTP API server.
type Server struct {
	config        *Config
	storage       storage.Storage
	manager       *market.Manager
	server        *http.Server
	healthHandler *health.Handler
}

// New creates a new API server.
func New(cfg *Config, store storage.Storage, manager *market.Manager) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if manager == nil {
		return nil, fmt.Errorf("market manager is required")
	}
	if len(cfg.JWTSecret) == 0 {
		return nil, fmt.Errorf("JWT secret is required")
	}

	cfg.SetDefaults()

	s := &Server{
		config:        cfg,
		storage:       store,
		manager:       manager,
		healthHandler: health.NewHandler(),
	}

	router := s.setupRouter()

	s.server = &http.Server{
		Addr:        cfg.Address,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout stays 0 (disabled) because the server carries SSE
		// event streams that live up to StreamMaxDuration. A global
		// WriteTimeout would kill those connections mid-stream.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	if cfg.HTTPTLSEnabled {
		s.server.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS13,
		}
	}

	return s, nil
}

// Run starts the HTTP server and blocks until context is canceled.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		log.Printf("HTTP API listening on %s", s.config.Address)
		var err error
		if s.config.HTTPTLSEnabled {
			err = s.server.ListenAndServeTLS(s.config.HTTPTLSCertFile, s.config.HTTPTLSKeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("shutting down HTTP API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.config.Address
}

// RegisterHealthChecker adds a health checker to the server.
func (s *Server) RegisterHealthChecker(c health.Checker) {
	if s.healthHandler != nil {
		s.healthHandler.RegisterChecker(c)
	}
}

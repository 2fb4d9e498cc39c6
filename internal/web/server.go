package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/ru-addr/internal/address"
	"github.com/ru-addr/internal/splitter"
	"github.com/ru-addr/internal/web/handlers"
	"github.com/ru-addr/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config     *Config
	splitter   *splitter.Splitter
	fieldMap   address.FieldMap
	httpServer *http.Server
	router     *mux.Router
}

// NewServer creates a server exposing s; fm names the input fields
// accepted by /api/split
func NewServer(config *Config, s *splitter.Splitter, fm address.FieldMap) *Server {
	server := &Server{
		config:   config,
		splitter: s,
		fieldMap: fm,
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      server.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	splitHandler := &handlers.SplitHandler{
		Splitter:     s.splitter,
		FieldMap:     s.fieldMap,
		MaxBodyBytes: s.config.Server.MaxBodyBytes,
	}

	s.router.HandleFunc("/api/health", splitHandler.Health).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/split", splitHandler.Split).Methods("POST", "OPTIONS")
	api.HandleFunc("/house-number", splitHandler.HouseNumber).Methods("POST", "OPTIONS")
	api.HandleFunc("/tokens", splitHandler.Tokens).Methods("GET")

	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.RequestLogging())
	s.router.Use(middleware.CORS())

	if rl := s.config.RateLimit; rl.RequestsPerSecond > 0 {
		burst := rl.Burst
		if burst < 1 {
			burst = 1
		}
		api.Use(middleware.RateLimit(rate.NewLimiter(rate.Limit(rl.RequestsPerSecond), burst)))
	}

	if s.config.Auth.Enabled {
		api.Use(middleware.Authentication(s.config.Auth.APIKey))
	}
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		log.Printf("Starting server on http://%s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

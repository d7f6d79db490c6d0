package server

import (
	"context"
	"encoding/json"
	"fmt"
	"ir-query-processor/config"
	"ir-query-processor/handlers"
	"ir-query-processor/services"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
)

const (
	serviceName    = "ir-query-processor"
	serviceVersion = "1.0.0"
)

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	router     *mux.Router
	httpServer *http.Server
	services   *services.ServiceContainer

	// Handlers
	chatHandler   *handlers.ChatHandler
	reportHandler *handlers.ReportHandler
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) *Server {
	// Create service factory and initialize services
	serviceFactory := services.NewServiceFactory(cfg)
	serviceContainer, err := serviceFactory.CreateServices()
	if err != nil {
		log.Fatalf("Failed to create services: %v", err)
	}

	router := mux.NewRouter()

	// Create handlers
	chatHandler := handlers.NewChatHandler(serviceContainer.ChatbotService, serviceContainer.ReportStore)
	reportHandler := handlers.NewReportHandler(serviceContainer.ReportStore)

	server := &Server{
		config:        cfg,
		router:        router,
		services:      serviceContainer,
		chatHandler:   chatHandler,
		reportHandler: reportHandler,
		httpServer: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}

	server.setupRoutes()
	server.setupMiddleware()

	return server
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Liveness probe outside the versioned prefix, for load balancers
	s.router.HandleFunc("/health", s.healthCheck).Methods("GET", "OPTIONS")

	// API version prefix
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Per-component health
	api.HandleFunc("/health/detailed", s.detailedHealthCheck).Methods("GET")

	// Chat routes
	api.HandleFunc("/chat/query", s.chatHandler.ProcessQuery).Methods("POST", "OPTIONS")
	api.HandleFunc("/chat/suggestions", s.chatHandler.GetSuggestions).Methods("GET", "OPTIONS")
	api.HandleFunc("/chat/parse", s.chatHandler.ParseQuery).Methods("GET")

	// Report routes
	api.HandleFunc("/reports", s.reportHandler.ListReports).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/{id}", s.reportHandler.GetReport).Methods("GET")

	// Performance and monitoring endpoints
	if s.config.Metrics.Enabled && s.services.MetricsService != nil {
		api.HandleFunc("/metrics", s.metricsHandler).Methods("GET")
	}
	api.HandleFunc("/cache/stats", s.cacheStatsHandler).Methods("GET")
	api.HandleFunc("/cache/clear", s.cacheClearHandler).Methods("POST")
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// CORS must be first to handle preflight requests
	s.router.Use(s.corsMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.contentTypeMiddleware)

	// Add performance monitoring middleware if enabled
	if s.config.Metrics.Enabled && s.services.MetricsService != nil {
		s.router.Use(s.performanceMiddleware)
	}
}

// Start starts the HTTP server and blocks until an interrupt arrives
func (s *Server) Start() error {
	log.Printf("Starting server on port %s", s.config.Server.Port)

	// Start server in a goroutine
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	return s.Shutdown()
}

// Shutdown drains in-flight requests, then releases service resources
// (session janitor, cache janitor, store connections).
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	s.services.Close()
	return err
}

// healthCheck handles the liveness probe
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","service":"%s","timestamp":"%s","version":"%s"}`,
		serviceName, time.Now().Format(time.RFC3339), serviceVersion)
}

// detailedHealthCheck runs every registered component check
func (s *Server) detailedHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.services.HealthService == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, `{"error":"health service not available"}`)
		return
	}

	systemHealth := s.services.HealthService.CheckHealth(r.Context())

	statusCode := http.StatusOK
	if systemHealth.Status == services.HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(systemHealth); err != nil {
		log.Printf("Failed to encode health response: %v", err)
	}
}

// metricsHandler handles metrics requests
func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.services.MetricsService == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, `{"error":"metrics service not available"}`)
		return
	}

	metrics := s.services.MetricsService.GetMetrics()

	// Add cache stats if available
	if s.services.CacheService != nil {
		metrics["cache"] = s.services.CacheService.GetStats()
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(metrics); err != nil {
		log.Printf("Failed to encode metrics: %v", err)
	}
}

// cacheStatsHandler handles cache statistics requests
func (s *Server) cacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.services.CacheService == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, `{"error":"cache service not available"}`)
		return
	}

	stats := s.services.CacheService.GetStats()

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		log.Printf("Failed to encode cache stats: %v", err)
	}
}

// cacheClearHandler handles cache clear requests
func (s *Server) cacheClearHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.services.CacheService == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, `{"error":"cache service not available"}`)
		return
	}

	if err := s.services.CacheService.Clear(r.Context()); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, `{"error":"failed to clear cache","details":"%s"}`, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"message":"cache cleared successfully","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

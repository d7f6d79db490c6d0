package services

import (
	"fmt"
	"io"
	"ir-query-processor/clients"
	"ir-query-processor/config"
	"ir-query-processor/database"
)

// ServiceContainer holds all service instances
type ServiceContainer struct {
	// Core services
	ChatbotService ChatbotService
	ReportStore    ReportStore
	SessionManager *SessionManager
	LLMService     LLMService

	// Performance and monitoring
	CacheService   CacheService
	MetricsService MetricsService
	Logger         Logger
	HealthService  HealthService

	storeCloser io.Closer
}

// ServiceFactory creates and configures all services
type ServiceFactory struct {
	config *config.Config
}

// NewServiceFactory creates a new service factory
func NewServiceFactory(cfg *config.Config) *ServiceFactory {
	return &ServiceFactory{
		config: cfg,
	}
}

// CreateServices creates and wires all services together
func (f *ServiceFactory) CreateServices() (*ServiceContainer, error) {
	// Create logger
	logLevel := ParseLogLevel(f.config.Logging.Level)
	logger := NewStructuredLogger(logLevel, nil)

	// Create performance and monitoring services
	var cacheService CacheService
	var metricsService MetricsService

	if f.config.Cache.Enabled {
		cacheService = NewInMemoryCache(
			f.config.Cache.MaxSize,
			f.config.Cache.CleanupInterval,
		)
	}

	if f.config.Metrics.Enabled {
		metricsService = NewInMemoryMetrics()
	}

	// Create health service
	healthService := NewHealthService("1.0.0", logger)

	// Create the configured report store backend
	store, storeCloser, err := f.createReportStore()
	if err != nil {
		return nil, err
	}

	if cacheService != nil {
		store = NewCachedReportStore(store, cacheService, f.config.Cache.DefaultTTL)
	}

	// Keyword tables drive intent parsing, sentinel filtering, and with
	// them the whole query pipeline. A broken table fails startup here.
	keywordConfig, err := LoadKeywordConfig(f.config.Keywords.File)
	if err != nil {
		return nil, fmt.Errorf("failed to load keyword tables: %w", err)
	}

	parser, err := NewIntentParser(keywordConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build intent parser: %w", err)
	}

	sentinels := keywordConfig.SentinelSet()
	extractor := NewSurfaceExtractor(sentinels)
	engine := NewSuggestionEngine(extractor)
	retriever := NewCandidateRetriever()
	scorer := NewRelevanceScorer()
	formatter := NewResponseFormatter(sentinels)

	// Create external service clients
	llmService := NewLLMClient(&f.config.LLM)

	// Conversation sessions
	sessions := NewSessionManager(f.config.District.Prefix, &f.config.Sessions)

	chatbot := NewChatbotService(store, parser, engine, retriever, scorer, formatter, sessions, llmService, logger)

	if metricsService != nil {
		monitor := NewPerformanceMonitor(metricsService)
		chatbot = NewMonitoredChatbotService(chatbot, monitor)
	}

	// Register health checkers
	healthService.RegisterChecker(NewReportStoreHealthChecker("report_store", store))
	healthService.RegisterChecker(NewLLMHealthChecker("llm", llmService))
	if cacheService != nil {
		healthService.RegisterChecker(NewCacheHealthChecker("cache", cacheService))
	}
	if metricsService != nil {
		healthService.RegisterChecker(NewMetricsHealthChecker("metrics", metricsService))
	}

	container := &ServiceContainer{
		ChatbotService: chatbot,
		ReportStore:    store,
		SessionManager: sessions,
		LLMService:     llmService,
		CacheService:   cacheService,
		MetricsService: metricsService,
		Logger:         logger,
		HealthService:  healthService,
		storeCloser:    storeCloser,
	}

	return container, nil
}

// createReportStore builds the storage backend selected by configuration.
// The second return value is non-nil when the backend holds resources that
// need explicit release on shutdown.
func (f *ServiceFactory) createReportStore() (ReportStore, io.Closer, error) {
	switch f.config.Storage.Backend {
	case "postgres":
		store, err := database.NewPostgresReportStore(&f.config.Database, &f.config.District)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create postgres report store: %w", err)
		}
		return store, store, nil
	case "in-memory":
		return NewInMemoryReportStore(nil), nil, nil
	case "supabase", "":
		return clients.NewSupabaseReportStore(&f.config.Supabase, &f.config.District), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s", f.config.Storage.Backend)
	}
}

// Close releases background goroutines and store connections.
func (c *ServiceContainer) Close() {
	if c.SessionManager != nil {
		c.SessionManager.Stop()
	}
	if cache, ok := c.CacheService.(*InMemoryCache); ok {
		cache.Stop()
	}
	if c.storeCloser != nil {
		c.storeCloser.Close()
	}
}

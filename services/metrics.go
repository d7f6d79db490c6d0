package services

import (
	"context"
	"ir-query-processor/models"
	"sync"
	"time"
)

// MetricsService provides application metrics and monitoring
type MetricsService interface {
	IncrementCounter(name string, tags map[string]string)
	RecordDuration(name string, duration time.Duration, tags map[string]string)
	SetGauge(name string, value float64, tags map[string]string)
	GetMetrics() map[string]interface{}
	Reset()
}

// Counter represents a monotonically increasing counter
type Counter struct {
	Value int64            `json:"value"`
	Tags  map[string]string `json:"tags,omitempty"`
}

// Histogram represents duration measurements
type Histogram struct {
	Count    int64         `json:"count"`
	Sum      time.Duration `json:"sum"`
	Min      time.Duration `json:"min"`
	Max      time.Duration `json:"max"`
	Average  time.Duration `json:"average"`
	Tags     map[string]string `json:"tags,omitempty"`
	Buckets  map[string]int64 `json:"buckets"` // Duration buckets for percentiles
}

// Gauge represents a value that can go up and down
type Gauge struct {
	Value float64          `json:"value"`
	Tags  map[string]string `json:"tags,omitempty"`
}

// InMemoryMetrics implements MetricsService using in-memory storage
type InMemoryMetrics struct {
	mu         sync.RWMutex
	counters   map[string]*Counter
	histograms map[string]*Histogram
	gauges     map[string]*Gauge
	startTime  time.Time
}

// NewInMemoryMetrics creates a new in-memory metrics service
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		counters:   make(map[string]*Counter),
		histograms: make(map[string]*Histogram),
		gauges:     make(map[string]*Gauge),
		startTime:  time.Now(),
	}
}

// IncrementCounter increments a counter metric
func (m *InMemoryMetrics) IncrementCounter(name string, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	
	key := m.generateKey(name, tags)
	if counter, exists := m.counters[key]; exists {
		counter.Value++
	} else {
		m.counters[key] = &Counter{
			Value: 1,
			Tags:  tags,
		}
	}
}

// RecordDuration records a duration measurement
func (m *InMemoryMetrics) RecordDuration(name string, duration time.Duration, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	
	key := m.generateKey(name, tags)
	if histogram, exists := m.histograms[key]; exists {
		histogram.Count++
		histogram.Sum += duration
		
		if duration < histogram.Min || histogram.Min == 0 {
			histogram.Min = duration
		}
		if duration > histogram.Max {
			histogram.Max = duration
		}
		
		histogram.Average = histogram.Sum / time.Duration(histogram.Count)
		
		// Update buckets for percentile calculation
		m.updateBuckets(histogram, duration)
	} else {
		buckets := make(map[string]int64)
		m.histograms[key] = &Histogram{
			Count:   1,
			Sum:     duration,
			Min:     duration,
			Max:     duration,
			Average: duration,
			Tags:    tags,
			Buckets: buckets,
		}
		m.updateBuckets(m.histograms[key], duration)
	}
}

// SetGauge sets a gauge value
func (m *InMemoryMetrics) SetGauge(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	
	key := m.generateKey(name, tags)
	m.gauges[key] = &Gauge{
		Value: value,
		Tags:  tags,
	}
}

// GetMetrics returns all collected metrics
func (m *InMemoryMetrics) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	
	metrics := make(map[string]interface{})
	
	// Add system info
	metrics["system"] = map[string]interface{}{
		"uptime":     time.Since(m.startTime).String(),
		"start_time": m.startTime.Format(time.RFC3339),
	}
	
	// Add counters
	if len(m.counters) > 0 {
		counters := make(map[string]*Counter)
		for k, v := range m.counters {
			counters[k] = v
		}
		metrics["counters"] = counters
	}
	
	// Add histograms
	if len(m.histograms) > 0 {
		histograms := make(map[string]*Histogram)
		for k, v := range m.histograms {
			histograms[k] = v
		}
		metrics["histograms"] = histograms
	}
	
	// Add gauges
	if len(m.gauges) > 0 {
		gauges := make(map[string]*Gauge)
		for k, v := range m.gauges {
			gauges[k] = v
		}
		metrics["gauges"] = gauges
	}
	
	return metrics
}

// Reset clears all metrics
func (m *InMemoryMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	
	m.counters = make(map[string]*Counter)
	m.histograms = make(map[string]*Histogram)
	m.gauges = make(map[string]*Gauge)
	m.startTime = time.Now()
}

// generateKey creates a unique key for metrics with tags
func (m *InMemoryMetrics) generateKey(name string, tags map[string]string) string {
	key := name
	if tags != nil {
		for k, v := range tags {
			key += "|" + k + ":" + v
		}
	}
	return key
}

// updateBuckets updates histogram buckets for percentile calculation
func (m *InMemoryMetrics) updateBuckets(histogram *Histogram, duration time.Duration) {
	if histogram.Buckets == nil {
		histogram.Buckets = make(map[string]int64)
	}
	
	// Define duration buckets (in milliseconds)
	buckets := []struct {
		name  string
		limit time.Duration
	}{
		{"1ms", time.Millisecond},
		{"5ms", 5 * time.Millisecond},
		{"10ms", 10 * time.Millisecond},
		{"25ms", 25 * time.Millisecond},
		{"50ms", 50 * time.Millisecond},
		{"100ms", 100 * time.Millisecond},
		{"250ms", 250 * time.Millisecond},
		{"500ms", 500 * time.Millisecond},
		{"1s", time.Second},
		{"2.5s", 2500 * time.Millisecond},
		{"5s", 5 * time.Second},
		{"10s", 10 * time.Second},
	}
	
	for _, bucket := range buckets {
		if duration <= bucket.limit {
			histogram.Buckets[bucket.name]++
		}
	}
	
	// Always increment the "+Inf" bucket
	histogram.Buckets["+Inf"]++
}

// PerformanceMonitor wraps services with performance monitoring
type PerformanceMonitor struct {
	metrics MetricsService
}

// NewPerformanceMonitor creates a new performance monitor
func NewPerformanceMonitor(metrics MetricsService) *PerformanceMonitor {
	return &PerformanceMonitor{
		metrics: metrics,
	}
}

// MonitoredChatbotService wraps ChatbotService with performance monitoring
type MonitoredChatbotService struct {
	chatbot ChatbotService
	monitor *PerformanceMonitor
}

// NewMonitoredChatbotService creates a monitored chatbot service
func NewMonitoredChatbotService(chatbot ChatbotService, monitor *PerformanceMonitor) *MonitoredChatbotService {
	return &MonitoredChatbotService{
		chatbot: chatbot,
		monitor: monitor,
	}
}

// ParseQuery classifies a query with monitoring
func (m *MonitoredChatbotService) ParseQuery(query string) models.QueryIntent {
	start := time.Now()

	intent := m.chatbot.ParseQuery(query)

	duration := time.Since(start)
	m.monitor.metrics.RecordDuration("chat.parse.duration", duration, map[string]string{
		"operation": "parse_query",
	})
	m.monitor.metrics.IncrementCounter("chat.parse.requests", map[string]string{
		"category": string(intent.Category),
	})

	return intent
}

// GenerateSuggestions produces autocomplete candidates with monitoring
func (m *MonitoredChatbotService) GenerateSuggestions(query string, corpus []models.Report) []models.Suggestion {
	start := time.Now()
	defer func() {
		duration := time.Since(start)
		m.monitor.metrics.RecordDuration("chat.suggestions.duration", duration, map[string]string{
			"operation": "generate_suggestions",
		})
		m.monitor.metrics.IncrementCounter("chat.suggestions.requests", map[string]string{
			"operation": "generate_suggestions",
		})
	}()

	suggestions := m.chatbot.GenerateSuggestions(query, corpus)

	m.monitor.metrics.SetGauge("chat.suggestions.results_count", float64(len(suggestions)), map[string]string{
		"operation": "generate_suggestions",
	})

	return suggestions
}

// GenerateFieldSuggestions produces field-scoped candidates with monitoring
func (m *MonitoredChatbotService) GenerateFieldSuggestions(query string, fieldType models.FieldType, corpus []models.Report) []models.Suggestion {
	start := time.Now()
	defer func() {
		duration := time.Since(start)
		m.monitor.metrics.RecordDuration("chat.field_suggestions.duration", duration, map[string]string{
			"operation": "generate_field_suggestions",
		})
		m.monitor.metrics.IncrementCounter("chat.field_suggestions.requests", map[string]string{
			"field_type": string(fieldType),
		})
	}()

	suggestions := m.chatbot.GenerateFieldSuggestions(query, fieldType, corpus)

	m.monitor.metrics.SetGauge("chat.field_suggestions.results_count", float64(len(suggestions)), map[string]string{
		"operation": "generate_field_suggestions",
	})

	return suggestions
}

// ProcessQuery runs the query pipeline with monitoring
func (m *MonitoredChatbotService) ProcessQuery(ctx context.Context, query, sessionID string) (*models.ChatQueryResponse, error) {
	start := time.Now()
	defer func() {
		duration := time.Since(start)
		m.monitor.metrics.RecordDuration("chat.query.duration", duration, map[string]string{
			"operation": "process_query",
		})
	}()

	response, err := m.chatbot.ProcessQuery(ctx, query, sessionID)

	if err != nil {
		m.monitor.metrics.IncrementCounter("chat.query.errors", map[string]string{
			"operation": "process_query",
		})
	} else if response != nil {
		m.monitor.metrics.IncrementCounter("chat.query.requests", map[string]string{
			"category": string(response.Intent.Category),
		})
		m.monitor.metrics.SetGauge("chat.query.sources_count", float64(len(response.Sources)), map[string]string{
			"operation": "process_query",
		})
	}

	return response, err
}
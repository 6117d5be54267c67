package utils

import (
	"sync"
	"time"
)

// Metrics contiene las métricas en proceso de la aplicación
type Metrics struct {
	mu sync.RWMutex

	// Métricas de peticiones HTTP
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Métricas de dominio
	TotalBoletas     int64
	TotalSubmissions int64
	TotalDecksBuilt  int64
	LastBoletaTime   time.Time

	// Métricas de errores
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics devuelve la instancia de métricas
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			ErrorTypes: make(map[string]int64),
		}
	})
	return metrics
}

// RecordRequest registra las métricas de una petición
func (m *Metrics) RecordRequest(duration time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if failed {
		m.FailedRequests++
	}
}

// RecordBoleta registra el procesamiento de una boleta
func (m *Metrics) RecordBoleta(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastBoletaTime = time.Now()
	if err != nil {
		m.recordErrorLocked(err)
		return
	}
	m.TotalBoletas++
}

// RecordSubmission registra un envío de meta
func (m *Metrics) RecordSubmission(count int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.recordErrorLocked(err)
		return
	}
	m.TotalSubmissions += int64(count)
}

// RecordDeck registra la composición de una presentación
func (m *Metrics) RecordDeck() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalDecksBuilt++
}

// RecordError registra un error
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordErrorLocked(err)
}

func (m *Metrics) recordErrorLocked(err error) {
	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		errorType = err.Error()
	}
	m.ErrorTypes[errorType]++
}

// GetMetricsSnapshot devuelve una copia de las métricas actuales
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	errorTypes := make(map[string]int64, len(m.ErrorTypes))
	for k, v := range m.ErrorTypes {
		errorTypes[k] = v
	}

	return map[string]interface{}{
		"total_requests":    m.TotalRequests,
		"failed_requests":   m.FailedRequests,
		"average_latency":   m.AverageLatency.String(),
		"total_boletas":     m.TotalBoletas,
		"total_submissions": m.TotalSubmissions,
		"total_decks":       m.TotalDecksBuilt,
		"error_count":       m.ErrorCount,
		"last_error_time":   m.LastErrorTime,
		"error_types":       errorTypes,
	}
}

// ResetMetrics reinicia todas las métricas
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests = 0
	m.FailedRequests = 0
	m.RequestLatency = 0
	m.AverageLatency = 0
	m.TotalBoletas = 0
	m.TotalSubmissions = 0
	m.TotalDecksBuilt = 0
	m.ErrorCount = 0
	m.ErrorTypes = make(map[string]int64)
}

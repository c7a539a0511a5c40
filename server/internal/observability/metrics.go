package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates counters for workbench input handling, keyed by agent type.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	agentMetrics map[string]*AgentMetrics
}

// AgentMetrics represents metrics for a specific agent type.
type AgentMetrics struct {
	executionCount atomic.Int64
	totalDuration  atomic.Int64 // milliseconds
	errorCount     atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		agentMetrics: make(map[string]*AgentMetrics),
	}
}

// RecordRequest records an input event for an agent type.
func (m *Metrics) RecordRequest(agentType string) {
	m.requestTotal.Add(1)
	m.getAgentMetrics(agentType).executionCount.Add(1)
}

// RecordFailure records a failed input event.
func (m *Metrics) RecordFailure(agentType string) {
	m.requestFailed.Add(1)
	m.getAgentMetrics(agentType).errorCount.Add(1)
}

// RecordDuration records how long handling an input event took.
func (m *Metrics) RecordDuration(agentType string, duration time.Duration) {
	m.getAgentMetrics(agentType).totalDuration.Add(duration.Milliseconds())
}

// GetRequestTotal returns the total number of requests.
func (m *Metrics) GetRequestTotal() int64 {
	return m.requestTotal.Load()
}

// GetRequestFailed returns the total number of failed requests.
func (m *Metrics) GetRequestFailed() int64 {
	return m.requestFailed.Load()
}

func (m *Metrics) getAgentMetrics(agentType string) *AgentMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	am, ok := m.agentMetrics[agentType]
	if !ok {
		am = &AgentMetrics{}
		m.agentMetrics[agentType] = am
	}
	return am
}

// Reset resets all metrics (useful for testing).
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)

	m.mu.Lock()
	m.agentMetrics = make(map[string]*AgentMetrics)
	m.mu.Unlock()
}

// Snapshot returns a point-in-time snapshot of current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	agentSnapshots := make(map[string]*AgentMetricsSnapshot, len(m.agentMetrics))
	for agentType, am := range m.agentMetrics {
		count := am.executionCount.Load()
		snapshot := &AgentMetricsSnapshot{
			ExecutionCount: count,
			TotalDuration:  am.totalDuration.Load(),
			ErrorCount:     am.errorCount.Load(),
		}
		if count > 0 {
			snapshot.AverageDuration = snapshot.TotalDuration / count
		}
		agentSnapshots[agentType] = snapshot
	}

	return &MetricsSnapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		AgentMetrics:  agentSnapshots,
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	RequestTotal  int64                            `json:"request_total"`
	RequestFailed int64                            `json:"request_failed"`
	AgentMetrics  map[string]*AgentMetricsSnapshot `json:"agent_metrics"`
}

// AgentMetricsSnapshot represents metrics for a specific agent type.
type AgentMetricsSnapshot struct {
	ExecutionCount  int64 `json:"execution_count"`
	TotalDuration   int64 `json:"total_duration_ms"`
	ErrorCount      int64 `json:"error_count"`
	AverageDuration int64 `json:"average_duration_ms"`
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}

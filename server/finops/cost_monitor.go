package finops

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/weillium/ai-portfolio/store"
)

// CostMonitor aggregates LLM spend from agent run audit records. Reports are
// cached briefly so hot polling does not hammer the store.
type CostMonitor struct {
	store  *store.Store
	logger *slog.Logger

	mu          sync.RWMutex
	cached      *SpendReport
	cacheTTL    time.Duration
	lastRefresh time.Time
}

// AgentSpend is the accumulated spend of one agent.
type AgentSpend struct {
	AgentID    int32   `json:"agentId"`
	Runs       int64   `json:"runs"`
	TokensUsed int64   `json:"tokensUsed"`
	Cost       float64 `json:"cost"`
}

// SpendReport is a point-in-time view of total spend, broken down by agent.
type SpendReport struct {
	GeneratedAt int64         `json:"generatedAt"`
	TotalRuns   int64         `json:"totalRuns"`
	TotalTokens int64         `json:"totalTokens"`
	TotalCost   float64       `json:"totalCost"`
	ByAgent     []*AgentSpend `json:"byAgent"`
}

func NewCostMonitor(st *store.Store) *CostMonitor {
	return &CostMonitor{
		store:    st,
		logger:   slog.Default(),
		cacheTTL: 5 * time.Minute,
	}
}

// Report returns the current spend report, rebuilding it when the cached one
// has expired.
func (m *CostMonitor) Report(ctx context.Context) (*SpendReport, error) {
	m.mu.RLock()
	if m.cached != nil && time.Since(m.lastRefresh) < m.cacheTTL {
		report := m.cached
		m.mu.RUnlock()
		return report, nil
	}
	m.mu.RUnlock()
	return m.refresh(ctx)
}

// Invalidate drops the cached report so the next Report rebuilds it.
func (m *CostMonitor) Invalidate() {
	m.mu.Lock()
	m.cached = nil
	m.mu.Unlock()
}

func (m *CostMonitor) refresh(ctx context.Context) (*SpendReport, error) {
	runs, err := m.store.ListAgentRuns(ctx, &store.FindAgentRun{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list agent runs")
	}

	byAgent := map[int32]*AgentSpend{}
	report := &SpendReport{GeneratedAt: time.Now().Unix()}
	for _, run := range runs {
		spend, ok := byAgent[run.AgentID]
		if !ok {
			spend = &AgentSpend{AgentID: run.AgentID}
			byAgent[run.AgentID] = spend
		}
		spend.Runs++
		report.TotalRuns++
		if run.TokensUsed != nil {
			spend.TokensUsed += int64(*run.TokensUsed)
			report.TotalTokens += int64(*run.TokensUsed)
		}
		if run.CostEstimate != nil {
			spend.Cost += *run.CostEstimate
			report.TotalCost += *run.CostEstimate
		}
	}
	report.ByAgent = make([]*AgentSpend, 0, len(byAgent))
	for _, spend := range byAgent {
		report.ByAgent = append(report.ByAgent, spend)
	}
	sort.Slice(report.ByAgent, func(i, j int) bool {
		return report.ByAgent[i].Cost > report.ByAgent[j].Cost
	})

	m.mu.Lock()
	m.cached = report
	m.lastRefresh = time.Now()
	m.mu.Unlock()
	return report, nil
}

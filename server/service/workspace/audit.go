package workspace

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/weillium/ai-portfolio/store"
)

const (
	runQueueSize    = 256
	runWriteTimeout = 10 * time.Second
)

// RunRecord is one audit entry produced by a view behavior. Input and Output
// are arbitrary JSON-serializable payloads.
type RunRecord struct {
	SessionID    int32
	AgentID      int32
	UserID       string
	Input        any
	Output       any
	TokensUsed   *int32
	CostEstimate *float64
}

// RunLogger writes agent run audit records asynchronously. Logging never
// blocks the request path: when the queue is full the record is dropped with
// a warning.
type RunLogger struct {
	store  *store.Store
	logger *slog.Logger

	queue chan *store.AgentRun
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewRunLogger(st *store.Store, logger *slog.Logger) *RunLogger {
	l := &RunLogger{
		store:  st,
		logger: logger,
		queue:  make(chan *store.AgentRun, runQueueSize),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

// Log enqueues an audit record. Failures are logged and swallowed; an audit
// miss must never fail the interaction that produced it.
func (l *RunLogger) Log(record *RunRecord) {
	input, err := json.Marshal(record.Input)
	if err != nil {
		l.logger.Warn("failed to encode run input", "error", err)
		input = []byte("{}")
	}
	output, err := json.Marshal(record.Output)
	if err != nil {
		l.logger.Warn("failed to encode run output", "error", err)
		output = []byte("{}")
	}
	run := &store.AgentRun{
		SessionID:    record.SessionID,
		AgentID:      record.AgentID,
		UserID:       record.UserID,
		Input:        string(input),
		Output:       string(output),
		TokensUsed:   record.TokensUsed,
		CostEstimate: record.CostEstimate,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- run:
	default:
		l.logger.Warn("run audit queue full, dropping record",
			"session_id", record.SessionID,
			"agent_id", record.AgentID)
	}
}

func (l *RunLogger) run() {
	defer l.wg.Done()
	for run := range l.queue {
		ctx, cancel := context.WithTimeout(context.Background(), runWriteTimeout)
		if _, err := l.store.CreateAgentRun(ctx, run); err != nil {
			l.logger.Warn("failed to persist agent run",
				"session_id", run.SessionID,
				"agent_id", run.AgentID,
				"error", err)
		}
		cancel()
	}
}

// Close drains the queue and stops the worker.
func (l *RunLogger) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()
	l.wg.Wait()
}

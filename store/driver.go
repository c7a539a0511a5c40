package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Agent model related methods.
	CreateAgent(ctx context.Context, create *Agent) (*Agent, error)
	ListAgents(ctx context.Context, find *FindAgent) ([]*Agent, error)
	UpdateAgent(ctx context.Context, update *UpdateAgent) (*Agent, error)
	DeleteAgent(ctx context.Context, delete *DeleteAgent) error

	// Session model related methods.
	CreateSession(ctx context.Context, create *Session) (*Session, error)
	ListSessions(ctx context.Context, find *FindSession) ([]*Session, error)
	UpdateSession(ctx context.Context, update *UpdateSession) (*Session, error)
	DeleteSession(ctx context.Context, delete *DeleteSession) error

	// AgentRun model related methods.
	CreateAgentRun(ctx context.Context, create *AgentRun) (*AgentRun, error)
	ListAgentRuns(ctx context.Context, find *FindAgentRun) ([]*AgentRun, error)
}

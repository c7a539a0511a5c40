package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/weillium/ai-portfolio/server/ai"
	"github.com/weillium/ai-portfolio/server/internal/observability"
	"github.com/weillium/ai-portfolio/store"
)

// Service is the workbench core. It hands out per-user workspaces, owns the
// agent registry, and routes session inputs to view behaviors.
type Service struct {
	store      *store.Store
	logger     *slog.Logger
	registry   *Registry
	dispatcher *Dispatcher
	completer  ai.CompletionService
	hooks      *HookRegistry
	components *ComponentRegistry
	runs       *RunLogger

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func NewService(st *store.Store, logger *slog.Logger, completer ai.CompletionService) *Service {
	components := NewComponentRegistry()
	return &Service{
		store:      st,
		logger:     logger,
		registry:   NewRegistry(st, logger),
		dispatcher: NewDispatcher(components),
		completer:  completer,
		hooks:      NewHookRegistry(),
		components: components,
		runs:       NewRunLogger(st, logger),
		workspaces: make(map[string]*Workspace),
	}
}

func (s *Service) Registry() *Registry { return s.registry }

func (s *Service) Hooks() *HookRegistry { return s.hooks }

func (s *Service) Components() *ComponentRegistry { return s.components }

func (s *Service) Runs() *RunLogger { return s.runs }

// Workspace returns the workspace for the given user, creating it on first
// use. Distinct users never contend.
func (s *Service) Workspace(userID string) *Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ws, ok := s.workspaces[userID]; ok {
		return ws
	}
	ws := &Workspace{
		userID: userID,
		store:  s.store,
		logger: s.logger,
		now:    time.Now,
		newUID: shortuuid.New,
	}
	s.workspaces[userID] = ws
	return ws
}

// HandleSessionInput resolves the session, dispatches the input to the view
// behavior for the session's agent type, and returns the behavior's result.
func (s *Service) HandleSessionInput(ctx context.Context, rc *observability.RequestContext, userID string, sessionUID string, input *InputRequest) (*InputResult, error) {
	ws := s.Workspace(userID)
	session, err := ws.GetSession(ctx, sessionUID)
	if err != nil {
		return nil, err
	}
	agent := session.Agent
	if agent == nil {
		// The agent was deleted out from under the session.
		agent = &store.Agent{ID: session.AgentID, Type: store.AgentTypeCustom, Config: "{}"}
	}
	if rc != nil {
		rc.AgentType = string(agent.Type)
		rc = rc.WithSession(sessionUID)
	}

	env := &ViewEnv{
		Agent:   agent,
		Session: session,
		UserID:  userID,
		Persist: func(ctx context.Context, state State) (*store.SessionWithAgent, error) {
			return ws.UpdateSessionState(ctx, sessionUID, state)
		},
		Completer: s.completer,
		Hooks:     s.hooks,
		Runs:      s.runs,
		Request:   rc,
	}
	result, err := s.dispatcher.HandleInput(ctx, env, input)
	if err != nil && rc != nil {
		rc.Warn("session input failed",
			slog.String("input_type", input.Type),
			slog.String("error", err.Error()))
	}
	return result, err
}

// ListRuns returns audit records scoped to the given user.
func (s *Service) ListRuns(ctx context.Context, userID string, sessionID *int32) ([]*store.AgentRun, error) {
	find := &store.FindAgentRun{UserID: &userID, SessionID: sessionID}
	return s.store.ListAgentRuns(ctx, find)
}

// Close flushes the audit queue.
func (s *Service) Close() {
	s.runs.Close()
}

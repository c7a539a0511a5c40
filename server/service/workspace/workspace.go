package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	wbErrors "github.com/weillium/ai-portfolio/server/internal/errors"
	"github.com/weillium/ai-portfolio/store"
)

// Workspace owns the session list of a single user. All mutations go through
// its mutex, which doubles as the in-flight guard that keeps a double
// agent-select from creating two sessions.
type Workspace struct {
	userID string
	store  *store.Store
	logger *slog.Logger

	now    func() time.Time
	newUID func() string

	mu       sync.Mutex
	sessions []*store.SessionWithAgent
	loaded   bool
	lastErr  string
}

// LoadSessions refreshes the in-memory session list from the store, most
// recently active first. On failure the previous list is cleared and the
// error is recorded for the status surface.
func (w *Workspace) LoadSessions(ctx context.Context) ([]*store.SessionWithAgent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	sessions, err := w.store.ListWorkspaceSessions(ctx, w.userID)
	if err != nil {
		w.sessions = nil
		w.loaded = false
		w.lastErr = "failed to load sessions"
		return nil, wbErrors.ServiceUnavailable("failed to load sessions", err)
	}
	w.sessions = sessions
	w.loaded = true
	w.lastErr = ""
	return w.snapshotLocked(), nil
}

// Sessions returns a copy of the current in-memory list.
func (w *Workspace) Sessions() []*store.SessionWithAgent {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Err returns the last recorded workspace error, or the empty string.
func (w *Workspace) Err() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// CreateSession starts a fresh session for the given agent with that type's
// default state and prepends it to the list.
func (w *Workspace) CreateSession(ctx context.Context, agent *store.Agent) (*store.SessionWithAgent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.createSessionLocked(ctx, agent)
}

// SelectAgent resumes the user's most recent session for the agent, or
// creates one when none exists. The resume-or-create decision and the create
// itself happen under the same lock so concurrent selects of the same agent
// yield a single session.
func (w *Workspace) SelectAgent(ctx context.Context, agent *store.Agent) (*store.SessionWithAgent, error) {
	if agent == nil {
		return nil, wbErrors.InvalidArgument("no agent selected", nil)
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.loaded {
		sessions, err := w.store.ListWorkspaceSessions(ctx, w.userID)
		if err != nil {
			w.lastErr = "failed to load sessions"
			return nil, wbErrors.ServiceUnavailable("failed to load sessions", err)
		}
		w.sessions = sessions
		w.loaded = true
	}
	for _, session := range w.sessions {
		if session.AgentID == agent.ID {
			return session, nil
		}
	}
	return w.createSessionLocked(ctx, agent)
}

func (w *Workspace) createSessionLocked(ctx context.Context, agent *store.Agent) (*store.SessionWithAgent, error) {
	if agent == nil {
		return nil, wbErrors.InvalidArgument("no agent selected", nil)
	}
	config, err := ParseAgentConfig(agent.Config)
	if err != nil {
		config = &AgentConfig{}
	}
	encoded, err := EncodeState(DefaultState(agent.Type, config))
	if err != nil {
		return nil, wbErrors.ServiceUnavailable("failed to build initial state", err)
	}
	now := w.now().Unix()
	session, err := w.store.CreateSession(ctx, &store.Session{
		UID:          w.newUID(),
		UserID:       w.userID,
		AgentID:      agent.ID,
		Title:        fmt.Sprintf("%s session", agent.Name),
		State:        encoded,
		LastActiveTs: now,
	})
	if err != nil {
		w.lastErr = "failed to create session"
		return nil, wbErrors.ServiceUnavailable("failed to create session", err)
	}
	withAgent := &store.SessionWithAgent{Session: session, Agent: agent}
	w.sessions = append([]*store.SessionWithAgent{withAgent}, w.sessions...)
	w.lastErr = ""
	return withAgent, nil
}

// GetSession returns the in-memory session with the given UID, falling back
// to the store when the list has not been loaded.
func (w *Workspace) GetSession(ctx context.Context, uid string) (*store.SessionWithAgent, error) {
	w.mu.Lock()
	for _, session := range w.sessions {
		if session.UID == uid {
			w.mu.Unlock()
			return session, nil
		}
	}
	w.mu.Unlock()

	session, err := w.store.GetSession(ctx, &store.FindSession{UID: &uid, UserID: &w.userID})
	if err != nil {
		return nil, wbErrors.ServiceUnavailable("failed to get session", err)
	}
	if session == nil {
		return nil, wbErrors.NotFound("session not found", nil)
	}
	agent, err := w.store.GetAgent(ctx, &store.FindAgent{ID: &session.AgentID})
	if err != nil {
		return nil, wbErrors.ServiceUnavailable("failed to get agent", err)
	}
	return &store.SessionWithAgent{Session: session, Agent: agent}, nil
}

// UpdateSessionState persists a new state for an existing session and bumps
// its last-active time. On success the in-memory entry is replaced in place,
// keeping its agent reference and list position; ordering is refreshed on the
// next load. On failure the in-memory list is left as-is and the error is
// recorded.
func (w *Workspace) UpdateSessionState(ctx context.Context, uid string, state State) (*store.SessionWithAgent, error) {
	encoded, err := EncodeState(state)
	if err != nil {
		return nil, wbErrors.InvalidArgument("failed to encode session state", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	current := w.findLocked(uid)
	if current == nil {
		session, err := w.store.GetSession(ctx, &store.FindSession{UID: &uid, UserID: &w.userID})
		if err != nil {
			return nil, wbErrors.ServiceUnavailable("failed to get session", err)
		}
		if session == nil {
			return nil, wbErrors.NotFound("session not found", nil)
		}
		current = &store.SessionWithAgent{Session: session}
	}

	now := w.now().Unix()
	updated, err := w.store.UpdateSession(ctx, &store.UpdateSession{
		ID:           current.ID,
		State:        &encoded,
		LastActiveTs: &now,
	})
	if err != nil {
		w.lastErr = "failed to update session"
		return nil, wbErrors.PartialPersistence("failed to persist session state", err)
	}

	withAgent := &store.SessionWithAgent{Session: updated, Agent: current.Agent}
	for i, session := range w.sessions {
		if session.UID == uid {
			w.sessions[i] = withAgent
			break
		}
	}
	w.lastErr = ""
	return withAgent, nil
}

// RenameSession updates a session's title.
func (w *Workspace) RenameSession(ctx context.Context, uid string, title string) (*store.SessionWithAgent, error) {
	if title == "" {
		return nil, wbErrors.InvalidArgument("session title is required", nil)
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	current := w.findLocked(uid)
	if current == nil {
		return nil, wbErrors.NotFound("session not found", nil)
	}
	updated, err := w.store.UpdateSession(ctx, &store.UpdateSession{
		ID:    current.ID,
		Title: &title,
	})
	if err != nil {
		return nil, wbErrors.ServiceUnavailable("failed to rename session", err)
	}
	withAgent := &store.SessionWithAgent{Session: updated, Agent: current.Agent}
	for i, session := range w.sessions {
		if session.UID == uid {
			w.sessions[i] = withAgent
			break
		}
	}
	return withAgent, nil
}

// DeleteSession removes a session and drops it from the in-memory list. The
// workspace does not track an active selection, so callers decide what to
// show next.
func (w *Workspace) DeleteSession(ctx context.Context, uid string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	current := w.findLocked(uid)
	if current == nil {
		session, err := w.store.GetSession(ctx, &store.FindSession{UID: &uid, UserID: &w.userID})
		if err != nil {
			return wbErrors.ServiceUnavailable("failed to get session", err)
		}
		if session == nil {
			return wbErrors.NotFound("session not found", nil)
		}
		current = &store.SessionWithAgent{Session: session}
	}
	if err := w.store.DeleteSession(ctx, &store.DeleteSession{ID: current.ID}); err != nil {
		w.lastErr = "failed to delete session"
		return wbErrors.ServiceUnavailable("failed to delete session", err)
	}
	remaining := w.sessions[:0]
	for _, session := range w.sessions {
		if session.UID != uid {
			remaining = append(remaining, session)
		}
	}
	w.sessions = remaining
	w.lastErr = ""
	return nil
}

func (w *Workspace) findLocked(uid string) *store.SessionWithAgent {
	for _, session := range w.sessions {
		if session.UID == uid {
			return session
		}
	}
	return nil
}

func (w *Workspace) snapshotLocked() []*store.SessionWithAgent {
	out := make([]*store.SessionWithAgent, len(w.sessions))
	copy(out, w.sessions)
	return out
}

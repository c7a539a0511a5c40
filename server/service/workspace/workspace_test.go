package workspace_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weillium/ai-portfolio/server/ai"
	wbErrors "github.com/weillium/ai-portfolio/server/internal/errors"
	"github.com/weillium/ai-portfolio/server/service/workspace"
	"github.com/weillium/ai-portfolio/store"
	storetest "github.com/weillium/ai-portfolio/store/test"
)

func newTestService(t *testing.T, stub *stubCompleter) (*workspace.Service, *store.Store) {
	ctx := context.Background()
	st := storetest.NewTestingStore(ctx, t)
	var completer ai.CompletionService
	if stub != nil {
		completer = stub
	}
	svc := workspace.NewService(st, slog.Default(), completer)
	t.Cleanup(svc.Close)
	return svc, st
}

func createTestAgent(ctx context.Context, t *testing.T, svc *workspace.Service, name string, agentType store.AgentType, config string) *store.Agent {
	agent, err := svc.Registry().CreateAgent(ctx, &workspace.CreateAgentRequest{
		Name:   name,
		Type:   agentType,
		Config: config,
	})
	require.NoError(t, err)
	return agent
}

func TestWorkspaceCreateSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	agent := createTestAgent(ctx, t, svc, "Concierge", store.AgentTypeChat, "")

	ws := svc.Workspace("user-1")
	session, err := ws.CreateSession(ctx, agent)
	require.NoError(t, err)
	require.Equal(t, "Concierge session", session.Title)
	require.JSONEq(t, `{"messages":[]}`, session.State)
	require.NotNil(t, session.Agent)
	require.Equal(t, agent.ID, session.Agent.ID)

	// A second session lands at the front of the list.
	second, err := ws.CreateSession(ctx, agent)
	require.NoError(t, err)
	sessions := ws.Sessions()
	require.Len(t, sessions, 2)
	require.Equal(t, second.UID, sessions[0].UID)
	require.Equal(t, session.UID, sessions[1].UID)
}

func TestWorkspaceSelectAgent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	chatAgent := createTestAgent(ctx, t, svc, "Concierge", store.AgentTypeChat, "")
	formAgent := createTestAgent(ctx, t, svc, "Intake", store.AgentTypeForm, "")

	ws := svc.Workspace("user-1")

	first, err := ws.SelectAgent(ctx, chatAgent)
	require.NoError(t, err)

	// Selecting the same agent again resumes rather than creating.
	resumed, err := ws.SelectAgent(ctx, chatAgent)
	require.NoError(t, err)
	require.Equal(t, first.UID, resumed.UID)
	require.Len(t, ws.Sessions(), 1)

	// A different agent gets its own session.
	other, err := ws.SelectAgent(ctx, formAgent)
	require.NoError(t, err)
	require.NotEqual(t, first.UID, other.UID)
	require.Len(t, ws.Sessions(), 2)

	_, err = ws.SelectAgent(ctx, nil)
	require.Error(t, err)
	require.Equal(t, wbErrors.ErrCodeInvalidArgument, wbErrors.CodeOf(err))
}

func TestWorkspaceSelectAgentConcurrent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	agent := createTestAgent(ctx, t, svc, "Concierge", store.AgentTypeChat, "")

	ws := svc.Workspace("user-1")

	const n = 8
	uids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session, err := ws.SelectAgent(ctx, agent)
			if err == nil {
				uids[i] = session.UID
			}
		}(i)
	}
	wg.Wait()

	for _, uid := range uids {
		require.Equal(t, uids[0], uid)
	}
	require.Len(t, ws.Sessions(), 1)
}

func TestWorkspaceUpdateSessionState(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, nil)
	agent := createTestAgent(ctx, t, svc, "Concierge", store.AgentTypeChat, "")

	ws := svc.Workspace("user-1")
	session, err := ws.CreateSession(ctx, agent)
	require.NoError(t, err)

	next := &workspace.ChatState{Messages: []workspace.ChatMessage{
		{ID: "m1", Role: "user", Content: "hello", CreatedAt: "2026-01-01T00:00:00Z"},
	}}
	updated, err := ws.UpdateSessionState(ctx, session.UID, next)
	require.NoError(t, err)
	require.NotNil(t, updated.Agent, "agent reference survives a state update")
	require.Contains(t, updated.State, "hello")

	stored, err := st.GetSession(ctx, &store.FindSession{UID: &session.UID})
	require.NoError(t, err)
	require.JSONEq(t, updated.State, stored.State)

	_, err = ws.UpdateSessionState(ctx, "missing-session", next)
	require.Error(t, err)
	require.Equal(t, wbErrors.ErrCodeNotFound, wbErrors.CodeOf(err))
}

// Two writers racing on the same session both succeed and the later write
// wins wholesale. The transcript from the first write is gone afterwards;
// this documents the behavior rather than endorsing it.
func TestWorkspaceUpdateLastWriteWins(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	agent := createTestAgent(ctx, t, svc, "Concierge", store.AgentTypeChat, "")

	ws := svc.Workspace("user-1")
	session, err := ws.CreateSession(ctx, agent)
	require.NoError(t, err)

	// Both writers derived their state from the same empty transcript.
	fromTabA := &workspace.ChatState{Messages: []workspace.ChatMessage{{ID: "a", Role: "user", Content: "from tab A"}}}
	fromTabB := &workspace.ChatState{Messages: []workspace.ChatMessage{{ID: "b", Role: "user", Content: "from tab B"}}}

	_, err = ws.UpdateSessionState(ctx, session.UID, fromTabA)
	require.NoError(t, err)
	final, err := ws.UpdateSessionState(ctx, session.UID, fromTabB)
	require.NoError(t, err)

	require.Contains(t, final.State, "from tab B")
	require.NotContains(t, final.State, "from tab A")
}

func TestWorkspaceDeleteSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	agent := createTestAgent(ctx, t, svc, "Concierge", store.AgentTypeChat, "")

	ws := svc.Workspace("user-1")
	first, err := ws.CreateSession(ctx, agent)
	require.NoError(t, err)
	second, err := ws.CreateSession(ctx, agent)
	require.NoError(t, err)

	require.NoError(t, ws.DeleteSession(ctx, first.UID))
	sessions := ws.Sessions()
	require.Len(t, sessions, 1)
	require.Equal(t, second.UID, sessions[0].UID)

	err = ws.DeleteSession(ctx, first.UID)
	require.Error(t, err)
	require.Equal(t, wbErrors.ErrCodeNotFound, wbErrors.CodeOf(err))
}

func TestWorkspaceLoadSessions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	agent := createTestAgent(ctx, t, svc, "Concierge", store.AgentTypeChat, "")

	ws := svc.Workspace("user-1")
	_, err := ws.LoadSessions(ctx)
	require.NoError(t, err)
	require.Empty(t, ws.Sessions())

	session, err := ws.CreateSession(ctx, agent)
	require.NoError(t, err)

	// A fresh workspace instance for the same user sees the session after
	// loading, with agent metadata joined in.
	other := svc.Workspace("user-1")
	require.Same(t, ws, other)

	loaded, err := ws.LoadSessions(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, session.UID, loaded[0].UID)
	require.NotNil(t, loaded[0].Agent)
	require.Equal(t, "Concierge", loaded[0].Agent.Name)

	// Sessions are scoped per user.
	stranger := svc.Workspace("user-2")
	strangerSessions, err := stranger.LoadSessions(ctx)
	require.NoError(t, err)
	require.Empty(t, strangerSessions)
}

func TestWorkspaceRenameSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	agent := createTestAgent(ctx, t, svc, "Concierge", store.AgentTypeChat, "")

	ws := svc.Workspace("user-1")
	session, err := ws.CreateSession(ctx, agent)
	require.NoError(t, err)

	renamed, err := ws.RenameSession(ctx, session.UID, "Trip planning")
	require.NoError(t, err)
	require.Equal(t, "Trip planning", renamed.Title)

	_, err = ws.RenameSession(ctx, session.UID, "")
	require.Error(t, err)
	require.Equal(t, wbErrors.ErrCodeInvalidArgument, wbErrors.CodeOf(err))
}

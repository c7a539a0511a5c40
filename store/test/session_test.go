package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weillium/ai-portfolio/store"
)

func createTestingAgent(ctx context.Context, t *testing.T, ts *store.Store, uid string, agentType store.AgentType) *store.Agent {
	agent, err := ts.CreateAgent(ctx, &store.Agent{
		UID:    uid,
		Name:   "Agent " + uid,
		Type:   agentType,
		Config: "{}",
	})
	require.NoError(t, err)
	return agent
}

func TestAgentStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	first := createTestingAgent(ctx, t, ts, "a-first", store.AgentTypeChat)
	second, err := ts.CreateAgent(ctx, &store.Agent{
		UID:         "a-second",
		Name:        "Helper",
		Description: "answers questions",
		Type:        store.AgentTypeForm,
		Icon:        "sparkles",
		Config:      `{"fields":[{"name":"email"}]}`,
		CreatedTs:   first.CreatedTs + 10,
	})
	require.NoError(t, err)

	t.Run("list preserves creation order", func(t *testing.T) {
		agents, err := ts.ListAgents(ctx, nil)
		require.NoError(t, err)
		require.Len(t, agents, 2)
		assert.Equal(t, first.UID, agents[0].UID)
		assert.Equal(t, second.UID, agents[1].UID)
	})

	t.Run("update", func(t *testing.T) {
		name := "Renamed"
		updated, err := ts.UpdateAgent(ctx, &store.UpdateAgent{ID: second.ID, Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, second.Config, updated.Config)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, ts.DeleteAgent(ctx, &store.DeleteAgent{ID: first.ID}))
		agents, err := ts.ListAgents(ctx, nil)
		require.NoError(t, err)
		require.Len(t, agents, 1)
		assert.Equal(t, second.UID, agents[0].UID)
	})
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	agent := createTestingAgent(ctx, t, ts, "a1", store.AgentTypeChat)
	now := time.Now().Unix()

	created, err := ts.CreateSession(ctx, &store.Session{
		UID:          "s1",
		UserID:       "u1",
		AgentID:      agent.ID,
		Title:        "Agent a1 session",
		State:        `{"messages":[]}`,
		LastActiveTs: now,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.NotZero(t, created.CreatedTs)

	t.Run("update state round-trips", func(t *testing.T) {
		state := `{"messages":[{"role":"user","content":"hello"}]}`
		ts2 := now + 5
		updated, err := ts.UpdateSession(ctx, &store.UpdateSession{
			ID:           created.ID,
			State:        &state,
			LastActiveTs: &ts2,
		})
		require.NoError(t, err)
		assert.Equal(t, state, updated.State)
		assert.Equal(t, ts2, updated.LastActiveTs)
		assert.Equal(t, created.CreatedTs, updated.CreatedTs)

		userID := "u1"
		listed, err := ts.ListSessions(ctx, &store.FindSession{UserID: &userID})
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, state, listed[0].State)
	})

	t.Run("list orders by last_active_ts descending", func(t *testing.T) {
		other := createTestingAgent(ctx, t, ts, "a2", store.AgentTypeWorkflow)
		_, err := ts.CreateSession(ctx, &store.Session{
			UID:          "s2",
			UserID:       "u1",
			AgentID:      other.ID,
			Title:        "Agent a2 session",
			State:        `{"nodes":[],"edges":[]}`,
			LastActiveTs: now + 100,
		})
		require.NoError(t, err)

		userID := "u1"
		listed, err := ts.ListSessions(ctx, &store.FindSession{UserID: &userID})
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, "s2", listed[0].UID)
		assert.Equal(t, "s1", listed[1].UID)
	})

	t.Run("list scopes by user", func(t *testing.T) {
		otherUser := "u2"
		listed, err := ts.ListSessions(ctx, &store.FindSession{UserID: &otherUser})
		require.NoError(t, err)
		assert.Empty(t, listed)
	})

	t.Run("workspace listing joins agents", func(t *testing.T) {
		listed, err := ts.ListWorkspaceSessions(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, listed, 2)
		require.NotNil(t, listed[1].Agent)
		assert.Equal(t, "a1", listed[1].Agent.UID)
	})

	t.Run("delete leaves other sessions untouched", func(t *testing.T) {
		userID := "u1"
		before, err := ts.ListSessions(ctx, &store.FindSession{UserID: &userID})
		require.NoError(t, err)
		require.Len(t, before, 2)
		surviving := before[0]

		require.NoError(t, ts.DeleteSession(ctx, &store.DeleteSession{ID: before[1].ID}))

		after, err := ts.ListSessions(ctx, &store.FindSession{UserID: &userID})
		require.NoError(t, err)
		require.Len(t, after, 1)
		assert.Equal(t, surviving.UID, after[0].UID)
		assert.Equal(t, surviving.State, after[0].State)
		assert.Equal(t, surviving.LastActiveTs, after[0].LastActiveTs)
	})
}

func TestAgentRunStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	agent := createTestingAgent(ctx, t, ts, "a1", store.AgentTypeChat)
	session, err := ts.CreateSession(ctx, &store.Session{
		UID:          "s1",
		UserID:       "u1",
		AgentID:      agent.ID,
		Title:        "Agent a1 session",
		State:        `{"messages":[]}`,
		LastActiveTs: time.Now().Unix(),
	})
	require.NoError(t, err)

	tokens := int32(42)
	cost := 42 * 0.000002
	run, err := ts.CreateAgentRun(ctx, &store.AgentRun{
		SessionID:    session.ID,
		AgentID:      agent.ID,
		UserID:       "u1",
		Input:        `{"messages":[{"role":"user","content":"hello"}]}`,
		Output:       `{"message":"hi"}`,
		TokensUsed:   &tokens,
		CostEstimate: &cost,
	})
	require.NoError(t, err)
	require.NotZero(t, run.ID)

	// A run without metrics keeps NULL columns.
	_, err = ts.CreateAgentRun(ctx, &store.AgentRun{
		SessionID: session.ID,
		AgentID:   agent.ID,
		UserID:    "u1",
		Input:     `{"values":{}}`,
		Output:    `{"result":{"status":"saved"}}`,
	})
	require.NoError(t, err)

	runs, err := ts.ListAgentRuns(ctx, &store.FindAgentRun{SessionID: &session.ID})
	require.NoError(t, err)
	require.Len(t, runs, 2)

	var withMetrics *store.AgentRun
	for _, r := range runs {
		if r.TokensUsed != nil {
			withMetrics = r
		}
	}
	require.NotNil(t, withMetrics)
	assert.Equal(t, tokens, *withMetrics.TokensUsed)
	assert.InDelta(t, cost, *withMetrics.CostEstimate, 1e-12)
}

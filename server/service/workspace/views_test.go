package workspace_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/weillium/ai-portfolio/server/ai"
	wbErrors "github.com/weillium/ai-portfolio/server/internal/errors"
	"github.com/weillium/ai-portfolio/server/service/workspace"
	"github.com/weillium/ai-portfolio/store"
)

type stubCompleter struct {
	response string
	err      error
	calls    int
	lastSys  string
	lastMsgs []ai.Message
}

func (s *stubCompleter) Complete(ctx context.Context, systemPrompt string, messages []ai.Message) (*ai.Completion, error) {
	s.calls++
	s.lastSys = systemPrompt
	s.lastMsgs = messages
	if s.err != nil {
		return nil, s.err
	}
	return &ai.Completion{
		Content:      s.response,
		TotalTokens:  42,
		CostEstimate: 42 * 0.000002,
	}, nil
}

func TestChatViewHandleInput(t *testing.T) {
	ctx := context.Background()
	completer := &stubCompleter{response: "Hi! How can I help?"}
	svc, st := newTestService(t, completer)
	agent := createTestAgent(ctx, t, svc, "Concierge", store.AgentTypeChat, `{"system_prompt":"be helpful"}`)

	ws := svc.Workspace("user-1")
	session, err := ws.CreateSession(ctx, agent)
	require.NoError(t, err)

	result, err := svc.HandleSessionInput(ctx, nil, "user-1", session.UID, &workspace.InputRequest{
		Type:    "message",
		Content: "hello there",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Reply)
	require.Equal(t, "assistant", result.Reply.Role)
	require.Equal(t, "Hi! How can I help?", result.Reply.Content)

	chat, ok := result.State.(*workspace.ChatState)
	require.True(t, ok)
	require.Len(t, chat.Messages, 2)
	require.Equal(t, "user", chat.Messages[0].Role)
	require.Equal(t, "hello there", chat.Messages[0].Content)

	// The provider saw the system prompt and the full history.
	require.Equal(t, "be helpful", completer.lastSys)
	require.Len(t, completer.lastMsgs, 1)

	// Both turns made it to storage.
	stored, err := st.GetSession(ctx, &store.FindSession{UID: &session.UID})
	require.NoError(t, err)
	require.Contains(t, stored.State, "hello there")
	require.Contains(t, stored.State, "Hi! How can I help?")

	// The audit record lands asynchronously.
	svc.Close()
	runs, err := st.ListAgentRuns(ctx, &store.FindAgentRun{SessionID: &session.ID})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].TokensUsed)
	require.EqualValues(t, 42, *runs[0].TokensUsed)
	require.NotNil(t, runs[0].CostEstimate)
	require.InDelta(t, 42*0.000002, *runs[0].CostEstimate, 1e-9)
}

func TestChatViewCompletionFailureKeepsUserMessage(t *testing.T) {
	ctx := context.Background()
	completer := &stubCompleter{err: errors.New("upstream down")}
	svc, st := newTestService(t, completer)
	agent := createTestAgent(ctx, t, svc, "Concierge", store.AgentTypeChat, "")

	ws := svc.Workspace("user-1")
	session, err := ws.CreateSession(ctx, agent)
	require.NoError(t, err)

	_, err = svc.HandleSessionInput(ctx, nil, "user-1", session.UID, &workspace.InputRequest{
		Type:    "message",
		Content: "are you there?",
	})
	require.Error(t, err)
	require.Equal(t, wbErrors.ErrCodeLLMUnavailable, wbErrors.CodeOf(err))

	stored, err := st.GetSession(ctx, &store.FindSession{UID: &session.UID})
	require.NoError(t, err)
	require.Contains(t, stored.State, "are you there?", "the user message is persisted before the provider call")
}

func TestChatViewRejectsEmptyMessage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &stubCompleter{response: "ok"})
	agent := createTestAgent(ctx, t, svc, "Concierge", store.AgentTypeChat, "")

	ws := svc.Workspace("user-1")
	session, err := ws.CreateSession(ctx, agent)
	require.NoError(t, err)

	_, err = svc.HandleSessionInput(ctx, nil, "user-1", session.UID, &workspace.InputRequest{Type: "message"})
	require.Error(t, err)
	require.Equal(t, wbErrors.ErrCodeInvalidArgument, wbErrors.CodeOf(err))
}

func TestFormViewSetFieldAndSubmit(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, nil)
	config := `{"fields":[{"name":"city","label":"City","required":true},{"name":"notes","label":"Notes"}],"submitFunction":"save-to-crm"}`
	agent := createTestAgent(ctx, t, svc, "Intake", store.AgentTypeForm, config)

	var hookRequest *workspace.SubmitRequest
	svc.Hooks().Register("save-to-crm", func(ctx context.Context, request *workspace.SubmitRequest) (map[string]any, error) {
		hookRequest = request
		return map[string]any{"crm_id": "crm-123"}, nil
	})

	ws := svc.Workspace("user-1")
	session, err := ws.CreateSession(ctx, agent)
	require.NoError(t, err)

	// Each field change persists on its own.
	result, err := svc.HandleSessionInput(ctx, nil, "user-1", session.UID, &workspace.InputRequest{
		Type:  "set_field",
		Field: "city",
		Value: "Seattle",
	})
	require.NoError(t, err)
	form, ok := result.State.(*workspace.FormState)
	require.True(t, ok)
	require.Equal(t, "Seattle", form.Values["city"])

	stored, err := st.GetSession(ctx, &store.FindSession{UID: &session.UID})
	require.NoError(t, err)
	require.Contains(t, stored.State, "Seattle")

	result, err = svc.HandleSessionInput(ctx, nil, "user-1", session.UID, &workspace.InputRequest{Type: "submit"})
	require.NoError(t, err)
	require.Equal(t, "Form submitted successfully.", result.Status)
	require.NotNil(t, hookRequest)
	require.Equal(t, "user-1", hookRequest.UserID)
	require.Equal(t, "Seattle", hookRequest.Payload["city"])

	svc.Close()
	runs, err := st.ListAgentRuns(ctx, &store.FindAgentRun{SessionID: &session.ID})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Contains(t, runs[0].Output, "crm-123")
	require.Nil(t, runs[0].TokensUsed)
}

func TestFormViewSubmitValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	config := `{"fields":[{"name":"city","required":true}],"submitFunction":"unregistered-hook"}`
	agent := createTestAgent(ctx, t, svc, "Intake", store.AgentTypeForm, config)

	ws := svc.Workspace("user-1")
	session, err := ws.CreateSession(ctx, agent)
	require.NoError(t, err)

	// Required field still empty.
	_, err = svc.HandleSessionInput(ctx, nil, "user-1", session.UID, &workspace.InputRequest{Type: "submit"})
	require.Error(t, err)
	require.Equal(t, wbErrors.ErrCodeInvalidArgument, wbErrors.CodeOf(err))

	// Field present but the named hook is not registered.
	_, err = svc.HandleSessionInput(ctx, nil, "user-1", session.UID, &workspace.InputRequest{
		Type:    "submit",
		Payload: map[string]any{"city": "Seattle"},
	})
	require.Error(t, err)
	require.Equal(t, wbErrors.ErrCodeNotFound, wbErrors.CodeOf(err))
}

func TestFormViewSubmitWithoutHook(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, nil)
	agent := createTestAgent(ctx, t, svc, "Survey", store.AgentTypeForm, `{"fields":[{"name":"notes"}]}`)

	ws := svc.Workspace("user-1")
	session, err := ws.CreateSession(ctx, agent)
	require.NoError(t, err)

	result, err := svc.HandleSessionInput(ctx, nil, "user-1", session.UID, &workspace.InputRequest{Type: "submit"})
	require.NoError(t, err)
	require.Equal(t, "Form submitted successfully.", result.Status)

	svc.Close()
	runs, err := st.ListAgentRuns(ctx, &store.FindAgentRun{SessionID: &session.ID})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Contains(t, runs[0].Output, "saved")
}

func TestWorkflowViewAddNode(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, nil)
	agent := createTestAgent(ctx, t, svc, "Pipeline", store.AgentTypeWorkflow, "")

	ws := svc.Workspace("user-1")
	session, err := ws.CreateSession(ctx, agent)
	require.NoError(t, err)

	result, err := svc.HandleSessionInput(ctx, nil, "user-1", session.UID, &workspace.InputRequest{Type: "add_node"})
	require.NoError(t, err)
	workflow, ok := result.State.(*workspace.WorkflowState)
	require.True(t, ok)
	require.Len(t, workflow.Nodes, 1)
	require.Equal(t, "Step 1", workflow.Nodes[0].Label)
	require.NotEmpty(t, workflow.Nodes[0].ID)

	result, err = svc.HandleSessionInput(ctx, nil, "user-1", session.UID, &workspace.InputRequest{Type: "add_node"})
	require.NoError(t, err)
	workflow = result.State.(*workspace.WorkflowState)
	require.Len(t, workflow.Nodes, 2)
	require.Equal(t, "Step 2", workflow.Nodes[1].Label)

	stored, err := st.GetSession(ctx, &store.FindSession{UID: &session.UID})
	require.NoError(t, err)
	require.Contains(t, stored.State, "Step 2")
}

func TestCustomViewDispatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	t.Run("built-in weather component", func(t *testing.T) {
		agent := createTestAgent(ctx, t, svc, "Weather", store.AgentTypeCustom, `{"component":"WeatherVisualizer"}`)
		ws := svc.Workspace("user-1")
		session, err := ws.CreateSession(ctx, agent)
		require.NoError(t, err)

		result, err := svc.HandleSessionInput(ctx, nil, "user-1", session.UID, &workspace.InputRequest{
			Type:  "set_location",
			Value: "Portland, OR",
		})
		require.NoError(t, err)
		custom, ok := result.State.(workspace.CustomState)
		require.True(t, ok)
		weather, ok := custom["weather"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, "Portland, OR", weather["location"])

		result, err = svc.HandleSessionInput(ctx, nil, "user-1", session.UID, &workspace.InputRequest{Type: "refresh"})
		require.NoError(t, err)
		custom = result.State.(workspace.CustomState)
		weather = custom["weather"].(map[string]any)
		require.Equal(t, "Portland, OR", weather["location"])
		require.Contains(t, weather, "temperature")
		require.Contains(t, weather, "condition")
	})

	t.Run("unknown component reports not found", func(t *testing.T) {
		agent := createTestAgent(ctx, t, svc, "Mystery", store.AgentTypeCustom, `{"component":"DoesNotExist"}`)
		ws := svc.Workspace("user-2")
		session, err := ws.CreateSession(ctx, agent)
		require.NoError(t, err)

		_, err = svc.HandleSessionInput(ctx, nil, "user-2", session.UID, &workspace.InputRequest{Type: "refresh"})
		require.Error(t, err)
		require.Equal(t, wbErrors.ErrCodeNotFound, wbErrors.CodeOf(err))
	})

	t.Run("registered component receives inputs", func(t *testing.T) {
		svc.Components().Register("Counter", &countingComponent{})
		agent := createTestAgent(ctx, t, svc, "Counter", store.AgentTypeCustom, `{"component":"Counter"}`)
		ws := svc.Workspace("user-3")
		session, err := ws.CreateSession(ctx, agent)
		require.NoError(t, err)

		result, err := svc.HandleSessionInput(ctx, nil, "user-3", session.UID, &workspace.InputRequest{Type: "increment"})
		require.NoError(t, err)
		custom := result.State.(workspace.CustomState)
		require.EqualValues(t, 1, custom["count"])
	})
}

type countingComponent struct{}

func (c *countingComponent) HandleInput(ctx context.Context, env *workspace.ViewEnv, state workspace.CustomState, input *workspace.InputRequest) (*workspace.InputResult, error) {
	count, _ := state["count"].(float64)
	state["count"] = int(count) + 1
	session, err := env.Persist(ctx, state)
	if err != nil {
		return nil, err
	}
	return &workspace.InputResult{Session: session, State: state}, nil
}

func TestRunLoggerWritesRecords(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, nil)
	agent := createTestAgent(ctx, t, svc, "Concierge", store.AgentTypeChat, "")

	ws := svc.Workspace("user-1")
	session, err := ws.CreateSession(ctx, agent)
	require.NoError(t, err)

	tokens := int32(7)
	cost := 7 * 0.000002
	svc.Runs().Log(&workspace.RunRecord{
		SessionID:    session.ID,
		AgentID:      agent.ID,
		UserID:       "user-1",
		Input:        map[string]any{"message": "ping"},
		Output:       map[string]any{"message": "pong"},
		TokensUsed:   &tokens,
		CostEstimate: &cost,
	})
	svc.Close()

	runs, err := st.ListAgentRuns(ctx, &store.FindAgentRun{SessionID: &session.ID})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Contains(t, runs[0].Input, "ping")
	require.Contains(t, runs[0].Output, "pong")
}

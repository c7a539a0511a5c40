package workspace

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	wbErrors "github.com/weillium/ai-portfolio/server/internal/errors"
)

// workflowView is a placeholder step builder. Nodes are appended with
// sequential labels; edges are carried through untouched so a future graph
// editor can take over the same state shape.
type workflowView struct{}

func (v *workflowView) HandleInput(ctx context.Context, env *ViewEnv, input *InputRequest) (*InputResult, error) {
	if input.Type != "add_node" {
		return nil, wbErrors.InvalidArgument("unsupported workflow input type", nil)
	}

	state, err := DecodeState(env.Agent.Type, env.Session.State)
	if err != nil {
		return nil, wbErrors.InvalidArgument("failed to decode workflow state", err)
	}
	workflow, ok := state.(*WorkflowState)
	if !ok {
		return nil, wbErrors.InvalidArgument("session state is not a workflow", nil)
	}

	label := input.Content
	if label == "" {
		label = fmt.Sprintf("Step %d", len(workflow.Nodes)+1)
	}
	workflow.Nodes = append(workflow.Nodes, WorkflowNode{
		ID:          uuid.NewString(),
		Label:       label,
		Description: "Describe this step…",
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	})

	session, err := env.Persist(ctx, workflow)
	if err != nil {
		return nil, err
	}
	return &InputResult{Session: session, State: workflow}, nil
}

package workspace

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/weillium/ai-portfolio/store"
)

// State is the typed session state carried by each agent view. Values are
// serialized to JSON only at the store boundary, via EncodeState and
// DecodeState.
type State interface {
	Kind() store.AgentType
}

// ChatMessage is one turn of a chat transcript.
type ChatMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type ChatState struct {
	Messages []ChatMessage `json:"messages"`
}

func (*ChatState) Kind() store.AgentType { return store.AgentTypeChat }

type FormState struct {
	Values map[string]any `json:"values"`
}

func (*FormState) Kind() store.AgentType { return store.AgentTypeForm }

type WorkflowNode struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

type WorkflowEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type WorkflowState struct {
	Nodes []WorkflowNode `json:"nodes"`
	Edges []WorkflowEdge `json:"edges"`
}

func (*WorkflowState) Kind() store.AgentType { return store.AgentTypeWorkflow }

// CustomState is schemaless. Component behaviors read and write whatever keys
// they need.
type CustomState map[string]any

func (CustomState) Kind() store.AgentType { return store.AgentTypeCustom }

// FormFieldOption is one choice of a select field.
type FormFieldOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type FormField struct {
	Name         string            `json:"name"`
	Label        string            `json:"label"`
	Type         string            `json:"type"`
	Placeholder  string            `json:"placeholder,omitempty"`
	HelperText   string            `json:"helperText,omitempty"`
	Required     bool              `json:"required,omitempty"`
	DefaultValue string            `json:"defaultValue,omitempty"`
	Options      []FormFieldOption `json:"options,omitempty"`
}

// AgentConfig is the per-agent configuration blob. Only the keys a given view
// cares about are ever set; everything else stays at its zero value.
type AgentConfig struct {
	SystemPrompt   string      `json:"system_prompt,omitempty"`
	Fields         []FormField `json:"fields,omitempty"`
	Component      string      `json:"component,omitempty"`
	SubmitFunction string      `json:"submitFunction,omitempty"`
	SubmitLabel    string      `json:"submitLabel,omitempty"`
}

// ParseAgentConfig decodes an agent's stored config. An empty blob yields a
// zero config rather than an error so agents created without configuration
// still dispatch.
func ParseAgentConfig(raw string) (*AgentConfig, error) {
	config := &AgentConfig{}
	if raw == "" || raw == "{}" {
		return config, nil
	}
	if err := json.Unmarshal([]byte(raw), config); err != nil {
		return nil, errors.Wrap(err, "failed to decode agent config")
	}
	return config, nil
}

// DefaultState builds the initial state for a fresh session. It is total over
// agent types: anything unrecognized gets the schemaless custom shape.
func DefaultState(agentType store.AgentType, config *AgentConfig) State {
	switch agentType {
	case store.AgentTypeChat:
		return &ChatState{Messages: []ChatMessage{}}
	case store.AgentTypeForm:
		values := map[string]any{}
		if config != nil {
			for _, field := range config.Fields {
				values[field.Name] = field.DefaultValue
			}
		}
		return &FormState{Values: values}
	case store.AgentTypeWorkflow:
		return &WorkflowState{Nodes: []WorkflowNode{}, Edges: []WorkflowEdge{}}
	default:
		return CustomState{}
	}
}

// EncodeState serializes a state value for storage.
func EncodeState(state State) (string, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode session state")
	}
	return string(raw), nil
}

// DecodeState deserializes a stored state blob into the concrete shape for the
// given agent type. An empty blob decodes to the type's default state.
func DecodeState(agentType store.AgentType, raw string) (State, error) {
	if raw == "" {
		return DefaultState(agentType, nil), nil
	}
	var state State
	switch agentType {
	case store.AgentTypeChat:
		state = &ChatState{}
	case store.AgentTypeForm:
		state = &FormState{}
	case store.AgentTypeWorkflow:
		state = &WorkflowState{}
	default:
		custom := CustomState{}
		if err := json.Unmarshal([]byte(raw), &custom); err != nil {
			return nil, errors.Wrap(err, "failed to decode session state")
		}
		return custom, nil
	}
	if err := json.Unmarshal([]byte(raw), state); err != nil {
		return nil, errors.Wrap(err, "failed to decode session state")
	}
	normalizeState(state)
	return state, nil
}

// normalizeState backfills nil collections so view behaviors can append
// without nil checks.
func normalizeState(state State) {
	switch s := state.(type) {
	case *ChatState:
		if s.Messages == nil {
			s.Messages = []ChatMessage{}
		}
	case *FormState:
		if s.Values == nil {
			s.Values = map[string]any{}
		}
	case *WorkflowState:
		if s.Nodes == nil {
			s.Nodes = []WorkflowNode{}
		}
		if s.Edges == nil {
			s.Edges = []WorkflowEdge{}
		}
	}
}

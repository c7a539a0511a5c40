package store

// AgentType is the closed set of agent kinds the workbench dispatches on.
type AgentType string

const (
	AgentTypeChat     AgentType = "chat"
	AgentTypeForm     AgentType = "form"
	AgentTypeWorkflow AgentType = "workflow"
	AgentTypeCustom   AgentType = "custom"
)

// Agent is a named, typed template describing one interactive capability.
// Agents are created and edited by the host; the session layer treats them
// as immutable.
type Agent struct {
	ID          int32
	UID         string
	Name        string
	Description string
	Type        AgentType
	Icon        string
	Config      string // JSON, interpreted only by the matching view behavior
	CreatedTs   int64
}

type FindAgent struct {
	ID   *int32
	UID  *string
	Type *AgentType
}

type UpdateAgent struct {
	ID          int32
	Name        *string
	Description *string
	Type        *AgentType
	Icon        *string
	Config      *string
}

type DeleteAgent struct {
	ID int32
}

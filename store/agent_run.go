package store

// AgentRun is one interaction cycle's audit record. Append-only; the
// workbench core writes these and never reads them back. List exists for
// external consumers.
type AgentRun struct {
	ID           int32
	SessionID    int32
	AgentID      int32
	UserID       string
	Input        string // JSON
	Output       string // JSON
	TokensUsed   *int32
	CostEstimate *float64
	CreatedTs    int64
}

type FindAgentRun struct {
	SessionID *int32
	AgentID   *int32
	UserID    *string
	Limit     *int
}

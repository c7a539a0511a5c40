package store

// Session is a per-user instantiation of one agent. State is the sole mutable
// payload; its JSON shape is owned by the agent type's view behavior and is
// opaque to the store.
type Session struct {
	ID           int32
	UID          string
	UserID       string
	AgentID      int32
	Title        string
	State        string // JSON
	CreatedTs    int64
	LastActiveTs int64
}

// SessionWithAgent is a session joined with its agent for workspace listings.
type SessionWithAgent struct {
	*Session
	Agent *Agent
}

type FindSession struct {
	ID      *int32
	UID     *string
	UserID  *string
	AgentID *int32
	Limit   *int
}

// UpdateSession writes state mutations. Every state write also bumps
// last_active_ts.
type UpdateSession struct {
	ID           int32
	Title        *string
	State        *string
	LastActiveTs *int64
}

type DeleteSession struct {
	ID int32
}

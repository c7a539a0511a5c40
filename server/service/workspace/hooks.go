package workspace

import (
	"context"
	"sync"
)

// SubmitRequest is the payload handed to a form submit hook.
type SubmitRequest struct {
	AgentID   int32          `json:"agentId"`
	SessionID int32          `json:"sessionId"`
	UserID    string         `json:"userId"`
	Payload   map[string]any `json:"payload"`
}

// SubmitHook processes a submitted form and returns an arbitrary result
// recorded in the run audit.
type SubmitHook func(ctx context.Context, request *SubmitRequest) (map[string]any, error)

// HookRegistry maps the submit function names referenced by form agent
// configs to in-process hooks.
type HookRegistry struct {
	mu    sync.RWMutex
	hooks map[string]SubmitHook
}

func NewHookRegistry() *HookRegistry {
	return &HookRegistry{hooks: make(map[string]SubmitHook)}
}

func (r *HookRegistry) Register(name string, hook SubmitHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[name] = hook
}

func (r *HookRegistry) Resolve(name string) (SubmitHook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hook, ok := r.hooks[name]
	return hook, ok
}

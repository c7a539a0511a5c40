package store

import (
	"context"
	"time"

	"github.com/weillium/ai-portfolio/internal/profile"
	"github.com/weillium/ai-portfolio/store/cache"
)

const agentListCacheKey = "agents"

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// agentCache holds the full registry listing; agents are read on every
	// workspace load and mutated rarely.
	agentCache *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
	}

	return &Store{
		driver:     driver,
		profile:    profile,
		agentCache: cache.New(cacheConfig),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.agentCache.Close()
	return s.driver.Close()
}

func (s *Store) CreateAgent(ctx context.Context, create *Agent) (*Agent, error) {
	agent, err := s.driver.CreateAgent(ctx, create)
	if err != nil {
		return nil, err
	}
	s.agentCache.Delete(ctx, agentListCacheKey)
	return agent, nil
}

// ListAgents returns the registry in creation order (oldest first).
func (s *Store) ListAgents(ctx context.Context, find *FindAgent) ([]*Agent, error) {
	// Only the unfiltered listing is cached.
	cacheable := find == nil || (find.ID == nil && find.UID == nil && find.Type == nil)
	if cacheable {
		if cached, ok := s.agentCache.Get(ctx, agentListCacheKey); ok {
			return cached.([]*Agent), nil
		}
	}

	agents, err := s.driver.ListAgents(ctx, find)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.agentCache.Set(ctx, agentListCacheKey, agents)
	}
	return agents, nil
}

// GetAgent returns the single agent matching find, or nil when absent.
func (s *Store) GetAgent(ctx context.Context, find *FindAgent) (*Agent, error) {
	agents, err := s.driver.ListAgents(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return nil, nil
	}
	return agents[0], nil
}

func (s *Store) UpdateAgent(ctx context.Context, update *UpdateAgent) (*Agent, error) {
	agent, err := s.driver.UpdateAgent(ctx, update)
	if err != nil {
		return nil, err
	}
	s.agentCache.Delete(ctx, agentListCacheKey)
	return agent, nil
}

func (s *Store) DeleteAgent(ctx context.Context, delete *DeleteAgent) error {
	if err := s.driver.DeleteAgent(ctx, delete); err != nil {
		return err
	}
	s.agentCache.Delete(ctx, agentListCacheKey)
	return nil
}

func (s *Store) CreateSession(ctx context.Context, create *Session) (*Session, error) {
	return s.driver.CreateSession(ctx, create)
}

// ListSessions returns sessions ordered by last_active_ts descending.
func (s *Store) ListSessions(ctx context.Context, find *FindSession) ([]*Session, error) {
	return s.driver.ListSessions(ctx, find)
}

// GetSession returns the single session matching find, or nil when absent.
func (s *Store) GetSession(ctx context.Context, find *FindSession) (*Session, error) {
	sessions, err := s.driver.ListSessions(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return sessions[0], nil
}

func (s *Store) UpdateSession(ctx context.Context, update *UpdateSession) (*Session, error) {
	return s.driver.UpdateSession(ctx, update)
}

func (s *Store) DeleteSession(ctx context.Context, delete *DeleteSession) error {
	return s.driver.DeleteSession(ctx, delete)
}

// ListWorkspaceSessions returns a user's sessions joined with their agents,
// most recently active first. Sessions whose agent row has been deleted keep
// a nil Agent; the dispatcher treats those as custom.
func (s *Store) ListWorkspaceSessions(ctx context.Context, userID string) ([]*SessionWithAgent, error) {
	sessions, err := s.driver.ListSessions(ctx, &FindSession{UserID: &userID})
	if err != nil {
		return nil, err
	}

	agents, err := s.ListAgents(ctx, nil)
	if err != nil {
		return nil, err
	}
	byID := make(map[int32]*Agent, len(agents))
	for _, agent := range agents {
		byID[agent.ID] = agent
	}

	list := make([]*SessionWithAgent, 0, len(sessions))
	for _, session := range sessions {
		list = append(list, &SessionWithAgent{
			Session: session,
			Agent:   byID[session.AgentID],
		})
	}
	return list, nil
}

func (s *Store) CreateAgentRun(ctx context.Context, create *AgentRun) (*AgentRun, error) {
	return s.driver.CreateAgentRun(ctx, create)
}

func (s *Store) ListAgentRuns(ctx context.Context, find *FindAgentRun) ([]*AgentRun, error) {
	return s.driver.ListAgentRuns(ctx, find)
}

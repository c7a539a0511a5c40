package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/weillium/ai-portfolio/internal/profile"
	"github.com/weillium/ai-portfolio/server/ai"
	"github.com/weillium/ai-portfolio/server/service/workspace"
	"github.com/weillium/ai-portfolio/store"
	"github.com/weillium/ai-portfolio/store/db"
)

// Smoke test for the workbench core: wires a store and a completion provider
// directly, registers a chat agent, and runs one message round trip without
// going through HTTP.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	message := flag.String("message", "Say hello in one short sentence.", "chat message to send")
	flag.Parse()

	p := &profile.Profile{Mode: "dev", Driver: "sqlite"}
	p.FromEnv()
	if err := p.Validate(); err != nil {
		log.Fatalf("invalid profile: %v", err)
	}

	ctx := context.Background()
	dbDriver, err := db.NewDBDriver(p)
	if err != nil {
		log.Fatalf("failed to create db driver: %v", err)
	}
	st := store.New(dbDriver, p)
	if err := st.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate store: %v", err)
	}
	defer st.Close()

	if !p.IsAIEnabled() {
		log.Fatal("AI is not enabled, set WORKBENCH_AI_API_KEY")
	}
	provider, err := ai.NewProvider(ai.NewConfigFromProfile(p))
	if err != nil {
		log.Fatalf("failed to create completion provider: %v", err)
	}

	svc := workspace.NewService(st, slog.Default(), provider)
	defer svc.Close()

	agent, err := svc.Registry().CreateAgent(ctx, &workspace.CreateAgentRequest{
		Name:   "Smoke Test Concierge",
		Type:   store.AgentTypeChat,
		Config: `{"system_prompt":"You are a terse but friendly concierge."}`,
	})
	if err != nil {
		log.Fatalf("failed to create agent: %v", err)
	}
	log.Printf("agent registered: %s", agent.UID)

	ws := svc.Workspace("smoke-test-user")
	session, err := ws.SelectAgent(ctx, agent)
	if err != nil {
		log.Fatalf("failed to open session: %v", err)
	}
	log.Printf("session ready: %s (%s)", session.Title, session.UID)

	result, err := svc.HandleSessionInput(ctx, nil, "smoke-test-user", session.UID, &workspace.InputRequest{
		Type:    "message",
		Content: *message,
	})
	if err != nil {
		log.Fatalf("chat round trip failed: %v", err)
	}
	fmt.Printf("user: %s\nassistant: %s\n", *message, result.Reply.Content)
}

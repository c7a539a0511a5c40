package test

import (
	"context"
	"os"
	"testing"

	"github.com/weillium/ai-portfolio/internal/profile"
	"github.com/weillium/ai-portfolio/store"
	"github.com/weillium/ai-portfolio/store/db"
)

func getUnusedProfile(t *testing.T) *profile.Profile {
	p := &profile.Profile{
		Mode:   "dev",
		Data:   t.TempDir(),
		Driver: getDriverFromEnv(),
	}
	if p.Driver == "postgres" {
		p.DSN = os.Getenv("POSTGRES_TEST_DSN")
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("failed to validate profile: %v", err)
	}
	return p
}

func getDriverFromEnv() string {
	driver := os.Getenv("WORKBENCH_TEST_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	return driver
}

// NewTestingStore creates a store backed by a fresh database for a test.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	p := getUnusedProfile(t)
	driver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	ts := store.New(driver, p)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}
	t.Cleanup(func() {
		_ = ts.Close()
	})
	return ts
}

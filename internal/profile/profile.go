package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the workbench server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where the workbench stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// Secret signs the access tokens issued by this instance
	Secret string

	// AI Configuration
	AIProvider string // WORKBENCH_AI_PROVIDER (openai or any OpenAI-compatible endpoint)
	AIAPIKey   string // WORKBENCH_AI_API_KEY
	AIBaseURL  string // WORKBENCH_AI_BASE_URL (default: https://api.openai.com/v1)
	AIModel    string // WORKBENCH_AI_MODEL (default: gpt-4.1-mini)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if a completion provider is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIAPIKey != "" || p.AIBaseURL != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads AI and auth configuration from WORKBENCH_* environment variables.
func (p *Profile) FromEnv() {
	if p.Secret == "" {
		p.Secret = os.Getenv("WORKBENCH_SECRET")
	}
	p.AIProvider = getEnvOrDefault("WORKBENCH_AI_PROVIDER", "openai")
	p.AIAPIKey = os.Getenv("WORKBENCH_AI_API_KEY")
	p.AIBaseURL = getEnvOrDefault("WORKBENCH_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIModel = getEnvOrDefault("WORKBENCH_AI_MODEL", "gpt-4.1-mini")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver == "" {
		p.Driver = "sqlite"
	}

	if p.Data == "" {
		p.Data = "."
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("workbench_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for the postgres driver")
	}

	return nil
}

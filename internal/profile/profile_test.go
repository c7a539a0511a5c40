package profile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("WORKBENCH_SECRET", "")
	t.Setenv("WORKBENCH_AI_PROVIDER", "")
	t.Setenv("WORKBENCH_AI_API_KEY", "")
	t.Setenv("WORKBENCH_AI_BASE_URL", "")
	t.Setenv("WORKBENCH_AI_MODEL", "")

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "openai", p.AIProvider)
	assert.Equal(t, "https://api.openai.com/v1", p.AIBaseURL)
	assert.Equal(t, "gpt-4.1-mini", p.AIModel)
	assert.Empty(t, p.AIAPIKey)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("WORKBENCH_AI_PROVIDER", "deepseek")
	t.Setenv("WORKBENCH_AI_API_KEY", "sk-test")
	t.Setenv("WORKBENCH_AI_BASE_URL", "https://api.deepseek.com")
	t.Setenv("WORKBENCH_AI_MODEL", "deepseek-chat")

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "deepseek", p.AIProvider)
	assert.Equal(t, "sk-test", p.AIAPIKey)
	assert.Equal(t, "https://api.deepseek.com", p.AIBaseURL)
	assert.Equal(t, "deepseek-chat", p.AIModel)
	assert.True(t, p.IsAIEnabled())
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	t.Run("defaults sqlite DSN from data dir", func(t *testing.T) {
		p := &Profile{Mode: "dev", Data: dir}
		require.NoError(t, p.Validate())
		assert.Equal(t, "sqlite", p.Driver)
		assert.Equal(t, filepath.Join(dir, "workbench_dev.db"), p.DSN)
	})

	t.Run("unknown mode falls back to demo", func(t *testing.T) {
		p := &Profile{Mode: "staging", Data: dir}
		require.NoError(t, p.Validate())
		assert.Equal(t, "demo", p.Mode)
	})

	t.Run("postgres requires a DSN", func(t *testing.T) {
		p := &Profile{Mode: "prod", Data: dir, Driver: "postgres"}
		assert.Error(t, p.Validate())
	})

	t.Run("missing data dir is an error", func(t *testing.T) {
		p := &Profile{Mode: "dev", Data: filepath.Join(dir, "does-not-exist")}
		assert.Error(t, p.Validate())
	})
}

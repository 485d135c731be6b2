package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	// Insulate from developer machines where the credential is exported.
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/workflows", cfg.Store.Dir)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Empty(t, cfg.OpenAI.APIKey)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("STEPGUIDE_SERVER_PORT", "9999")
	t.Setenv("STEPGUIDE_STORE_DIR", "/tmp/wf")
	t.Setenv("STEPGUIDE_SERVER_CORS_ORIGINS", "https://app.example.com, https://beta.example.com")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "/tmp/wf", cfg.Store.Dir)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t,
		[]string{"https://app.example.com", "https://beta.example.com"},
		cfg.AllowedOrigins())
}

func TestLoadConfigPrefixedKeyWins(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-plain")
	t.Setenv("STEPGUIDE_OPENAI_API_KEY", "sk-prefixed")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "sk-prefixed", cfg.OpenAI.APIKey)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: 3000\nstore:\n  dir: /srv/stepguide\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "/srv/stepguide", cfg.Store.Dir)
	assert.Equal(t, "info", cfg.Log.Level, "untouched keys keep their defaults")
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestAllowedOrigins(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"*", []string{"*"}},
		{"", []string{"*"}},
		{"https://a.test", []string{"https://a.test"}},
		{" https://a.test , , https://b.test ", []string{"https://a.test", "https://b.test"}},
		{" , ", []string{"*"}},
	}
	for _, tt := range tests {
		cfg := &Config{}
		cfg.Server.CORSOrigins = tt.raw
		assert.Equal(t, tt.want, cfg.AllowedOrigins(), "origins %q", tt.raw)
	}
}

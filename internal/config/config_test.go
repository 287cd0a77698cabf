package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENROLLMENT_CONFIG", "")
	for _, k := range []string{"LIVE_MODE", "PROXY_BASE_URL", "AIRTABLE_PAT", "AIRTABLE_BASE_ID", "SFTP_PORT", "REFRESH_TIMEOUT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.LiveMode)
	assert.True(t, cfg.ProxyEnabled)
	assert.Equal(t, "http://localhost:8080", cfg.ProxyBaseURL)
	assert.Equal(t, "Enrollments", cfg.EnrollmentsTable)
	assert.Equal(t, 60*time.Second, cfg.RefreshTimeout)
	assert.Equal(t, 22, cfg.SFTPPort)
	assert.False(t, cfg.HasAirtableCredentials())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ENROLLMENT_CONFIG", "")
	t.Setenv("LIVE_MODE", "true")
	t.Setenv("PROXY_BASE_URL", "https://dash.example.org/")
	t.Setenv("AIRTABLE_PAT", "pat")
	t.Setenv("AIRTABLE_BASE_ID", "app123")
	t.Setenv("REFRESH_TIMEOUT", "5s")
	t.Setenv("SFTP_PORT", "2222")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.LiveMode)
	assert.Equal(t, "https://dash.example.org", cfg.ProxyBaseURL)
	assert.True(t, cfg.HasAirtableCredentials())
	assert.Equal(t, 5*time.Second, cfg.RefreshTimeout)
	assert.Equal(t, 2222, cfg.SFTPPort)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enrollment.yml")
	require.NoError(t, os.WriteFile(path, []byte(`live_mode: true
proxy_enabled: false
airtable_base_id: appFromFile
refresh_timeout: 10s
`), 0o644))

	t.Setenv("AIRTABLE_BASE_ID", "appFromEnv")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.LiveMode)
	assert.False(t, cfg.ProxyEnabled)
	assert.Equal(t, "appFromEnv", cfg.AirtableBaseID)
	assert.Equal(t, 10*time.Second, cfg.RefreshTimeout)
	assert.Equal(t, "Leaders", cfg.LeadersTable)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorContains(t, err, "config: read")

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("live_mode: [unterminated"), 0o644))
	_, err = LoadFile(path)
	assert.ErrorContains(t, err, "config: parse")
}

func TestLoadInvalidEnv(t *testing.T) {
	t.Setenv("SFTP_PORT", "not-a-port")
	_, err := LoadFile("")
	assert.ErrorContains(t, err, "config: parse env")
}

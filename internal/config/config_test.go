package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_EMAILS", "")
	t.Setenv("STORE_BACKEND", "")

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, BackendSupabase, cfg.StoreBackend)
	assert.Empty(t, cfg.AllowedEmails)
	assert.Equal(t, time.Hour, cfg.JWTAccessTTL)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "SQLite")
	t.Setenv("ALLOWED_EMAILS", " Ana@Example.com, ,bob@example.com ")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("CACHE_TTL", "not-a-duration")

	cfg := Load()
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, []string{"ana@example.com", "bob@example.com"}, cfg.AllowedEmails)
	assert.Equal(t, "collector:4317", cfg.TracingEndpoint())
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
}

func TestTracingEndpoint_Disabled(t *testing.T) {
	cfg := &Config{OTLPEndpoint: "collector:4317"}
	assert.Empty(t, cfg.TracingEndpoint())
}

func TestParseDotEnvLine(t *testing.T) {
	tests := []struct {
		line, key, value string
		ok               bool
	}{
		{"FOO=bar", "FOO", "bar", true},
		{"export FOO=bar", "FOO", "bar", true},
		{`FOO="a # b"`, "FOO", "a # b", true},
		{"FOO=bar # comment", "FOO", "bar", true},
		{"# comment", "", "", false},
		{"NOEQUALS", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		key, value, ok := parseDotEnvLine(tt.line)
		assert.Equal(t, tt.ok, ok, tt.line)
		assert.Equal(t, tt.key, key, tt.line)
		assert.Equal(t, tt.value, value, tt.line)
	}
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FIN_TEST_A=file\nFIN_TEST_B=file\n"), 0o600))

	t.Setenv("FIN_TEST_A", "env")
	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { os.Unsetenv("FIN_TEST_B") })

	assert.Equal(t, "env", os.Getenv("FIN_TEST_A"))
	assert.Equal(t, "file", os.Getenv("FIN_TEST_B"))
}

func TestLoadCLI(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadCLI(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "AVALANCHE", cfg.Simulation.Strategy)

	path := filepath.Join(dir, "config.toml")
	body := "[store]\nsqlite_path = \"/tmp/x.db\"\n\n[simulation]\nstrategy = \"SNOWBALL\"\npay_minimums = false\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err = LoadCLI(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.Store.SQLitePath)
	assert.Equal(t, "SNOWBALL", cfg.Simulation.Strategy)
	assert.False(t, cfg.Simulation.PayMinimums)
}

func TestSaveCLI_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	in := DefaultCLIConfig()
	in.Simulation.PauseRenegotiated = true

	require.NoError(t, SaveCLI(path, in))
	out, err := LoadCLI(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

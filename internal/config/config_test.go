package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, env := range envBindings {
		t.Setenv(env, "")
	}
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "neo4j://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, "neo4j", cfg.Neo4j.Username)
	assert.Equal(t, 50, cfg.Neo4j.MaxConnectionPoolSize)
	assert.Equal(t, 10*time.Second, cfg.Neo4j.ConnectionAcquisitionTimeout)
	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Empty(t, cfg.Server.BearerToken)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Empty(t, cfg.Tracing.Endpoint)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("NEO4J_URI", "bolt://graph:7687")
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("KNOWLEDGE_SERVER_PORT", "9090")
	t.Setenv("KNOWLEDGE_LOGGING_LEVEL", "debug")
	t.Setenv("MCP_BEARER_TOKEN", "s3cret")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "bolt://graph:7687", cfg.Neo4j.URI)
	assert.Equal(t, "secret", cfg.Neo4j.Password)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "s3cret", cfg.Server.BearerToken)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
neo4j:
  uri: neo4j://file-host:7687
  database: knowledge
  connection_acquisition_timeout: 3s
server:
  transport: http
data_dir: /var/lib/knowledge
`), 0o644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "neo4j://file-host:7687", cfg.Neo4j.URI)
	assert.Equal(t, "knowledge", cfg.Neo4j.Database)
	assert.Equal(t, 3*time.Second, cfg.Neo4j.ConnectionAcquisitionTimeout)
	assert.Equal(t, "http", cfg.Server.Transport)
	assert.Equal(t, "/var/lib/knowledge", cfg.DataDir)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestValidation(t *testing.T) {
	v := New()
	v.Set("server.transport", "sse")
	v.Set("server.port", 0)
	v.Set("neo4j.max_connection_pool_size", 0)

	_, err := Load(v, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.transport must be one of [stdio http] (got: sse)")
	assert.Contains(t, err.Error(), "server.port must be at least 1")
	assert.Contains(t, err.Error(), "neo4j.max_connection_pool_size must be at least 1")
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "neo4j.max_connection_pool_size", fieldPath("Config.Neo4j.MaxConnectionPoolSize"))
	assert.Equal(t, "neo4j.uri", fieldPath("Config.Neo4j.URI"))
	assert.Equal(t, "data_dir", fieldPath("Config.DataDir"))
}

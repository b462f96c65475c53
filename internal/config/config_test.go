package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Shield the test from GATEHOUSE_* values in the ambient environment.
	for _, name := range []string{
		"GATEHOUSE_LISTEN", "GATEHOUSE_DATA_DIR", "GATEHOUSE_DB_PATH",
		"GATEHOUSE_SESSION_FILE", "GATEHOUSE_TOKEN_SECRET", "GATEHOUSE_LOG_DIR",
	} {
		t.Setenv(name, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8475", cfg.ListenAddr)
	require.Equal(t, "./data", cfg.DataDir)
	require.Equal(t, filepath.Join("./data", "users.db"), cfg.DBPath)
	require.Equal(t, filepath.Join("./data", "session.json"), cfg.SessionFile)
	require.Empty(t, cfg.TokenSecret)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GATEHOUSE_LISTEN", "127.0.0.1:9000")
	t.Setenv("GATEHOUSE_DATA_DIR", "/var/lib/gatehouse")
	t.Setenv("GATEHOUSE_SESSION_FILE", "/tmp/session.json")
	t.Setenv("GATEHOUSE_TOKEN_SECRET", "supplied-secret-value")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	require.Equal(t, "/var/lib/gatehouse", cfg.DataDir)
	// DBPath still derives from the overridden data dir.
	require.Equal(t, filepath.Join("/var/lib/gatehouse", "users.db"), cfg.DBPath)
	// An explicit session file wins over the derived default.
	require.Equal(t, "/tmp/session.json", cfg.SessionFile)
	require.Equal(t, "supplied-secret-value", cfg.TokenSecret)
}

func TestSecretFile_UnderDataDir(t *testing.T) {
	cfg := Config{DataDir: "/srv/gh"}
	require.Equal(t, filepath.Join("/srv/gh", "secret.key"), cfg.SecretFile())
}

package confs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"LISTEN_ADDR", "DB_DRIVER", "JWT_TTL", "MAX_UPLOAD_MB", "AUTH_REQUIRED", "ARTIFACT_DIR"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:3536", cfg.ListenAddr)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, int64(10), cfg.MaxUploadMB)
	assert.False(t, cfg.AuthRequired)
	assert.Equal(t, "static/predictions", cfg.ArtifactDir)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("AUTH_REQUIRED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.True(t, cfg.AuthRequired)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MAX_UPLOAD_MB", "lots")

	_, err := LoadConfig()
	assert.Error(t, err)
}

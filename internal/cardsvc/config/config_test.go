package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("CARD_SERVICE_PORT", "9100")
	t.Setenv("POSTGRES_URL", "postgres://cards:pw@localhost:5432/cards")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/cards")
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("DATA_DIR", "/tmp/cards-data")
	t.Setenv("FRONTEND_URL", "https://cards.example.com")

	cfg := Load()

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "postgres://cards:pw@localhost:5432/cards", cfg.DatabaseURL)
	assert.Equal(t, "mongodb://localhost:27017/cards", cfg.MongoURI)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "https://cards.example.com", cfg.PublicBaseURL)
	assert.Equal(t, filepath.Join("/tmp/cards-data", "audio", "samples"), cfg.VoiceSamplesDir())
	assert.Equal(t, filepath.Join("/tmp/cards-data", "audio", "generated"), cfg.GeneratedAudioDir())
	assert.Equal(t, filepath.Join("/tmp/cards-data", "qr_codes"), cfg.QRCodesDir())
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CARD_SERVICE_PORT", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("FRONTEND_URL", "")
	t.Setenv("RATE_LIMIT", "")

	cfg := Load()

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "http://localhost:3000", cfg.PublicBaseURL)
	assert.Equal(t, "120", cfg.RateLimit)
}

func TestEnsureDirs(t *testing.T) {
	cfg := Config{DataDir: filepath.Join(t.TempDir(), "data")}

	require.NoError(t, cfg.EnsureDirs())

	for _, dir := range []string{cfg.VoiceSamplesDir(), cfg.GeneratedAudioDir(), cfg.QRCodesDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/practice-companion/internal/omr"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "API_PORT", "OPENAI_API_KEY", "GEMINI_API_KEY", "OCR_PROVIDER", "OCR_MODEL", "RANDOM_SEED", "CORS_ALLOWED_ORIGINS", "OCR_TIMEOUT", "DETECTION_TIMEOUT", "MAX_UPLOAD_MB", "DEBUG"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, OCRProviderNone, cfg.OCRProvider)
	assert.Empty(t, cfg.OCRModel)
	assert.Equal(t, 20*time.Second, cfg.OCRTimeout)
	assert.Equal(t, 10*time.Second, cfg.DetectionTimeout)
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes)
	assert.Nil(t, cfg.RandomSeed)
	assert.False(t, cfg.Debug)
	assert.Contains(t, cfg.CORSAllowedOrigins, "http://localhost:5173")
	assert.Contains(t, cfg.CORSAllowedOrigins, "http://127.0.0.1:3000")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("API_PORT", "8000")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OCR_PROVIDER", "")
	t.Setenv("OCR_MODEL", "")
	t.Setenv("OCR_TIMEOUT", "5")
	t.Setenv("DETECTION_TIMEOUT", "1500ms")
	t.Setenv("MAX_UPLOAD_MB", "not-a-number")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("DEBUG", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://practice.example.com, ,http://localhost:4000")

	cfg := Load()
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, OCRProviderGemini, cfg.OCRProvider)
	assert.Equal(t, defaultGeminiOCRModel, cfg.OCRModel)
	assert.Equal(t, 5*time.Second, cfg.OCRTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.DetectionTimeout)
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes)
	require.NotNil(t, cfg.RandomSeed)
	assert.Equal(t, uint64(42), *cfg.RandomSeed)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"https://practice.example.com", "http://localhost:4000"}, cfg.CORSAllowedOrigins)
}

func TestLoadTuningDefaults(t *testing.T) {
	tuning, err := LoadTuning("")
	require.NoError(t, err)
	assert.Equal(t, omr.DefaultPreprocessParams(), tuning.PreprocessParams())
	assert.Equal(t, omr.DefaultStaffParams(), tuning.StaffParams())
	assert.Equal(t, omr.DefaultBarParams(), tuning.BarParams())
}

func TestLoadTuningFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
preprocess:
  block_size: 15
staff:
  min_length: 200
bars:
  max_angle: 10
`), 0o600))

	tuning, err := LoadTuning(path)
	require.NoError(t, err)
	assert.Equal(t, 15, tuning.PreprocessParams().BlockSize)
	assert.Equal(t, 3, tuning.PreprocessParams().BlurKernel)
	assert.Equal(t, 200, tuning.StaffParams().Lines.MinLength)
	assert.Equal(t, 100, tuning.StaffParams().Lines.Threshold)
	assert.InDelta(t, 10.0, tuning.BarParams().MaxTilt, 1e-9)
}

func TestLoadTuningRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("preprocess:\n  block_size: 10\nstaff:\n  threshold: 0\n"), 0o600))

	_, err := LoadTuning(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "block_size")
	assert.Contains(t, err.Error(), "staff.threshold")

	_, err = LoadTuning(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

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
	t.Setenv("STOREFRONT_CONFIG", "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3001", cfg.APIBaseURL)
	assert.Equal(t, "file", cfg.StorageDriver)
	rate, err := cfg.Tax()
	require.NoError(t, err)
	assert.Equal(t, "0.1", rate.String())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_CONFIG", "")
	t.Setenv("API_BASE_URL", "http://api.local:9000/")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,,")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("TAX_RATE", "0.22")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://api.local:9000", cfg.APIBaseURL)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, "0.22", cfg.TaxRate)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	yml := "storageDriver: redis\nredisAddr: cache:6379\ntaxRate: \"0.05\"\napiTimeout: 2s\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("STOREFRONT_CONFIG", path)
	t.Setenv("REDIS_ADDR", "override:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.StorageDriver)
	assert.Equal(t, "override:6379", cfg.RedisAddr)
	assert.Equal(t, "0.05", cfg.TaxRate)
	assert.Equal(t, 2*time.Second, cfg.APITimeout)
}

func TestLoadRejectsBadTaxRate(t *testing.T) {
	t.Setenv("STOREFRONT_CONFIG", "")
	for _, v := range []string{"abc", "-0.1", "1.5"} {
		t.Setenv("TAX_RATE", v)
		_, err := Load()
		assert.Error(t, err, v)
	}
}

func TestTaxErrors(t *testing.T) {
	for _, v := range []string{"", "ten", "-0.01", "1"} {
		_, err := Config{TaxRate: v}.Tax()
		assert.Error(t, err, v)
	}
	rate, err := Config{TaxRate: "0.22"}.Tax()
	require.NoError(t, err)
	assert.Equal(t, "0.22", rate.String())
}

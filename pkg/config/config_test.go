package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	Port    int      `env:"SN_TEST_PORT" envDefault:"4000"`
	Secret  string   `env:"SN_TEST_SECRET"`
	Brokers []string `env:"SN_TEST_BROKERS" envDefault:"a:9092,b:9092" envSeparator:","`
}

type strictConfig struct {
	Key string `env:"SN_TEST_REQUIRED_KEY,required"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg sampleConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 4000, cfg.Port)
	assert.Empty(t, cfg.Secret)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Brokers)
}

func TestLoad_EnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("SN_TEST_PORT", "5001")
	t.Setenv("SN_TEST_BROKERS", "kafka:29092")

	var cfg sampleConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 5001, cfg.Port)
	assert.Equal(t, []string{"kafka:29092"}, cfg.Brokers)
}

func TestLoad_RequiredMissing(t *testing.T) {
	var cfg strictConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_MissingDotenvIgnored(t *testing.T) {
	var cfg sampleConfig
	err := Load(&cfg, filepath.Join(t.TempDir(), "does-not-exist.env"))

	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
}

func TestLoad_DotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SN_TEST_SECRET=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SN_TEST_SECRET") })

	var cfg sampleConfig
	require.NoError(t, Load(&cfg, path))

	assert.Equal(t, "from-file", cfg.Secret)
}

func TestLoad_EnvironmentWinsOverDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SN_TEST_SECRET=from-file\n"), 0o600))
	t.Setenv("SN_TEST_SECRET", "from-env")

	var cfg sampleConfig
	require.NoError(t, Load(&cfg, path))

	assert.Equal(t, "from-env", cfg.Secret)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intconfig "github.com/aps-wallet/agentperf/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, time.Now().UTC().Year(), cfg.Year)
	assert.Equal(t, intconfig.DefaultMinDeposits, cfg.MinDeposits)
	assert.Equal(t, intconfig.DefaultEnv, cfg.Environment)
	assert.Equal(t, intconfig.DefaultPort, cfg.Port)
	assert.Equal(t, "table", cfg.OutputFormat)
	assert.Empty(t, cfg.DatabasePath)
	assert.NotEmpty(t, cfg.ProjectRoot)

	// Relative defaults resolve against the project root.
	assert.True(t, filepath.IsAbs(cfg.OnboardingPath) || cfg.ProjectRoot == ".",
		"onboarding path should be anchored: %s", cfg.OnboardingPath)
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "agentperf.yaml")
	content := `
year: 2024
min_deposits: 5
environment: staging
onboarding: data/custom.csv
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0600))

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, 2024, cfg.Year)
	assert.Equal(t, 5, cfg.MinDeposits)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(dir, "data", "custom.csv"), cfg.OnboardingPath)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "agentperf.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("environment: staging\n"), 0600))

	t.Setenv("AGENTPERF_ENVIRONMENT", "prod")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Environment)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	t.Setenv("AGENTPERF_MIN_DEPOSITS", "5")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("min-deposits", 0, "")
	flags.String("state", "", "")
	require.NoError(t, flags.Parse([]string{"--min-deposits", "7", "--state", "/tmp/custom.db"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.MinDeposits)
	// --state maps onto the state_path key.
	assert.Equal(t, "/tmp/custom.db", cfg.StatePath)
}

func TestLoadConfig_UnchangedFlagsIgnored(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("min-deposits", 99, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, intconfig.DefaultMinDeposits, cfg.MinDeposits)
}

func TestLoadConfig_BadFile(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "agentperf.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("::: not yaml"), 0600))

	_, err := LoadConfig(cfgPath, nil)
	assert.Error(t, err)
}

func TestGetCurrentConfig(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	assert.Nil(t, GetCurrentConfig())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestResolvePathRelativeTo(t *testing.T) {
	assert.Equal(t, "", resolvePathRelativeTo("", "/base"))
	assert.Equal(t, "/abs/path", resolvePathRelativeTo("/abs/path", "/base"))
	assert.Equal(t, filepath.Join("/base", "rel"), resolvePathRelativeTo("rel", "/base"))
}

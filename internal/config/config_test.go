package config_test

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whispr-dev/caca/internal/apperr"
	"github.com/whispr-dev/caca/internal/config"
	"github.com/whispr-dev/caca/internal/nist"
)

func newFlags(t *testing.T) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.BindFlags(flags)
	return flags
}

func TestLoadRequiresInput(t *testing.T) {
	flags := newFlags(t)
	_, err := config.Load(flags)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ConfigError))
}

func TestLoadAppliesDefaults(t *testing.T) {
	flags := newFlags(t)
	require.NoError(t, flags.Set("input", "data.bin"))
	cfg, err := config.Load(flags)
	require.NoError(t, err)
	assert.Equal(t, "data.bin", cfg.InputPath)
	assert.Equal(t, 0.01, cfg.Alpha)
	assert.Equal(t, "jsonl", cfg.ReportFormat)
}

func TestLoadRejectsBadAlpha(t *testing.T) {
	flags := newFlags(t)
	require.NoError(t, flags.Set("input", "data.bin"))
	require.NoError(t, flags.Set("alpha", "1.5"))
	_, err := config.Load(flags)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ConfigError))
}

func TestLoadRejectsUnknownTest(t *testing.T) {
	flags := newFlags(t)
	require.NoError(t, flags.Set("input", "data.bin"))
	require.NoError(t, flags.Set("tests", "not_a_real_test"))
	_, err := config.Load(flags)
	require.Error(t, err)
}

func TestLoadExpandsAllTestsToken(t *testing.T) {
	flags := newFlags(t)
	require.NoError(t, flags.Set("input", "data.bin"))
	require.NoError(t, flags.Set("tests", "all"))
	cfg, err := config.Load(flags)
	require.NoError(t, err)
	assert.ElementsMatch(t, nist.Names(), cfg.Tests)
}

func TestLoadRejectsUnknownRule(t *testing.T) {
	flags := newFlags(t)
	require.NoError(t, flags.Set("input", "data.bin"))
	require.NoError(t, flags.Set("rule", "999"))
	_, err := config.Load(flags)
	require.Error(t, err)
}

package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestDefaultHasConventionalExtensions(t *testing.T) {
	opts := Default()
	require.Contains(t, opts.Extensions, ".ts")
	require.Contains(t, opts.Extensions, ".tsx")
	require.Equal(t, []string{"index"}, opts.DefaultFiles)
}

func TestLoadMergesOverrides(t *testing.T) {
	v := viper.New()
	v.Set("prefer_relative", true)
	v.Set("extensions", []string{".ts", ".js"})

	opts, err := Load(v)
	require.NoError(t, err)
	require.True(t, opts.PreferRelative)
	require.Equal(t, []string{".ts", ".js"}, opts.Extensions)
}

func TestGetEnvironmentDefaults(t *testing.T) {
	env := GetEnvironment()
	require.Greater(t, env.IOConcurrency, 0)
}

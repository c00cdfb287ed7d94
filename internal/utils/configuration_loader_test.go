package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repoport/internal/utils"
)

const (
	testConfigurationNameConstant    = "config"
	testConfigurationTypeConstant    = "yaml"
	testEnvironmentPrefixConstant    = "REPOPORTTEST"
	testConfigurationContentConstant = `common:
  log_level: debug
tools:
  run:
    migration: primary
`
)

type loaderTargetConfiguration struct {
	Common struct {
		LogLevel  string `mapstructure:"log_level"`
		LogFormat string `mapstructure:"log_format"`
	} `mapstructure:"common"`
	Tools struct {
		Run struct {
			Migration string `mapstructure:"migration"`
		} `mapstructure:"run"`
	} `mapstructure:"tools"`
}

func TestLoadConfigurationMergesFileAndDefaults(testInstance *testing.T) {
	configurationPath := filepath.Join(testInstance.TempDir(), "config.yaml")
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o644))

	loader := utils.NewConfigurationLoader(
		testConfigurationNameConstant,
		testConfigurationTypeConstant,
		testEnvironmentPrefixConstant,
		nil,
	)

	var targetConfiguration loaderTargetConfiguration
	defaultValues := map[string]any{
		"common.log_level":  "info",
		"common.log_format": "structured",
	}

	loadedConfiguration, loadError := loader.LoadConfiguration(configurationPath, defaultValues, &targetConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, configurationPath, loadedConfiguration.ConfigFileUsed)
	require.Equal(testInstance, "debug", targetConfiguration.Common.LogLevel)
	require.Equal(testInstance, "structured", targetConfiguration.Common.LogFormat)
	require.Equal(testInstance, "primary", targetConfiguration.Tools.Run.Migration)
}

func TestLoadConfigurationUsesDefaultsWithoutFile(testInstance *testing.T) {
	loader := utils.NewConfigurationLoader(
		testConfigurationNameConstant,
		testConfigurationTypeConstant,
		testEnvironmentPrefixConstant,
		[]string{testInstance.TempDir()},
	)

	var targetConfiguration loaderTargetConfiguration
	defaultValues := map[string]any{
		"common.log_level": "warn",
	}

	loadedConfiguration, loadError := loader.LoadConfiguration("", defaultValues, &targetConfiguration)
	require.NoError(testInstance, loadError)
	require.Empty(testInstance, loadedConfiguration.ConfigFileUsed)
	require.Equal(testInstance, "warn", targetConfiguration.Common.LogLevel)
}

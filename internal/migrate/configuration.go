package migrate

import (
	"strings"

	"github.com/temirov/repoport/internal/utils"
)

// CommandConfiguration captures configurable defaults for the run command.
type CommandConfiguration struct {
	DefinitionsPath    string `mapstructure:"definitions"`
	MigrationName      string `mapstructure:"migration"`
	Mode               string `mapstructure:"mode"`
	Baseline           string `mapstructure:"baseline"`
	Reference          string `mapstructure:"reference"`
	DryRun             bool   `mapstructure:"dry_run"`
	EnableDebugLogging bool   `mapstructure:"debug"`
}

// DefaultCommandConfiguration returns the built-in run command defaults.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{}
}

// DefaultConfigurationValues exposes the run command defaults keyed under the
// supplied configuration prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + ".definitions": defaults.DefinitionsPath,
		configurationKeyPrefix + ".migration":   defaults.MigrationName,
		configurationKeyPrefix + ".mode":        defaults.Mode,
		configurationKeyPrefix + ".baseline":    defaults.Baseline,
		configurationKeyPrefix + ".reference":   defaults.Reference,
		configurationKeyPrefix + ".dry_run":     defaults.DryRun,
	}
}

// Sanitize normalizes configured values, trimming whitespace and expanding a
// leading tilde in the definitions path.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	homeExpander := utils.NewHomeExpander()
	configuration.DefinitionsPath = homeExpander.Expand(strings.TrimSpace(configuration.DefinitionsPath))
	configuration.MigrationName = strings.TrimSpace(configuration.MigrationName)
	configuration.Mode = strings.TrimSpace(configuration.Mode)
	configuration.Baseline = strings.TrimSpace(configuration.Baseline)
	configuration.Reference = strings.TrimSpace(configuration.Reference)
	return configuration
}

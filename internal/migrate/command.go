package migrate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/repoport/internal/console"
	"github.com/temirov/repoport/internal/execshell"
	"github.com/temirov/repoport/internal/gitrepo"
	"github.com/temirov/repoport/internal/history"
	"github.com/temirov/repoport/internal/utils"
	"github.com/temirov/repoport/internal/workflow"
)

const (
	commandUseConstant                     = "run"
	commandShortDescriptionConstant        = "Run a configured repository migration"
	commandLongDescriptionConstant         = "run loads the named migration definition, resolves the requested origin reference, and imports pending origin changes into the destination repository under the selected strategy."
	definitionsFlagNameConstant            = "definitions"
	definitionsFlagUsageConstant           = "Path to the migration definitions file"
	migrationFlagNameConstant              = "migration"
	migrationFlagUsageConstant             = "Name of the migration definition to run"
	modeFlagNameConstant                   = "mode"
	modeFlagUsageConstant                  = "Migration strategy (squash, iterative, change_request, mirror)"
	baselineFlagNameConstant               = "baseline"
	baselineFlagUsageConstant              = "Destination baseline override for change_request mode"
	referenceFlagNameConstant              = "reference"
	referenceFlagUsageConstant             = "Origin reference to import (defaults to HEAD)"
	dryRunFlagNameConstant                 = "dry-run"
	dryRunFlagUsageConstant                = "Compute the migration without writing to the destination"
	definitionsPathMissingMessageConstant  = "a migration definitions path must be supplied via --definitions or configuration"
	migrationNameAmbiguousTemplateConstant = "the definitions file declares %d migrations; select one with --%s"
	migrationRunFailedTemplateConstant     = "migration %s failed: %w"
	migrationCompletedLogMessageConstant   = "Migration completed"
	logFieldMigrationNameConstant          = "migration"
	logFieldMigrationModeConstant          = "mode"
	logFieldResolvedReferenceConstant      = "resolved_reference"
)

// CommandExecutor abstracts git command execution for the run command.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the run Cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     CommandExecutor
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	Console                      console.Console
}

type commandOptions struct {
	debugLoggingEnabled bool
	definitionsPath     string
	migrationName       string
	modeName            string
	baselineOverride    string
	requestedReference  string
	dryRunEnabled       bool
}

// Build constructs the run command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runMigration,
	}

	command.Flags().String(definitionsFlagNameConstant, "", definitionsFlagUsageConstant)
	command.Flags().String(migrationFlagNameConstant, "", migrationFlagUsageConstant)
	command.Flags().String(modeFlagNameConstant, "", modeFlagUsageConstant)
	command.Flags().String(baselineFlagNameConstant, "", baselineFlagUsageConstant)
	command.Flags().String(referenceFlagNameConstant, "", referenceFlagUsageConstant)
	command.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runMigration(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	migrationsConfiguration, loadError := workflow.LoadMigrations(options.definitionsPath)
	if loadError != nil {
		return loadError
	}

	definition, definitionError := builder.selectMigration(migrationsConfiguration, options.migrationName)
	if definitionError != nil {
		return definitionError
	}

	modeName := definition.Mode
	if len(options.modeName) > 0 {
		modeName = options.modeName
	}
	migrationMode, modeError := workflow.ParseMode(modeName)
	if modeError != nil {
		return modeError
	}

	baselineOverride := definition.Baseline
	if len(options.baselineOverride) > 0 {
		baselineOverride = options.baselineOverride
	}

	logger := builder.resolveLogger(options.debugLoggingEnabled)
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}
	runConsole := builder.resolveConsole(command, logger)

	runHelper, helperError := gitrepo.NewGitRunHelper(command.Context(), gitrepo.RunHelperConfiguration{
		Executor:           executor,
		Logger:             logger,
		Console:            runConsole,
		OriginPath:         definition.Origin,
		DestinationPath:    definition.Destination,
		RequestedReference: options.requestedReference,
		OriginLabelName:    definition.OriginLabel,
		DefaultAuthor: history.Identity{
			Name:  definition.DefaultAuthor.Name,
			Email: definition.DefaultAuthor.Email,
		},
		ExcludedPaths:    definition.ExcludedPaths,
		BaselineOverride: baselineOverride,
		DryRun:           options.dryRunEnabled,
	})
	if helperError != nil {
		return helperError
	}

	if runError := migrationMode.Run(command.Context(), runHelper); runError != nil {
		if errors.Is(runError, context.Canceled) || errors.Is(runError, context.DeadlineExceeded) {
			return runError
		}
		return fmt.Errorf(migrationRunFailedTemplateConstant, definition.Name, runError)
	}

	logger.Info(
		migrationCompletedLogMessageConstant,
		zap.String(logFieldMigrationNameConstant, definition.Name),
		zap.String(logFieldMigrationModeConstant, string(migrationMode)),
		zap.String(logFieldResolvedReferenceConstant, runHelper.ResolvedReference()),
	)
	return nil
}

func (builder *CommandBuilder) selectMigration(migrationsConfiguration workflow.MigrationsConfiguration, migrationName string) (workflow.MigrationDefinition, error) {
	if len(migrationName) > 0 {
		return migrationsConfiguration.Migration(migrationName)
	}
	if len(migrationsConfiguration.Migrations) == 1 {
		return migrationsConfiguration.Migrations[0], nil
	}
	return workflow.MigrationDefinition{}, workflow.ValidationError{
		Message: fmt.Sprintf(migrationNameAmbiguousTemplateConstant, len(migrationsConfiguration.Migrations), migrationFlagNameConstant),
	}
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (commandOptions, error) {
	configuration := builder.resolveConfiguration()

	debugEnabled := configuration.EnableDebugLogging
	if command != nil {
		contextAccessor := utils.NewCommandContextAccessor()
		if logLevel, available := contextAccessor.LogLevel(command.Context()); available {
			if strings.EqualFold(logLevel, string(utils.LogLevelDebug)) {
				debugEnabled = true
			}
		}
	}

	options := commandOptions{
		debugLoggingEnabled: debugEnabled,
		definitionsPath:     configuration.DefinitionsPath,
		migrationName:       configuration.MigrationName,
		modeName:            configuration.Mode,
		baselineOverride:    configuration.Baseline,
		requestedReference:  configuration.Reference,
		dryRunEnabled:       configuration.DryRun,
	}

	if command != nil {
		if command.Flags().Changed(definitionsFlagNameConstant) {
			flagValue, _ := command.Flags().GetString(definitionsFlagNameConstant)
			options.definitionsPath = strings.TrimSpace(flagValue)
		}
		if command.Flags().Changed(migrationFlagNameConstant) {
			flagValue, _ := command.Flags().GetString(migrationFlagNameConstant)
			options.migrationName = strings.TrimSpace(flagValue)
		}
		if command.Flags().Changed(modeFlagNameConstant) {
			flagValue, _ := command.Flags().GetString(modeFlagNameConstant)
			options.modeName = strings.TrimSpace(flagValue)
		}
		if command.Flags().Changed(baselineFlagNameConstant) {
			flagValue, _ := command.Flags().GetString(baselineFlagNameConstant)
			options.baselineOverride = strings.TrimSpace(flagValue)
		}
		if command.Flags().Changed(referenceFlagNameConstant) {
			flagValue, _ := command.Flags().GetString(referenceFlagNameConstant)
			options.requestedReference = strings.TrimSpace(flagValue)
		}
		if command.Flags().Changed(dryRunFlagNameConstant) {
			flagValue, _ := command.Flags().GetBool(dryRunFlagNameConstant)
			options.dryRunEnabled = flagValue
		}
	}

	if len(options.definitionsPath) == 0 {
		return commandOptions{}, workflow.ValidationError{Message: definitionsPathMissingMessageConstant}
	}

	return options, nil
}

func (builder *CommandBuilder) resolveLogger(enableDebug bool) *zap.Logger {
	var logger *zap.Logger
	if builder.LoggerProvider != nil {
		logger = builder.LoggerProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if enableDebug {
		logger = logger.WithOptions(zap.IncreaseLevel(zapcore.DebugLevel))
	}
	return logger
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (CommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, humanReadableLogging)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) resolveConsole(command *cobra.Command, logger *zap.Logger) console.Console {
	if builder.Console != nil {
		return builder.Console
	}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() && command != nil {
		return console.NewWriterConsole(
			utils.NewFlushingWriter(command.OutOrStdout()),
			utils.NewFlushingWriter(command.ErrOrStderr()),
			os.Stdin,
		)
	}
	return console.NewZapConsole(logger, os.Stdin)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}
